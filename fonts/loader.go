package fonts

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/image/font/sfnt"

	"github.com/ByLCY/specimen/layout"
)

// ErrUnsupportedFont 表示字体文件扩展名不受支持。
var ErrUnsupportedFont = errors.New("不支持的字体格式")

// Loader 将任务中声明的字体来源解码为 FontHandle。
// 单个字体失败只记录日志并跳过，不影响其他字体。
type Loader struct {
	baseDir string
	logger  *log.Logger
	seq     int
}

// NewLoader 创建以 baseDir 解析相对路径的加载器；logger 为空时使用 log.Default()。
func NewLoader(baseDir string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{baseDir: baseDir, logger: logger}
}

// LoadAll 按声明顺序加载字体，返回成功解码的集合。
func (l *Loader) LoadAll(refs []layout.FontRef) []layout.FontHandle {
	handles := make([]layout.FontHandle, 0, len(refs))
	for _, ref := range refs {
		h, err := l.Load(ref)
		if err != nil {
			l.logger.Printf("跳过字体 %s: %v", ref.Src, err)
			continue
		}
		handles = append(handles, h)
	}
	return handles
}

// Load 读取并校验单个字体。
func (l *Loader) Load(ref layout.FontRef) (layout.FontHandle, error) {
	if ref.Src == "" {
		return layout.FontHandle{}, fmt.Errorf("字体缺少 src")
	}
	var (
		data []byte
		name string
		err  error
	)
	if strings.HasPrefix(ref.Src, BuiltinPrefix) {
		data, err = Load(ref.Src)
		if err != nil {
			return layout.FontHandle{}, err
		}
	} else {
		path := ref.Src
		if !filepath.IsAbs(path) && l.baseDir != "" {
			path = filepath.Join(l.baseDir, path)
		}
		if !hasValidFontExtension(path) {
			return layout.FontHandle{}, fmt.Errorf("%s: %w", ref.Src, ErrUnsupportedFont)
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return layout.FontHandle{}, fmt.Errorf("读取字体 %s 失败: %w", ref.Src, err)
		}
		name = filepath.Base(path)
	}

	h, err := l.Decode(name, data)
	if err != nil {
		return layout.FontHandle{}, fmt.Errorf("解码字体 %s 失败: %w", ref.Src, err)
	}
	if ref.Name != "" {
		h.Name = ref.Name
	}
	return h, nil
}

// Decode 校验字体数据并分配唯一 ID。name 为空时使用字体内的完整名称。
// WOFF/WOFF2 交给绘图后端解码，这里只校验 TrueType/OpenType。
func (l *Loader) Decode(name string, data []byte) (layout.FontHandle, error) {
	if len(data) == 0 {
		return layout.FontHandle{}, fmt.Errorf("字体数据为空")
	}
	if !isWOFF(data) {
		f, err := sfnt.Parse(data)
		if err != nil {
			return layout.FontHandle{}, err
		}
		if name == "" {
			name = fullName(f)
		}
	}
	if name == "" {
		name = "font"
	}
	l.seq++
	return layout.FontHandle{
		ID:   fmt.Sprintf("font-%d-%s", l.seq, slug(name)),
		Name: name,
		Data: data,
	}, nil
}

func fullName(f *sfnt.Font) string {
	for _, id := range []sfnt.NameID{sfnt.NameIDFull, sfnt.NameIDFamily} {
		if s, err := f.Name(nil, id); err == nil && s != "" {
			return s
		}
	}
	return ""
}

func isWOFF(data []byte) bool {
	return len(data) >= 4 && (string(data[:4]) == "wOFF" || string(data[:4]) == "wOF2")
}

func hasValidFontExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf", ".woff", ".woff2":
		return true
	default:
		return false
	}
}

func slug(s string) string {
	s = strings.TrimSuffix(s, filepath.Ext(s))
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
