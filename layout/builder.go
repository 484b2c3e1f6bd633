package layout

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/specimen/binding"
	"github.com/ByLCY/specimen/dsl"
)

// DefaultPreset 是任务未声明 size 时使用的预设尺寸。
const DefaultPreset = "card"

// FontRef 是任务文件中声明的字体来源；src 可以是文件路径或 builtin:<name>。
type FontRef struct {
	Src  string `json:"src"`
	Name string `json:"name,omitempty"` // 覆盖展示名
}

// ExportSpec 描述导出参数。Format 保持原始字符串，由导出阶段解析。
type ExportSpec struct {
	Format      string   `json:"format"`
	Collage     bool     `json:"collage"`
	Select      []string `json:"select,omitempty"`  // 参与导出的字体（展示名或 src）
	Preview     string   `json:"preview,omitempty"` // 导出后恢复预览的字体
	Filename    string   `json:"filename,omitempty"`
	JPEGQuality int      `json:"jpegQuality,omitempty"`
}

// Job 是一次样张任务的全部输入。Style 为用户样式，渲染前需经 Size.Resolve 合并锁定字段。
type Job struct {
	Name   string       `json:"name"`
	Meta   DocumentMeta `json:"meta"`
	Fonts  []FontRef    `json:"fonts"`
	Size   CanvasSize   `json:"size"`
	Style  Style        `json:"style"`
	Text   string       `json:"text"`
	Export ExportSpec   `json:"export"`
	Debug  bool         `json:"-"`
}

// ResolvedStyle 返回合并预设锁定值后的最终样式。
func (j *Job) ResolvedStyle() Style { return j.Size.Resolve(j.Style) }

// Build 将任务文件 AST 转换为 Job。
func Build(doc *dsl.Document, opts BuildOptions) (*Job, error) {
	if doc == nil {
		return nil, fmt.Errorf("任务文档为空")
	}
	if doc.Body == nil {
		return nil, fmt.Errorf("任务 %s 缺少内容", doc.Name)
	}

	size, _ := LookupPreset(DefaultPreset)
	job := &Job{
		Name:   doc.Name,
		Size:   size,
		Style:  DefaultStyle(),
		Export: ExportSpec{Format: "png"},
		Debug:  opts.Debug,
	}
	autoDirection := false

	for _, st := range doc.Body.Statements {
		if st.Command == nil {
			if st.Assignment != nil {
				return nil, fmt.Errorf("顶层不支持赋值 %s，请放入 meta/style/export 块", st.Assignment.Key)
			}
			continue
		}
		cmd := st.Command
		var err error
		switch cmd.Name {
		case "meta":
			job.Meta = collectMeta(cmd.Block)
		case "fonts":
			job.Fonts, err = collectFonts(cmd.Block)
		case "font":
			var ref FontRef
			ref, err = parseFontRef(cmd)
			job.Fonts = append(job.Fonts, ref)
		case "size":
			job.Size, err = resolveSize(cmd)
		case "style":
			autoDirection, err = applyStyle(&job.Style, cmd.Block)
		case "text":
			job.Text, err = resolveText(cmd)
		case "export":
			err = applyExport(&job.Export, cmd.Block)
		default:
			err = fmt.Errorf("未知指令 %s", cmd.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("第 %d 行 %s: %w", cmd.Pos.Line, cmd.Name, err)
		}
	}

	job.Text = norm.NFC.String(binding.Interpolate(job.Text, opts.Data))
	if autoDirection {
		job.Style.RTL = DetectRTL(job.Text)
	}
	return job, nil
}

func collectMeta(block *dsl.Block) DocumentMeta {
	var meta DocumentMeta
	for _, a := range assignments(block) {
		switch a.Key {
		case "title":
			meta.Title = a.Value.Text()
		case "author":
			meta.Author = a.Value.Text()
		case "subject":
			meta.Subject = a.Value.Text()
		case "creator":
			meta.Creator = a.Value.Text()
		case "keywords":
			meta.Keywords = a.Value.Strings()
		}
	}
	return meta
}

func collectFonts(block *dsl.Block) ([]FontRef, error) {
	if block == nil {
		return nil, fmt.Errorf("fonts 缺少内容块")
	}
	var refs []FontRef
	for _, st := range block.Statements {
		switch {
		case st.Command != nil && st.Command.Name == "font":
			ref, err := parseFontRef(st.Command)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		case st.Text != nil:
			refs = append(refs, FontRef{Src: string(st.Text.Value)})
		}
	}
	return refs, nil
}

// parseFontRef 解析 `font "<src>" [name "<label>"]`。
func parseFontRef(cmd *dsl.Command) (FontRef, error) {
	if len(cmd.Args) == 0 || cmd.Args[0].Value == "" {
		return FontRef{}, fmt.Errorf("font 缺少 src")
	}
	ref := FontRef{Src: cmd.Args[0].Value}
	rest := cmd.Args[1:]
	for i := 0; i < len(rest); i++ {
		if rest[i].Value == "name" && i+1 < len(rest) {
			ref.Name = rest[i+1].Value
			i++
			continue
		}
		return FontRef{}, fmt.Errorf("无法识别的 font 参数 %q", rest[i].Raw)
	}
	return ref, nil
}

// resolveSize 解析 `size <preset>` 或 `size custom <W>x<H>`（也接受 `size custom W H`）。
func resolveSize(cmd *dsl.Command) (CanvasSize, error) {
	if len(cmd.Args) == 0 {
		return CanvasSize{}, fmt.Errorf("size 缺少参数")
	}
	name := strings.ToLower(cmd.Args[0].Value)
	if name != "custom" {
		p, ok := LookupPreset(name)
		if !ok {
			return CanvasSize{}, fmt.Errorf("未知预设尺寸 %s", name)
		}
		if len(cmd.Args) == 2 && strings.ToLower(cmd.Args[1].Value) == "single-line" {
			p.SingleLine = true
		}
		return p, nil
	}

	var w, h int
	var err error
	switch len(cmd.Args) {
	case 2:
		w, h, err = parseDimension(cmd.Args[1].Value)
	case 3:
		w, err = strconv.Atoi(cmd.Args[1].Value)
		if err == nil {
			h, err = strconv.Atoi(cmd.Args[2].Value)
		}
	default:
		err = fmt.Errorf("custom 需要 <宽>x<高>")
	}
	if err != nil {
		return CanvasSize{}, err
	}
	return NewCustomSize(w, h)
}

func parseDimension(v string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(v), "x")
	if !ok {
		return 0, 0, fmt.Errorf("无效尺寸 %q", v)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("无效宽度 %q: %w", ws, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("无效高度 %q: %w", hs, err)
	}
	return w, h, nil
}

// applyStyle 写入用户样式；返回 direction 是否为 auto。
func applyStyle(style *Style, block *dsl.Block) (bool, error) {
	auto := false
	for _, a := range assignments(block) {
		raw := a.Value.Text()
		switch a.Key {
		case "fontSize", "font-size", "size":
			l, ok := ParseLength(raw)
			if !ok || l.ToPX() <= 0 {
				return false, fmt.Errorf("无效字号 %q", raw)
			}
			style.FontSize = l.ToPX()
		case "lineHeight", "line-height":
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil || f <= 0 {
				return false, fmt.Errorf("无效行高倍数 %q", raw)
			}
			style.LineHeight = f
		case "letterSpacing", "letter-spacing":
			l, ok := ParseLength(raw)
			if !ok {
				return false, fmt.Errorf("无效字间距 %q", raw)
			}
			style.LetterSpacing = l.ToPX()
		case "direction":
			switch strings.ToLower(raw) {
			case "rtl":
				style.RTL, auto = true, false
			case "ltr":
				style.RTL, auto = false, false
			case "auto":
				auto = true
			default:
				return false, fmt.Errorf("无效方向 %q", raw)
			}
		default:
			return false, fmt.Errorf("未知样式属性 %s", a.Key)
		}
	}
	return auto, nil
}

// resolveText 支持 `text "..."`、`text preset <name>` 与 `text { "段落" ... }`。
func resolveText(cmd *dsl.Command) (string, error) {
	if len(cmd.Args) >= 2 && cmd.Args[0].Value == "preset" {
		s, ok := LookupText(cmd.Args[1].Value)
		if !ok {
			return "", fmt.Errorf("未知预设文本 %s（可选：%s）", cmd.Args[1].Value, strings.Join(TextPresetNames(), ", "))
		}
		return s, nil
	}
	if len(cmd.Args) == 1 {
		return cmd.Args[0].Value, nil
	}
	if cmd.Block != nil {
		return extractText(cmd.Block), nil
	}
	if len(cmd.Args) == 0 {
		return "", nil
	}
	return "", fmt.Errorf("无法识别的 text 参数")
}

func extractText(block *dsl.Block) string {
	var parts []string
	for _, st := range block.Statements {
		if st.Text != nil {
			parts = append(parts, string(st.Text.Value))
		}
	}
	return strings.Join(parts, "\n")
}

func applyExport(spec *ExportSpec, block *dsl.Block) error {
	for _, a := range assignments(block) {
		raw := a.Value.Text()
		switch a.Key {
		case "format":
			spec.Format = strings.ToLower(raw)
		case "collage":
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("collage 需要 true/false: %w", err)
			}
			spec.Collage = b
		case "select":
			spec.Select = a.Value.Strings()
		case "preview":
			spec.Preview = raw
		case "filename":
			spec.Filename = raw
		case "jpegQuality", "quality":
			q, err := strconv.Atoi(raw)
			if err != nil || q < 1 || q > 100 {
				return fmt.Errorf("无效 JPEG 质量 %q", raw)
			}
			spec.JPEGQuality = q
		default:
			return fmt.Errorf("未知导出属性 %s", a.Key)
		}
	}
	return nil
}

func assignments(block *dsl.Block) []*dsl.Assignment {
	if block == nil {
		return nil
	}
	var out []*dsl.Assignment
	for _, st := range block.Statements {
		if st.Assignment != nil {
			out = append(out, st.Assignment)
		}
	}
	return out
}
