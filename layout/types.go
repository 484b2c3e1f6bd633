package layout

// 该文件定义样张渲染的核心数据模型，供排版、渲染、导出与调试 JSON 共用。
// 所有长度单位均为像素（px）。

// FontHandle 引用一个已解码的字体。核心只读取 ID 与 Name，Data 交给绘图后端注册。
type FontHandle struct {
	ID   string `json:"id"`   // 唯一的渲染标识
	Name string `json:"name"` // 展示用文件名
	Data []byte `json:"-"`
}

// Style 描述一次渲染实际使用的文本样式（已完成预设锁定值的合并）。
type Style struct {
	FontSize      float64 `json:"fontSize"`      // px
	LineHeight    float64 `json:"lineHeight"`    // 行高倍数
	LetterSpacing float64 `json:"letterSpacing"` // px，每个字符之后追加
	RTL           bool    `json:"rtl"`
}

// Default style values used when neither the user nor a preset provides one.
const (
	DefaultFontSize      = 32.0
	DefaultLineHeight    = 1.2
	DefaultLetterSpacing = 0.0
)

// DefaultStyle 返回用户可调整样式的默认值。
func DefaultStyle() Style {
	return Style{
		FontSize:      DefaultFontSize,
		LineHeight:    DefaultLineHeight,
		LetterSpacing: DefaultLetterSpacing,
	}
}

// LinePitch 返回相邻两行中心的间距：fontSize * lineHeight。
func (s Style) LinePitch() float64 { return s.FontSize * s.LineHeight }

// TextLine 表示折行后的一行文本及其测量宽度。
type TextLine struct {
	Content string  `json:"content"`
	Width   float64 `json:"width"`
}

// Rect 是一个轴对齐矩形。
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Specimen 是单个样张排版后的几何结果，渲染器据此逐行绘制。
type Specimen struct {
	Lines   []TextLine `json:"lines"`
	Centers []float64  `json:"centers"` // 每行的垂直中心
	AnchorX float64    `json:"anchorX"` // 水平锚点：LTR 为左边界，RTL 为右边界
	RTL     bool       `json:"rtl"`
	Style   Style      `json:"style"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
