package layout

import (
	"errors"
	"fmt"
	"sort"
)

// Custom canvas bounds, inclusive, per axis.
const (
	MinCustomDimension = 400
	MaxCustomDimension = 5000
)

// ErrSizeOutOfRange 表示自定义画布尺寸超出 [400, 5000]。
var ErrSizeOutOfRange = errors.New("画布尺寸超出允许范围")

// StyleOverrides 记录预设尺寸锁定的样式字段；nil 表示该字段由用户决定。
type StyleOverrides struct {
	FontSize      *float64 `json:"fontSize,omitempty"`
	LineHeight    *float64 `json:"lineHeight,omitempty"`
	LetterSpacing *float64 `json:"letterSpacing,omitempty"`
}

// StyleField names an adjustable style control.
type StyleField int

const (
	FieldFontSize StyleField = iota
	FieldLineHeight
	FieldLetterSpacing
)

// IsLocked 报告某个样式字段是否被预设锁定（锁定时用户控件只读）。
func (o StyleOverrides) IsLocked(field StyleField) bool {
	switch field {
	case FieldFontSize:
		return o.FontSize != nil
	case FieldLineHeight:
		return o.LineHeight != nil
	case FieldLetterSpacing:
		return o.LetterSpacing != nil
	default:
		return false
	}
}

var styleFieldNames = []struct {
	field StyleField
	name  string
}{
	{FieldFontSize, "fontSize"},
	{FieldLineHeight, "lineHeight"},
	{FieldLetterSpacing, "letterSpacing"},
}

// LockedFields 返回被锁定字段的名称，顺序固定。
func (o StyleOverrides) LockedFields() []string {
	var out []string
	for _, f := range styleFieldNames {
		if o.IsLocked(f.field) {
			out = append(out, f.name)
		}
	}
	return out
}

// Apply 将锁定字段覆盖到 s 上并返回新的样式。
func (o StyleOverrides) Apply(s Style) Style {
	if o.FontSize != nil {
		s.FontSize = *o.FontSize
	}
	if o.LineHeight != nil {
		s.LineHeight = *o.LineHeight
	}
	if o.LetterSpacing != nil {
		s.LetterSpacing = *o.LetterSpacing
	}
	return s
}

// CanvasSize 描述目标画布：固定预设（可能带锁定样式）或用户自定义尺寸。
type CanvasSize struct {
	Name       string         `json:"name"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	SingleLine bool           `json:"singleLine"` // 仅单行模式
	Custom     bool           `json:"custom"`
	Locked     StyleOverrides `json:"locked"`
}

// Resolve 合并预设锁定字段与用户样式，得到两种渲染器统一使用的样式。
func (c CanvasSize) Resolve(user Style) Style {
	return c.Locked.Apply(user)
}

// Bounds 以矩形形式返回整张画布。
func (c CanvasSize) Bounds() Rect {
	return Rect{W: float64(c.Width), H: float64(c.Height)}
}

func (c CanvasSize) String() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// NewCustomSize 校验并构造自定义画布尺寸。
func NewCustomSize(width, height int) (CanvasSize, error) {
	if width < MinCustomDimension || width > MaxCustomDimension {
		return CanvasSize{}, fmt.Errorf("宽度 %d 不在 [%d, %d] 内: %w", width, MinCustomDimension, MaxCustomDimension, ErrSizeOutOfRange)
	}
	if height < MinCustomDimension || height > MaxCustomDimension {
		return CanvasSize{}, fmt.Errorf("高度 %d 不在 [%d, %d] 内: %w", height, MinCustomDimension, MaxCustomDimension, ErrSizeOutOfRange)
	}
	return CanvasSize{
		Name:   "custom",
		Width:  width,
		Height: height,
		Custom: true,
	}, nil
}

func locked(v float64) *float64 { return &v }

var presets = map[string]CanvasSize{
	"strip": {Name: "strip", Width: 1055, Height: 127, SingleLine: true},
	"card": {Name: "card", Width: 700, Height: 166, Locked: StyleOverrides{
		LineHeight:    locked(1.2),
		LetterSpacing: locked(0),
	}},
	"square": {Name: "square", Width: 1080, Height: 1080},
	"story":  {Name: "story", Width: 1080, Height: 1920},
	"banner": {Name: "banner", Width: 1500, Height: 500, SingleLine: true, Locked: StyleOverrides{
		FontSize: locked(72),
	}},
	"a4": {Name: "a4", Width: 2480, Height: 3508},
}

// LookupPreset 按名称查找预设尺寸。
func LookupPreset(name string) (CanvasSize, bool) {
	p, ok := presets[name]
	return p, ok
}

// Presets 返回按名称排序的全部预设尺寸。
func Presets() []CanvasSize {
	out := make([]CanvasSize, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
