package canvasrenderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"

	"github.com/ByLCY/specimen/fonts"
	"github.com/ByLCY/specimen/layout"
	"github.com/ByLCY/specimen/renderer"
)

// 画布坐标 1 单位 = 1 px。canvas 的字号单位为 pt、坐标单位为 mm，
// 因此创建字体面时做一次 px(=mm)→pt 换算，TextWidth 返回值即为 px。

var (
	borderColor = canvas.Hex("#d0d0d0")
	labelFill   = canvas.Hex("#f8f8f8")
	labelColor  = canvas.Hex("#555555")
)

// Renderer draws specimens via github.com/tdewolff/canvas onto one shared surface.
type Renderer struct {
	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily // by FontHandle.ID
	label    *canvas.FontFamily

	// surface 是容量为 1 的信号量：持有其中的值即独占绘图面。
	surface chan *surface
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Session  = (*session)(nil)
)

type surface struct {
	c        *canvas.Canvas
	scale    float64
	bounds   image.Rectangle // 读回的像素尺寸
	overlays []overlay
}

// overlay 是已按最终缩放栅格化的单元格样张，读回时按像素位置合成。
type overlay struct {
	img *image.RGBA
	at  image.Point
}

// NewRenderer creates a canvas-based renderer with an idle surface.
func NewRenderer() *Renderer {
	r := &Renderer{
		families: map[string]*canvas.FontFamily{},
		surface:  make(chan *surface, 1),
	}
	r.surface <- &surface{scale: 1}
	return r
}

// Register 将字体数据载入 canvas 字体族，按 ID 缓存。
func (r *Renderer) Register(ctx context.Context, font layout.FontHandle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if font.ID == "" {
		return fmt.Errorf("字体 %s 缺少 ID", font.Name)
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if _, ok := r.families[font.ID]; ok {
		return nil
	}
	family := canvas.NewFontFamily(font.ID)
	if err := family.LoadFont(font.Data, 0, canvas.FontRegular); err != nil {
		return fmt.Errorf("注册字体 %s 失败: %w", font.Name, err)
	}
	r.families[font.ID] = family
	return nil
}

// Begin 等待并独占绘图面。
func (r *Renderer) Begin(ctx context.Context) (renderer.Session, error) {
	select {
	case s := <-r.surface:
		return &session{r: r, surf: s}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", renderer.ErrNoSurface, ctx.Err())
	}
}

// Measurer 返回字体在 sizePx 下的度量，折行与绘制共用。
func (r *Renderer) Measurer(fontID string, sizePx float64) (layout.Measurer, error) {
	face, err := r.fontFace(fontID, sizePx, canvas.Black)
	if err != nil {
		return nil, err
	}
	return faceMeasurer{face: face}, nil
}

func (r *Renderer) fontFace(fontID string, sizePx float64, col color.Color) (*canvas.FontFace, error) {
	r.fontMu.Lock()
	family, ok := r.families[fontID]
	r.fontMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", renderer.ErrFontNotRegistered, fontID)
	}
	return family.Face(toPt(sizePx), col, canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) labelFace(sizePx float64) (*canvas.FontFace, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.label == nil {
		data, err := fonts.Load(fonts.LabelFont)
		if err != nil {
			return nil, err
		}
		family := canvas.NewFontFamily("specimen-label")
		if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
			return nil, fmt.Errorf("载入标签字体失败: %w", err)
		}
		r.label = family
	}
	return r.label.Face(toPt(sizePx), labelColor, canvas.FontRegular, canvas.FontNormal), nil
}

type session struct {
	r    *Renderer
	surf *surface
	once sync.Once
}

// Release 归还绘图面；之后该会话的绘制与读回都返回 renderer.ErrNoSurface。
func (s *session) Release() {
	s.once.Do(func() {
		s.r.surface <- s.surf
		s.surf = nil
	})
}

// RenderSingle 实现单样张渲染：白底、黑字、左右各 40px 边距、整体垂直居中。
func (s *session) RenderSingle(font layout.FontHandle, size layout.CanvasSize, style layout.Style, text string) (layout.Specimen, error) {
	if s.surf == nil {
		return layout.Specimen{}, renderer.ErrNoSurface
	}
	face, err := s.r.fontFace(font.ID, style.FontSize, canvas.Black)
	if err != nil {
		return layout.Specimen{}, err
	}
	w, h := float64(size.Width), float64(size.Height)
	c := canvas.New(w, h)
	ctx := newContext(c)
	fillBackground(ctx, w, h)
	s.surf.reset(c, 1, image.Rect(0, 0, size.Width, size.Height))

	if text == "" {
		return layout.Specimen{}, nil
	}
	spec := layout.LayoutSpecimen(text, size.Bounds(), style, size.SingleLine, faceMeasurer{face: face})
	drawSpecimen(ctx, face, spec)
	return spec, nil
}

// RenderCollage 实现拼图渲染。整张图以未缩放坐标绘制，读回时按 plan.Scale 统一栅格化，
// 因此标签、字号与间距一起缩放。每个单元格的样张绘制在独立子画布上，
// 子画布的边界即裁剪区域，溢出内容不会进入相邻单元格或标签带。
func (s *session) RenderCollage(fontList []layout.FontHandle, size layout.CanvasSize, style layout.Style, text string) (layout.CollagePlan, error) {
	if s.surf == nil {
		return layout.CollagePlan{}, renderer.ErrNoSurface
	}
	if len(fontList) == 0 {
		return layout.CollagePlan{Scale: 1}, nil
	}
	faces := make([]*canvas.FontFace, len(fontList))
	for i, font := range fontList {
		face, err := s.r.fontFace(font.ID, style.FontSize, canvas.Black)
		if err != nil {
			return layout.CollagePlan{}, err
		}
		faces[i] = face
	}

	plan := layout.PlanCollage(len(fontList), float64(size.Width), float64(size.Height), layout.MaxCollageDimension)
	label, err := s.r.labelFace(plan.LabelSize)
	if err != nil {
		return layout.CollagePlan{}, err
	}

	c := canvas.New(plan.TotalWidth, plan.TotalHeight)
	ctx := newContext(c)
	fillBackground(ctx, plan.TotalWidth, plan.TotalHeight)

	var overlays []overlay
	for i, font := range fontList {
		cell := plan.Cells[i]
		drawCellFrame(ctx, plan, cell, font.Name, label)
		if ov, ok := renderCell(plan, cell, faces[i], style, text, size.SingleLine); ok {
			overlays = append(overlays, ov)
		}
	}
	s.surf.reset(c, plan.Scale, image.Rect(0, 0, plan.OutputWidth, plan.OutputHeight))
	s.surf.overlays = overlays
	return plan, nil
}

// Image 按当前缩放栅格化绘图面并合成单元格样张，输出尺寸固定为方案给出的像素尺寸。
func (s *session) Image() (*image.RGBA, error) {
	if s.surf == nil {
		return nil, renderer.ErrNoSurface
	}
	if s.surf.c == nil {
		return nil, renderer.ErrNothingRendered
	}
	raster := rasterizer.Draw(s.surf.c, canvas.DPMM(s.surf.scale), canvas.DefaultColorSpace)
	img := image.NewRGBA(s.surf.bounds)
	draw.Draw(img, img.Bounds(), image.NewUniform(canvas.White), image.Point{}, draw.Src)
	draw.Draw(img, img.Bounds(), raster, raster.Bounds().Min, draw.Src)
	for _, ov := range s.surf.overlays {
		b := ov.img.Bounds()
		draw.Draw(img, b.Sub(b.Min).Add(ov.at), ov.img, b.Min, draw.Over)
	}
	return img, nil
}

func (s *surface) reset(c *canvas.Canvas, scale float64, bounds image.Rectangle) {
	s.c = c
	s.scale = scale
	s.bounds = bounds
	s.overlays = nil
}

func renderCell(plan layout.CollagePlan, cell layout.Cell, face *canvas.FontFace, style layout.Style, text string, singleLine bool) (overlay, bool) {
	clip := plan.ClipRect(cell)
	if text == "" || clip.W <= 0 || clip.H <= 0 {
		return overlay{}, false
	}
	sub := canvas.New(clip.W, clip.H)
	ctx := newContext(sub)

	// 居中基于标签带以下的整块区域，再平移到子画布坐标。
	region := plan.SpecimenRegion(cell)
	region.X -= clip.X
	region.Y -= clip.Y
	spec := layout.LayoutSpecimen(text, region, style, singleLine, faceMeasurer{face: face})
	drawSpecimen(ctx, face, spec)

	img := rasterizer.Draw(sub, canvas.DPMM(plan.Scale), canvas.DefaultColorSpace)
	at := image.Pt(int(math.Round(clip.X*plan.Scale)), int(math.Round(clip.Y*plan.Scale)))
	return overlay{img: img, at: at}, true
}

func drawCellFrame(ctx *canvas.Context, plan layout.CollagePlan, cell layout.Cell, name string, label *canvas.FontFace) {
	ctx.Push()
	defer ctx.Pop()

	// 标签带背景
	ctx.SetFillColor(labelFill)
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(cell.X, cell.Y, canvas.Rectangle(plan.CellWidth, plan.LabelBand))

	// 1px 边框
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(borderColor)
	ctx.SetStrokeWidth(layout.CellBorderWidth)
	ctx.DrawPath(cell.X, cell.Y, canvas.Rectangle(plan.CellWidth, plan.CellHeight))

	text := fitLabel(label, name, plan.CellWidth-2*layout.LabelPadding)
	if text == "" {
		return
	}
	baseline := cell.Y + plan.LabelBand/2 + centerOffset(label)
	ctx.DrawText(cell.X+layout.LabelPadding, baseline, canvas.NewTextLine(label, text, canvas.Left))
}

// fitLabel 截断过长的标签并追加省略号。
func fitLabel(face *canvas.FontFace, name string, maxWidth float64) string {
	if maxWidth <= 0 {
		return ""
	}
	if face.TextWidth(name) <= maxWidth {
		return name
	}
	runes := []rune(name)
	for n := len(runes) - 1; n > 0; n-- {
		s := string(runes[:n]) + "…"
		if face.TextWidth(s) <= maxWidth {
			return s
		}
	}
	return ""
}

func drawSpecimen(ctx *canvas.Context, face *canvas.FontFace, spec layout.Specimen) {
	offset := centerOffset(face)
	for i, line := range spec.Lines {
		if line.Content == "" {
			continue
		}
		drawLine(ctx, face, line.Content, spec.AnchorX, spec.Centers[i]+offset, spec.Style.LetterSpacing, spec.RTL)
	}
}

// drawLine 在 anchorX 处绘制一行。存在字间距时逐字符定位，
// 字符 i 的偏移 = TextWidth(前 i 个字符) + i*spacing，与 faceMeasurer 的测量一致。
// RTL 行先按测量宽度求出左端，再从左向右排布，字形顺序与无字间距时相同。
func drawLine(ctx *canvas.Context, face *canvas.FontFace, line string, anchorX, baseline, spacing float64, rtl bool) {
	if spacing == 0 {
		align := canvas.Left
		if rtl {
			align = canvas.Right
		}
		ctx.DrawText(anchorX, baseline, canvas.NewTextLine(face, line, align))
		return
	}
	x0 := anchorX
	if rtl {
		x0 = anchorX - faceMeasurer{face: face}.MeasureText(line, spacing)
	}
	runes := []rune(line)
	for i, ch := range runes {
		x := x0 + face.TextWidth(string(runes[:i])) + spacing*float64(i)
		ctx.DrawText(x, baseline, canvas.NewTextLine(face, string(ch), canvas.Left))
	}
}

// centerOffset 是从行中心到基线的距离：使上升部与下降部整体以行中心对称。
func centerOffset(face *canvas.FontFace) float64 {
	m := face.Metrics()
	return (m.Ascent - m.Descent) / 2
}

func newContext(c *canvas.Canvas) *canvas.Context {
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标以左上角为原点、y 向下
	return ctx
}

func fillBackground(ctx *canvas.Context, w, h float64) {
	ctx.SetFillColor(canvas.White)
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))
}

// faceMeasurer 以 canvas 字体面测量文本：TextWidth + 每字符一个 letterSpacing。
type faceMeasurer struct {
	face *canvas.FontFace
}

func (m faceMeasurer) MeasureText(s string, letterSpacing float64) float64 {
	if s == "" {
		return 0
	}
	return m.face.TextWidth(s) + letterSpacing*float64(utf8.RuneCountInString(s))
}

// toPt 将 px（画布单位，数值上等同 mm）换算为 canvas 字号使用的 pt。
func toPt(px float64) float64 { return px * layout.MmToPt }
