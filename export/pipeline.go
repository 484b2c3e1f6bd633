package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ByLCY/specimen/binding"
	"github.com/ByLCY/specimen/layout"
	"github.com/ByLCY/specimen/renderer"
)

// ErrExportInProgress 表示已有导出正在进行。
var ErrExportInProgress = errors.New("已有导出正在进行")

// 默认文件名模板，变量：font、width、height、ext、timestamp（unix 毫秒）。
const (
	SingleTemplate  = "${font}-${width}x${height}.${ext}"
	CollageTemplate = "collage-${width}x${height}-${timestamp}.${ext}"
	BatchTemplate   = "batch-${width}x${height}-${timestamp}.pdf"
)

// Request 描述一次导出。Style 为用户样式，导出时与 Size 的锁定字段合并。
type Request struct {
	Fonts       []layout.FontHandle
	Size        layout.CanvasSize
	Style       layout.Style
	Text        string
	Format      Format
	Collage     bool
	Preview     string // 导出后恢复预览的字体（ID 或展示名），为空时取第一个字体
	Filename    string // 覆盖默认文件名模板
	JPEGQuality int
	Meta        layout.DocumentMeta
}

// Page 描述 PDF 中的一页。
type Page struct {
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Artifact 是一个导出文件。
type Artifact struct {
	Filename  string                     `json:"filename"`
	Format    Format                     `json:"format"`
	MIME      string                     `json:"mime"`
	Data      []byte                     `json:"-"`
	Width     int                        `json:"width"`
	Height    int                        `json:"height"`
	Pages     []Page                     `json:"pages,omitempty"`
	Collage   *layout.CollagePlan        `json:"collage,omitempty"`
	Specimens map[string]layout.Specimen `json:"specimens,omitempty"` // 按字体展示名索引
}

// Options 配置导出流水线。
type Options struct {
	Logger *log.Logger
	// FrameDelay 是两次渲染之间的额外等待。会话释放本身已保证上一帧读回完成。
	FrameDelay time.Duration
	Now        func() time.Time
}

// Pipeline 依次驱动渲染会话并编码导出文件。同一时刻只允许一次导出。
type Pipeline struct {
	r      renderer.Renderer
	logger *log.Logger
	delay  time.Duration
	now    func() time.Time

	busy atomic.Bool

	previewMu sync.Mutex
	preview   *image.RGBA
}

// NewPipeline 创建导出流水线。
func NewPipeline(r renderer.Renderer, opts Options) *Pipeline {
	p := &Pipeline{
		r:      r,
		logger: opts.Logger,
		delay:  opts.FrameDelay,
		now:    opts.Now,
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Select 按 ids（字体 ID 或展示名）筛选字体，保持 fonts 原有顺序。ids 为空时返回全部。
func Select(fonts []layout.FontHandle, ids []string) []layout.FontHandle {
	if len(ids) == 0 {
		return fonts
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []layout.FontHandle
	for _, f := range fonts {
		if want[f.ID] || want[f.Name] || want[trimExt(f.Name)] {
			out = append(out, f)
		}
	}
	return out
}

// Export 执行一次导出。没有字体或文本为空时不产生任何文件。
// 单个字体渲染失败只记录日志并跳过；无法获取绘图面时整体失败且不返回任何文件。
// 导出结束后（无论成功与否）恢复预览。
func (p *Pipeline) Export(ctx context.Context, req Request) ([]Artifact, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer p.busy.Store(false)

	if len(req.Fonts) == 0 || req.Text == "" {
		return nil, nil
	}
	format, err := ParseFormat(string(req.Format))
	if err != nil {
		return nil, err
	}
	req.Format = format

	fonts := p.register(ctx, req.Fonts)
	if len(fonts) == 0 {
		return nil, nil
	}
	style := req.Size.Resolve(req.Style)
	defer p.restorePreview(ctx, req, fonts, style)

	switch {
	case req.Collage:
		a, err := p.exportCollage(ctx, req, fonts, style)
		if err != nil {
			return nil, err
		}
		return []Artifact{a}, nil
	case req.Format == PDF && len(fonts) > 1:
		a, err := p.exportBatchPDF(ctx, req, fonts, style)
		if err != nil || a == nil {
			return nil, err
		}
		return []Artifact{*a}, nil
	default:
		return p.exportEach(ctx, req, fonts, style)
	}
}

// Preview 渲染交互预览并保存结果，供 LastPreview 读取。
func (p *Pipeline) Preview(ctx context.Context, font layout.FontHandle, size layout.CanvasSize, style layout.Style, text string) (*image.RGBA, error) {
	if err := p.r.Register(ctx, font); err != nil {
		return nil, err
	}
	img, _, err := p.renderSingle(ctx, font, size, size.Resolve(style), text)
	if err != nil {
		return nil, err
	}
	p.previewMu.Lock()
	p.preview = img
	p.previewMu.Unlock()
	return img, nil
}

// LastPreview 返回最近一次预览画面。
func (p *Pipeline) LastPreview() *image.RGBA {
	p.previewMu.Lock()
	defer p.previewMu.Unlock()
	return p.preview
}

func (p *Pipeline) register(ctx context.Context, fonts []layout.FontHandle) []layout.FontHandle {
	out := make([]layout.FontHandle, 0, len(fonts))
	for _, f := range fonts {
		if err := p.r.Register(ctx, f); err != nil {
			p.logger.Printf("跳过字体 %s: %v", f.Name, err)
			continue
		}
		out = append(out, f)
	}
	return out
}

// exportEach 为每个字体生成一个文件（PNG/JPEG，或单字体 PDF）。
func (p *Pipeline) exportEach(ctx context.Context, req Request, fonts []layout.FontHandle, style layout.Style) ([]Artifact, error) {
	var artifacts []Artifact
	err := p.eachFont(ctx, req, fonts, style, func(font layout.FontHandle, img *image.RGBA, spec layout.Specimen) error {
		b := img.Bounds()
		a := Artifact{
			Filename:  p.fileName(req, SingleTemplate, font.Name, b.Dx(), b.Dy()),
			Format:    req.Format,
			MIME:      req.Format.MIME(),
			Width:     b.Dx(),
			Height:    b.Dy(),
			Specimens: map[string]layout.Specimen{font.Name: spec},
		}
		var err error
		if req.Format == PDF {
			a.Data, err = encodePDF([]frame{{label: font.Name, img: img}}, req.Meta)
			a.Pages = []Page{{Label: font.Name, Width: b.Dx(), Height: b.Dy()}}
		} else {
			a.Data, err = encodeImage(img, req.Format, req.JPEGQuality)
		}
		if err != nil {
			return err
		}
		artifacts = append(artifacts, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

// exportBatchPDF 将每个字体作为一页写入同一份 PDF，页序与字体顺序一致。
func (p *Pipeline) exportBatchPDF(ctx context.Context, req Request, fonts []layout.FontHandle, style layout.Style) (*Artifact, error) {
	var (
		frames    []frame
		pages     []Page
		specimens = map[string]layout.Specimen{}
	)
	err := p.eachFont(ctx, req, fonts, style, func(font layout.FontHandle, img *image.RGBA, spec layout.Specimen) error {
		frames = append(frames, frame{label: font.Name, img: img})
		pages = append(pages, Page{Label: font.Name, Width: img.Bounds().Dx(), Height: img.Bounds().Dy()})
		specimens[font.Name] = spec
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, nil
	}
	data, err := encodePDF(frames, req.Meta)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Filename:  p.fileName(req, BatchTemplate, "", req.Size.Width, req.Size.Height),
		Format:    PDF,
		MIME:      PDF.MIME(),
		Data:      data,
		Width:     req.Size.Width,
		Height:    req.Size.Height,
		Pages:     pages,
		Specimens: specimens,
	}, nil
}

func (p *Pipeline) exportCollage(ctx context.Context, req Request, fonts []layout.FontHandle, style layout.Style) (Artifact, error) {
	s, err := p.r.Begin(ctx)
	if err != nil {
		return Artifact{}, fmt.Errorf("获取绘图面失败: %w", err)
	}
	defer s.Release()

	plan, err := s.RenderCollage(fonts, req.Size, style, req.Text)
	if err != nil {
		return Artifact{}, fmt.Errorf("渲染拼图失败: %w", err)
	}
	img, err := s.Image()
	if err != nil {
		return Artifact{}, fmt.Errorf("读取拼图失败: %w", err)
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	a := Artifact{
		Filename: p.fileName(req, CollageTemplate, "", w, h),
		Format:   req.Format,
		MIME:     req.Format.MIME(),
		Width:    w,
		Height:   h,
		Collage:  &plan,
	}
	if req.Format == PDF {
		a.Data, err = encodePDF([]frame{{label: "collage", img: img}}, req.Meta)
		a.Pages = []Page{{Label: "collage", Width: w, Height: h}}
	} else {
		a.Data, err = encodeImage(img, req.Format, req.JPEGQuality)
	}
	if err != nil {
		return Artifact{}, err
	}
	return a, nil
}

// eachFont 按顺序为每个字体开启一个独占会话：绘制 → 读回 → 释放，然后才开始下一个。
// 绘图面不可用或 ctx 结束时中止；单个字体失败记录日志后跳过。
func (p *Pipeline) eachFont(ctx context.Context, req Request, fonts []layout.FontHandle, style layout.Style, emit func(layout.FontHandle, *image.RGBA, layout.Specimen) error) error {
	for i, font := range fonts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 && p.delay > 0 {
			select {
			case <-time.After(p.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		img, spec, err := p.renderSingle(ctx, font, req.Size, style, req.Text)
		if err != nil {
			if errors.Is(err, renderer.ErrNoSurface) {
				return fmt.Errorf("获取绘图面失败: %w", err)
			}
			p.logger.Printf("跳过字体 %s: %v", font.Name, err)
			continue
		}
		if err := emit(font, img, spec); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) renderSingle(ctx context.Context, font layout.FontHandle, size layout.CanvasSize, style layout.Style, text string) (*image.RGBA, layout.Specimen, error) {
	s, err := p.r.Begin(ctx)
	if err != nil {
		return nil, layout.Specimen{}, err
	}
	defer s.Release()

	spec, err := s.RenderSingle(font, size, style, text)
	if err != nil {
		return nil, layout.Specimen{}, err
	}
	img, err := s.Image()
	if err != nil {
		return nil, layout.Specimen{}, err
	}
	return img, spec, nil
}

// restorePreview 导出结束后重新渲染选中的预览字体。
func (p *Pipeline) restorePreview(ctx context.Context, req Request, fonts []layout.FontHandle, style layout.Style) {
	font := fonts[0]
	if req.Preview != "" {
		if sel := Select(fonts, []string{req.Preview}); len(sel) > 0 {
			font = sel[0]
		}
	}
	img, _, err := p.renderSingle(ctx, font, req.Size, style, req.Text)
	if err != nil {
		p.logger.Printf("恢复预览 %s 失败: %v", font.Name, err)
		return
	}
	p.previewMu.Lock()
	p.preview = img
	p.previewMu.Unlock()
}

func (p *Pipeline) fileName(req Request, template, font string, width, height int) string {
	if req.Filename != "" {
		template = req.Filename
	}
	return binding.Interpolate(template, map[string]any{
		"font":      sanitize(trimExt(font)),
		"width":     width,
		"height":    height,
		"ext":       req.Format.Ext(),
		"timestamp": p.now().UnixMilli(),
	})
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func sanitize(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}
