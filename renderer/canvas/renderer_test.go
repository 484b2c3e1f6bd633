package canvasrenderer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/specimen/layout"
	"github.com/ByLCY/specimen/renderer"
)

var (
	regular = layout.FontHandle{ID: "font-1-go-regular", Name: "Go-Regular.ttf", Data: goregular.TTF}
	bold    = layout.FontHandle{ID: "font-2-go-bold", Name: "Go-Bold.ttf", Data: gobold.TTF}
	mono    = layout.FontHandle{ID: "font-3-go-mono", Name: "Go-Mono.ttf", Data: gomono.TTF}
)

func newTestRenderer(t *testing.T, fonts ...layout.FontHandle) *Renderer {
	t.Helper()
	r := NewRenderer()
	for _, f := range fonts {
		if err := r.Register(context.Background(), f); err != nil {
			t.Fatalf("register %s: %v", f.Name, err)
		}
	}
	return r
}

func begin(t *testing.T, r *Renderer) renderer.Session {
	t.Helper()
	s, err := r.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	t.Cleanup(s.Release)
	return s
}

func preset(t *testing.T, name string) layout.CanvasSize {
	t.Helper()
	p, ok := layout.LookupPreset(name)
	if !ok {
		t.Fatalf("missing preset %s", name)
	}
	return p
}

func isWhite(c color.RGBA) bool { return c.R == 255 && c.G == 255 && c.B == 255 }

func TestRenderSingleMatchesCanvasSize(t *testing.T) {
	r := newTestRenderer(t, regular)
	s := begin(t, r)
	card := preset(t, "card")

	spec, err := s.RenderSingle(regular, card, card.Resolve(layout.DefaultStyle()), "Sphinx of black quartz")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(spec.Lines) == 0 || spec.AnchorX != layout.SpecimenMargin {
		t.Fatalf("unexpected specimen: %+v", spec)
	}
	img, err := s.Image()
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(700, 166) {
		t.Fatalf("image size = %v, want 700x166", got)
	}
	if !isWhite(img.RGBAAt(2, 2)) || !isWhite(img.RGBAAt(697, 163)) {
		t.Fatalf("expected white background at corners")
	}
	if !hasInk(img, image.Rect(0, 0, 700, 166)) {
		t.Fatalf("expected text pixels on the surface")
	}
}

func TestRenderSingleEmptyTextIsBlank(t *testing.T) {
	r := newTestRenderer(t, regular)
	s := begin(t, r)
	strip := preset(t, "strip")

	spec, err := s.RenderSingle(regular, strip, layout.DefaultStyle(), "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(spec.Lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(spec.Lines))
	}
	img, err := s.Image()
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	if hasInk(img, img.Bounds()) {
		t.Fatalf("expected a blank white surface")
	}
}

func TestRenderSingleRTLAnchorsRight(t *testing.T) {
	r := newTestRenderer(t, regular)
	s := begin(t, r)
	card := preset(t, "card")
	style := card.Resolve(layout.DefaultStyle())
	style.RTL = true

	spec, err := s.RenderSingle(regular, card, style, "abc")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if spec.AnchorX != 700-layout.SpecimenMargin {
		t.Fatalf("anchor = %g, want %g", spec.AnchorX, 700-layout.SpecimenMargin)
	}
	img, _ := s.Image()
	if hasInk(img, image.Rect(0, 0, 350, 166)) {
		t.Fatalf("right-aligned short text should leave the left half blank")
	}
	if !hasInk(img, image.Rect(350, 0, 700, 166)) {
		t.Fatalf("expected ink in the right half")
	}
}

// RTL 行在有无字间距时字形顺序与右边界一致。
func TestRTLLetterSpacingKeepsGlyphOrder(t *testing.T) {
	r := newTestRenderer(t, regular)
	square := preset(t, "square")

	columns := func(spacing float64) []bool {
		s := begin(t, r)
		defer s.Release()
		style := layout.Style{FontSize: 200, LineHeight: 1.2, LetterSpacing: spacing, RTL: true}
		if _, err := s.RenderSingle(regular, square, style, "IW"); err != nil {
			t.Fatalf("render: %v", err)
		}
		img, err := s.Image()
		if err != nil {
			t.Fatalf("image: %v", err)
		}
		cols := make([]bool, img.Bounds().Dx())
		for x := range cols {
			cols[x] = hasInk(img, image.Rect(x, 0, x+1, img.Bounds().Dy()))
		}
		return cols
	}

	plain, spaced := columns(0), columns(0.001)
	diff := 0
	for x := range plain {
		if plain[x] != spaced[x] {
			diff++
		}
	}
	if diff > 4 {
		t.Fatalf("ink columns differ in %d places between spacing 0 and 0.001", diff)
	}
	// 右边界不越过锚点
	last := -1
	for x := range spaced {
		if spaced[x] {
			last = x
		}
	}
	if last < 0 || last > int(1080-layout.SpecimenMargin)+1 {
		t.Fatalf("right edge %d beyond anchor", last)
	}
}

func TestWrappedLinesFitUsableWidth(t *testing.T) {
	r := newTestRenderer(t, regular)
	s := begin(t, r)
	square := preset(t, "square")
	style := layout.Style{FontSize: 48, LineHeight: 1.2, LetterSpacing: 2}

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 8)
	spec, err := s.RenderSingle(regular, square, style, text)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(spec.Lines) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(spec.Lines))
	}
	limit := layout.UsableWidth(square.Bounds())
	m, err := r.Measurer(regular.ID, style.FontSize)
	if err != nil {
		t.Fatalf("measurer: %v", err)
	}
	for i, line := range spec.Lines {
		if line.Width > limit {
			t.Fatalf("line %d width %g exceeds %g", i, line.Width, limit)
		}
		if got := m.MeasureText(line.Content, style.LetterSpacing); got != line.Width {
			t.Fatalf("line %d width %g, re-measured %g", i, line.Width, got)
		}
	}
}

func TestMeasurerAddsLetterSpacingPerRune(t *testing.T) {
	r := newTestRenderer(t, mono)
	m, err := r.Measurer(mono.ID, 20)
	if err != nil {
		t.Fatalf("measurer: %v", err)
	}
	plain := m.MeasureText("añb", 0)
	spaced := m.MeasureText("añb", 4)
	if diff := spaced - plain; diff < 11.999 || diff > 12.001 {
		t.Fatalf("spacing added %g, want 12", diff)
	}
	if m.MeasureText("", 4) != 0 {
		t.Fatalf("empty text should measure 0")
	}
}

func TestRenderCollageThreeFonts(t *testing.T) {
	r := newTestRenderer(t, regular, bold, mono)
	s := begin(t, r)
	strip := preset(t, "strip")

	plan, err := s.RenderCollage([]layout.FontHandle{regular, bold, mono}, strip, layout.DefaultStyle(), "Hamburgefonstiv")
	if err != nil {
		t.Fatalf("collage: %v", err)
	}
	if plan.Grid != (layout.Grid{Columns: 2, Rows: 2}) || plan.Scale != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	img, err := s.Image()
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(2110, 254) {
		t.Fatalf("image size = %v, want 2110x254", got)
	}
	// 第四格没有字体，样张区域保持空白
	if hasInk(img, image.Rect(1055+10, 127+40, 2110-10, 254-10)) {
		t.Fatalf("empty fourth cell should stay blank")
	}
	if !hasInk(img, image.Rect(1055+10, 127+40, 2110-10, 254-10).Sub(image.Pt(1055, 0))) {
		t.Fatalf("third cell should contain the specimen")
	}
}

// 超宽的样张被裁剪在格子内，不会溢出到右侧相邻格子。
func TestRenderCollageClipsOverflow(t *testing.T) {
	r := newTestRenderer(t, regular, bold)
	s := begin(t, r)
	strip := preset(t, "strip")
	style := layout.Style{FontSize: 96, LineHeight: 1.2}

	_, err := s.RenderCollage([]layout.FontHandle{regular, bold}, strip, style, strings.Repeat("W", 40))
	if err != nil {
		t.Fatalf("collage: %v", err)
	}
	img, _ := s.Image()
	// 右侧格子的左边距内（边框与样张锚点之间）
	if hasInk(img, image.Rect(1057, 60, 1085, 100)) {
		t.Fatalf("specimen leaked into the neighbouring cell")
	}
	if !hasInk(img, image.Rect(900, 60, 1045, 100)) {
		t.Fatalf("expected overflowing text up to the clip edge")
	}
}

func TestRenderCollageScalesDown(t *testing.T) {
	r := newTestRenderer(t, regular, bold)
	s := begin(t, r)
	size, err := layout.NewCustomSize(4000, 500)
	if err != nil {
		t.Fatal(err)
	}
	plan, err := s.RenderCollage([]layout.FontHandle{regular, bold}, size, layout.DefaultStyle(), "Aa")
	if err != nil {
		t.Fatalf("collage: %v", err)
	}
	img, _ := s.Image()
	if got := img.Bounds().Size(); got != image.Pt(plan.OutputWidth, plan.OutputHeight) {
		t.Fatalf("image size = %v, want %dx%d", got, plan.OutputWidth, plan.OutputHeight)
	}
	if plan.OutputWidth != 5000 || plan.OutputHeight != 313 {
		t.Fatalf("unexpected output %dx%d", plan.OutputWidth, plan.OutputHeight)
	}
}

func TestRenderCollageWithoutFontsKeepsSurface(t *testing.T) {
	r := newTestRenderer(t, regular)
	s := begin(t, r)
	card := preset(t, "card")
	if _, err := s.RenderSingle(regular, card, card.Resolve(layout.DefaultStyle()), "Aa"); err != nil {
		t.Fatalf("render: %v", err)
	}
	plan, err := s.RenderCollage(nil, card, layout.DefaultStyle(), "Aa")
	if err != nil || !plan.Empty() {
		t.Fatalf("expected empty plan, got %+v, %v", plan, err)
	}
	img, _ := s.Image()
	if got := img.Bounds().Size(); got != image.Pt(700, 166) {
		t.Fatalf("surface changed to %v", got)
	}
}

func TestRenderUnregisteredFont(t *testing.T) {
	r := newTestRenderer(t)
	s := begin(t, r)
	card := preset(t, "card")
	if _, err := s.RenderSingle(regular, card, layout.DefaultStyle(), "Aa"); !errors.Is(err, renderer.ErrFontNotRegistered) {
		t.Fatalf("expected ErrFontNotRegistered, got %v", err)
	}
	if _, err := s.Image(); !errors.Is(err, renderer.ErrNothingRendered) {
		t.Fatalf("expected ErrNothingRendered, got %v", err)
	}
	if err := r.Register(context.Background(), layout.FontHandle{Name: "x", Data: goregular.TTF}); err == nil {
		t.Fatalf("expected error for a font without ID")
	}
}

func TestBeginIsExclusive(t *testing.T) {
	r := newTestRenderer(t)
	first, err := r.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := r.Begin(ctx); !errors.Is(err, renderer.ErrNoSurface) {
		t.Fatalf("expected ErrNoSurface while held, got %v", err)
	}

	first.Release()
	first.Release()
	if _, err := first.RenderSingle(regular, preset(t, "card"), layout.DefaultStyle(), "Aa"); !errors.Is(err, renderer.ErrNoSurface) {
		t.Fatalf("expected ErrNoSurface after release, got %v", err)
	}
	if _, err := first.RenderCollage([]layout.FontHandle{regular}, preset(t, "card"), layout.DefaultStyle(), "Aa"); !errors.Is(err, renderer.ErrNoSurface) {
		t.Fatalf("expected ErrNoSurface after release, got %v", err)
	}
	if _, err := first.Image(); !errors.Is(err, renderer.ErrNoSurface) {
		t.Fatalf("expected ErrNoSurface after release, got %v", err)
	}
	second, err := r.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin after release: %v", err)
	}
	second.Release()
}

func hasInk(img *image.RGBA, rect image.Rectangle) bool {
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if c := img.RGBAAt(x, y); c.R < 128 && c.G < 128 && c.B < 128 {
				return true
			}
		}
	}
	return false
}
