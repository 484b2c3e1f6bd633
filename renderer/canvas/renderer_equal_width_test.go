package canvasrenderer

import (
	"testing"

	"github.com/ByLCY/specimen/layout"
)

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r := newTestRenderer(t, regular)
	m, err := r.Measurer(regular.ID, 32)
	if err != nil {
		t.Fatalf("measurer: %v", err)
	}
	style := layout.DefaultStyle()

	first := "SAMPLE-A"
	limit := m.MeasureText(first, style.LetterSpacing)
	if limit <= 0 {
		t.Fatalf("invalid measured width: %g", limit)
	}

	lines := layout.Wrap(first+"\n"+"SAMPLE-B", limit, m, style, false)
	if got := len(lines); got != 2 {
		t.Fatalf("expected 2 lines without blank, got %d", got)
	}
	if lines[0].Content != first {
		t.Fatalf("first line mismatch: got=%q want=%q", lines[0].Content, first)
	}
	if lines[1].Content != "SAMPLE-B" {
		t.Fatalf("second line mismatch: got=%q want=%q", lines[1].Content, "SAMPLE-B")
	}
}
