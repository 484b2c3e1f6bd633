package layout

import (
	"math"
	"testing"
)

func TestCenterLinesCentersBlock(t *testing.T) {
	style := Style{FontSize: 32, LineHeight: 1.2}
	pitch := 38.4
	for count := 1; count <= 5; count++ {
		centers := CenterLines(count, style, 0, 166)
		if len(centers) != count {
			t.Fatalf("expected %d centers, got %d", count, len(centers))
		}
		top := centers[0] - pitch/2
		bottom := centers[count-1] + pitch/2
		if math.Abs(top-(166-bottom)) > 1e-9 {
			t.Fatalf("count=%d: block not centered (top %g, bottom gap %g)", count, top, 166-bottom)
		}
		for i := 1; i < count; i++ {
			if math.Abs(centers[i]-centers[i-1]-pitch) > 1e-9 {
				t.Fatalf("count=%d: pitch mismatch at %d", count, i)
			}
		}
	}
	if CenterLines(0, style, 0, 100) != nil {
		t.Fatalf("expected no centers for zero lines")
	}
}

func TestLayoutSpecimenAnchors(t *testing.T) {
	m := gridMeasurer{advance: 20}
	region := Rect{X: 100, Y: 50, W: 700, H: 166}

	ltr := LayoutSpecimen("abc", region, DefaultStyle(), false, m)
	if ltr.AnchorX != 140 || ltr.RTL {
		t.Fatalf("unexpected LTR anchor %+v", ltr)
	}
	if want := 50 + 166.0/2; math.Abs(ltr.Centers[0]-want) > 1e-9 {
		t.Fatalf("single line should sit at region center: got %g want %g", ltr.Centers[0], want)
	}

	style := DefaultStyle()
	style.RTL = true
	rtl := LayoutSpecimen("abc", region, style, false, m)
	if rtl.AnchorX != 760 || !rtl.RTL {
		t.Fatalf("unexpected RTL anchor %+v", rtl)
	}
}

// 可用宽度 = 区域宽度 - 2*40。
func TestLayoutSpecimenUsesUsableWidth(t *testing.T) {
	m := gridMeasurer{advance: 10}
	region := Rect{W: 180} // usable 100
	s := LayoutSpecimen("abcdefghijkl", region, DefaultStyle(), false, m)
	if len(s.Lines) != 2 || s.Lines[0].Content != "abcdefghij" {
		t.Fatalf("unexpected lines %+v", s.Lines)
	}
	single := LayoutSpecimen("abcdefghijkl", region, DefaultStyle(), true, m)
	if len(single.Lines) != 1 {
		t.Fatalf("single-line mode must not wrap: %+v", single.Lines)
	}
}
