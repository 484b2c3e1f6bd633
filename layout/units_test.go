package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		back := pt * PtToMm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt back=%g diff=%g", pt, back, diff)
		}
	}
}

// TestParseLength 覆盖常见单位到 px 的转换。
func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"32", 32},
		{"32px", 32},
		{"24pt", 32},
		{"0.5in", 48},
		{"25.4mm", 96},
		{"-1", -1},
		{" 12PX ", 12},
	}
	for _, tc := range cases {
		l, ok := ParseLength(tc.in)
		if !ok {
			t.Fatalf("ParseLength(%q) failed", tc.in)
		}
		if got := l.ToPX(); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ParseLength(%q).ToPX() = %g, want %g", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"", "px", "abc", "12em"} {
		if _, ok := ParseLength(bad); ok {
			t.Fatalf("ParseLength(%q) should fail", bad)
		}
	}
}
