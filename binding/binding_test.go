package binding

import "testing"

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"user":  map[string]any{"name": "Ada"},
		"tags":  []any{"serif", "display"},
		"width": 700,
		"names": map[string]string{"ext": "png"},
	}
	cases := []struct {
		in   string
		want string
	}{
		{"Hello ${user.name}", "Hello Ada"},
		{"${tags[1]}", "display"},
		{"${width}x166", "700x166"},
		{"file.${names.ext}", "file.png"},
		{"${missing}", "${missing}"},
		{"${missing|fallback}", "fallback"},
		{"${user.name|x}", "Ada"},
		{"${ user.name }", "Ada"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := Interpolate(tc.in, data); got != tc.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// data 为空时应保留占位符，但 fallback 仍然生效。
func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("${a}-${b|z}", nil); got != "${a}-z" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestLookup(t *testing.T) {
	data := map[string]any{"a": []any{map[string]any{"b": 3}}}
	v, ok := Lookup(data, "a[0].b")
	if !ok || v != 3 {
		t.Fatalf("Lookup = %v, %v", v, ok)
	}
	if _, ok := Lookup(data, "a[2].b"); ok {
		t.Fatalf("expected out-of-range lookup to fail")
	}
}
