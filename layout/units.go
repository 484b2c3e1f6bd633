package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe lengths for style values written in job files.

// Unit represents the original unit of a length value as written.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, read as px
	UnitPX               // pixels (CSS, 96 per inch)
	UnitPT               // points
	UnitMM               // millimeters
	UnitIN               // inches
)

// Conversion constants.
const (
	PtToMm  = 0.352777
	MmToPt  = 1.0 / PtToMm
	PxPerIn = 96.0
	PtPerIn = 72.0
	MmPerIn = 25.4

	// MmPerPt 是精确值 25.4/72，用于页面几何必须与像素一一对应的场合。
	MmPerPt = MmPerIn / PtPerIn
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPX converts the length to pixels.
func (l Length) ToPX() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PxPerIn / PtPerIn
	case UnitMM:
		return l.Value * PxPerIn / MmPerIn
	case UnitIN:
		return l.Value * PxPerIn
	default:
		return l.Value
	}
}

// ParseLength parses "32", "32px", "24pt", "10mm" or "0.5in". ok is false when the number is malformed.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"in", UnitIN}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}
