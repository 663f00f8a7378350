package css

import (
	"fmt"
	"image/color"
	"strconv"
)

// Kind selects the active variant of a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindKeyword
	KindLength
	KindPercentage
	KindColor
	KindAuto
	KindInherit
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindKeyword:
		return "keyword"
	case KindLength:
		return "length"
	case KindPercentage:
		return "percentage"
	case KindColor:
		return "color"
	case KindAuto:
		return "auto"
	case KindInherit:
		return "inherit"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a computed property value. Exactly one variant is active: Number
// is only meaningful for lengths (pixels) and percentages, Keyword for
// keywords and Color for colors.
type Value struct {
	Kind    Kind
	Number  float64
	Keyword string
	Color   color.RGBA
}

func None() Value    { return Value{Kind: KindNone} }
func Auto() Value    { return Value{Kind: KindAuto} }
func Inherit() Value { return Value{Kind: KindInherit} }

// Length returns a length value in pixels.
func Length(px float64) Value { return Value{Kind: KindLength, Number: px} }

// Percent returns a percentage value on a 0-100 scale.
func Percent(p float64) Value { return Value{Kind: KindPercentage, Number: p} }

func Keyword(k string) Value { return Value{Kind: KindKeyword, Keyword: k} }

func Color(c color.RGBA) Value { return Value{Kind: KindColor, Color: c} }

func (v Value) IsAuto() bool    { return v.Kind == KindAuto }
func (v Value) IsNone() bool    { return v.Kind == KindNone }
func (v Value) IsInherit() bool { return v.Kind == KindInherit }

// Is reports whether v is the keyword k.
func (v Value) Is(k string) bool {
	return v.Kind == KindKeyword && v.Keyword == k
}

// Resolve converts a length or percentage to pixels. Percentages are taken of
// base; a negative base means the reference size is indefinite and the
// percentage cannot be resolved.
func (v Value) Resolve(base float64) (float64, bool) {
	switch v.Kind {
	case KindLength:
		return v.Number, true
	case KindPercentage:
		if base < 0 {
			return 0, false
		}
		return base * v.Number / 100, true
	}
	return 0, false
}

// ResolveOr is Resolve with a fallback for anything that does not resolve.
func (v Value) ResolveOr(base, fallback float64) float64 {
	if px, ok := v.Resolve(base); ok {
		return px
	}
	return fallback
}

func (v Value) String() string {
	switch v.Kind {
	case KindKeyword:
		return v.Keyword
	case KindLength:
		return strconv.FormatFloat(v.Number, 'f', -1, 64) + "px"
	case KindPercentage:
		return strconv.FormatFloat(v.Number, 'f', -1, 64) + "%"
	case KindColor:
		return fmt.Sprintf("#%02x%02x%02x%02x", v.Color.R, v.Color.G, v.Color.B, v.Color.A)
	}
	return v.Kind.String()
}
