package css

import (
	"fmt"
	"image/color"

	"github.com/tdewolff/parse/v2/css"
)

type expander func(name string, comps []component) ([]Declaration, error)

var shorthands map[string]expander

func init() {
	shorthands = map[string]expander{
		"margin":           expandBox("margin-", "", true),
		"padding":          expandBox("padding-", "", false),
		"border-width":     expandBox("border-", "-width", false),
		"border":           expandBorder,
		"flex-flow":        expandFlexFlow,
		"flex":             expandFlex,
		"box-shadow":       expandBoxShadow,
		"background-image": expandBackgroundImage,
	}
}

func malformed(name string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformed, name, fmt.Sprintf(format, args...))
}

// ExpandBoxValues applies the 1/2/3/4 value rule and returns the values for
// top, right, bottom and left.
func ExpandBoxValues[T any](vals []T) (top, right, bottom, left T, ok bool) {
	switch len(vals) {
	case 1:
		return vals[0], vals[0], vals[0], vals[0], true
	case 2:
		return vals[0], vals[1], vals[0], vals[1], true
	case 3:
		return vals[0], vals[1], vals[2], vals[1], true
	case 4:
		return vals[0], vals[1], vals[2], vals[3], true
	}
	return
}

// expandBox handles margin, padding and border-width:
// 1 value -> all sides, 2 -> (block, inline), 3 -> (top, inline, bottom),
// 4 -> (top, right, bottom, left).
func expandBox(prefix, suffix string, allowAuto bool) expander {
	return func(name string, comps []component) ([]Declaration, error) {
		if len(comps) == 1 && comps[0].ident() == "inherit" {
			return boxDecls(prefix, suffix, Inherit(), Inherit(), Inherit(), Inherit()), nil
		}
		vals := make([]Value, 0, len(comps))
		for _, c := range comps {
			if allowAuto && c.ident() == "auto" {
				vals = append(vals, Auto())
				continue
			}
			v, ok := parseLength(c)
			if !ok {
				return nil, malformed(name, "invalid value %q", c)
			}
			vals = append(vals, v)
		}
		top, right, bottom, left, ok := ExpandBoxValues(vals)
		if !ok {
			return nil, malformed(name, "expected 1 to 4 values, got %d", len(vals))
		}
		return boxDecls(prefix, suffix, top, right, bottom, left), nil
	}
}

func boxDecls(prefix, suffix string, top, right, bottom, left Value) []Declaration {
	return []Declaration{
		{Property: prefix + "top" + suffix, Value: top},
		{Property: prefix + "right" + suffix, Value: right},
		{Property: prefix + "bottom" + suffix, Value: bottom},
		{Property: prefix + "left" + suffix, Value: left},
	}
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "solid": true, "dotted": true, "dashed": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// expandBorder handles "border: <width> || <style> || <color>".
func expandBorder(name string, comps []component) ([]Declaration, error) {
	var width, style, col *Value
	for _, c := range comps {
		if width == nil {
			if v, ok := parseLength(c); ok {
				width = &v
				continue
			}
		}
		if style == nil && borderStyles[c.ident()] {
			v := Keyword(c.ident())
			if c.ident() == "none" {
				v = None()
			}
			style = &v
			continue
		}
		if col == nil {
			if rgba, err := parseColor(c); err == nil {
				v := Color(rgba)
				col = &v
				continue
			}
		}
		return nil, malformed(name, "unexpected %q", c)
	}
	if width == nil {
		v := Length(3) // medium
		width = &v
	}
	if style == nil {
		v := None()
		style = &v
	}
	decls := boxDecls("border-", "-width", *width, *width, *width, *width)
	decls = append(decls, Declaration{Property: "border-style", Value: *style})
	if col != nil {
		decls = append(decls, Declaration{Property: "border-color", Value: *col})
	}
	return decls, nil
}

func flexDirection(c component) (Value, bool) {
	switch k := c.ident(); k {
	case "row", "row-reverse", "column", "column-reverse":
		return Keyword(k), true
	case "inherit":
		return Inherit(), true
	}
	return Value{}, false
}

func flexWrap(c component) (Value, bool) {
	switch k := c.ident(); k {
	case "nowrap", "wrap", "wrap-reverse":
		return Keyword(k), true
	case "inherit":
		return Inherit(), true
	}
	return Value{}, false
}

// ParseFlexFlow parses "flex-flow: <direction> || <wrap>". Each part may
// appear at most once, in any order. When a part is omitted its initial value
// is used. ok is false when a token matches neither remaining grammar.
func ParseFlexFlow(value string) (direction, wrap Value, ok bool) {
	comps := components(tokenize(value))
	decls, err := expandFlexFlow("flex-flow", comps)
	if err != nil {
		return Value{}, Value{}, false
	}
	return decls[0].Value, decls[1].Value, true
}

func expandFlexFlow(name string, comps []component) ([]Declaration, error) {
	if len(comps) == 1 && comps[0].ident() == "inherit" {
		return []Declaration{
			{Property: "flex-direction", Value: Inherit()},
			{Property: "flex-wrap", Value: Inherit()},
		}, nil
	}
	var (
		direction, wrap         Value
		haveDirection, haveWrap bool
	)
	for _, c := range comps {
		if !haveDirection {
			if v, ok := flexDirection(c); ok {
				direction, haveDirection = v, true
				continue
			}
		}
		if !haveWrap {
			if v, ok := flexWrap(c); ok {
				wrap, haveWrap = v, true
				continue
			}
		}
		return nil, malformed(name, "unexpected %q", c)
	}
	if !haveDirection {
		direction = Keyword("row")
	}
	if !haveWrap {
		wrap = Keyword("nowrap")
	}
	return []Declaration{
		{Property: "flex-direction", Value: direction},
		{Property: "flex-wrap", Value: wrap},
	}, nil
}

// expandFlex handles "flex: none | auto | <grow> [<shrink>] [<basis>]".
func expandFlex(name string, comps []component) ([]Declaration, error) {
	decls := func(grow, shrink float64, basis Value) []Declaration {
		return []Declaration{
			{Property: "flex-grow", Value: Length(grow)},
			{Property: "flex-shrink", Value: Length(shrink)},
			{Property: "flex-basis", Value: basis},
		}
	}
	if len(comps) == 1 {
		switch comps[0].ident() {
		case "none":
			return decls(0, 0, Auto()), nil
		case "auto":
			return decls(1, 1, Auto()), nil
		}
	}
	var (
		nums  []float64
		basis *Value
	)
	for _, c := range comps {
		v, err := parseComponent(c)
		if err != nil {
			return nil, malformed(name, "%v", err)
		}
		isNumber := c.tok.TokenType == css.NumberToken
		switch {
		case isNumber && basis == nil && len(nums) < 2:
			nums = append(nums, v.Number)
		case basis == nil && (v.Kind == KindLength || v.Kind == KindPercentage || v.Kind == KindAuto):
			basis = &v
		default:
			return nil, malformed(name, "unexpected %q", c)
		}
	}
	grow, shrink := 1.0, 1.0
	b := Percent(0)
	if len(nums) > 0 {
		grow = nums[0]
	}
	if len(nums) > 1 {
		shrink = nums[1]
	}
	if basis != nil {
		b = *basis
	}
	return decls(grow, shrink, b), nil
}

// Shadow is one entry of a box-shadow list.
type Shadow struct {
	Inset   bool
	OffsetX float64
	OffsetY float64
	Blur    float64
	Spread  float64
	Color   color.RGBA
}

// ParseBoxShadow parses a box-shadow value. "none" yields an empty list.
func ParseBoxShadow(value string) ([]Shadow, bool) {
	decls, err := expandBoxShadow("box-shadow", components(tokenize(value)))
	if err != nil {
		return nil, false
	}
	return decls[0].Shadows, true
}

func expandBoxShadow(name string, comps []component) ([]Declaration, error) {
	if len(comps) == 1 && comps[0].ident() == "none" {
		return []Declaration{{Property: "box-shadow", Value: None()}}, nil
	}
	var (
		shadows []Shadow
		layer   []component
	)
	flush := func() error {
		s, err := parseShadow(layer)
		if err != nil {
			return malformed(name, "%v", err)
		}
		shadows = append(shadows, s)
		layer = layer[:0]
		return nil
	}
	for _, c := range comps {
		if c.isComma() {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		layer = append(layer, c)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return []Declaration{{Property: "box-shadow", Value: Keyword("shadow"), Shadows: shadows}}, nil
}

func parseShadow(comps []component) (Shadow, error) {
	s := Shadow{Color: color.RGBA{A: 0xff}}
	var (
		lengths  []float64
		haveCol  bool
		lengthAt = -1
	)
	for i, c := range comps {
		if c.ident() == "inset" && !s.Inset {
			s.Inset = true
			continue
		}
		if v, ok := parseLength(c); ok && v.Kind == KindLength {
			if lengthAt >= 0 && lengthAt != i-1 {
				return s, fmt.Errorf("lengths must be contiguous")
			}
			lengthAt = i
			lengths = append(lengths, v.Number)
			continue
		}
		if !haveCol {
			if col, err := parseColor(c); err == nil {
				s.Color, haveCol = col, true
				continue
			}
		}
		return s, fmt.Errorf("unexpected %q", c)
	}
	if len(lengths) < 2 || len(lengths) > 4 {
		return s, fmt.Errorf("expected 2 to 4 lengths, got %d", len(lengths))
	}
	s.OffsetX, s.OffsetY = lengths[0], lengths[1]
	if len(lengths) > 2 {
		if lengths[2] < 0 {
			return s, fmt.Errorf("negative blur radius")
		}
		s.Blur = lengths[2]
	}
	if len(lengths) > 3 {
		s.Spread = lengths[3]
	}
	return s, nil
}
