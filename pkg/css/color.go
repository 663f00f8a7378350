package css

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/image/colornames"
)

// ParseColor parses a color string: a CSS named color, transparent, #rgb,
// #rgba, #rrggbb, #rrggbbaa, rgb() or rgba().
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "transparent" {
		return color.RGBA{}, true
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		c, err := parseHex(s[1:])
		return c, err == nil
	}
	if open := strings.IndexByte(s, '('); open > 0 && strings.HasSuffix(s, ")") {
		c, err := parseRGB(s[:open], strings.Split(s[open+1:len(s)-1], ","))
		return c, err == nil
	}
	return color.RGBA{}, false
}

func parseColor(c component) (color.RGBA, error) {
	switch c.tok.TokenType {
	case css.IdentToken:
		if col, ok := ParseColor(c.ident()); ok {
			return col, nil
		}
	case css.HashToken:
		return parseHex(strings.TrimPrefix(string(c.tok.Data), "#"))
	case css.FunctionToken:
		name := strings.TrimSuffix(strings.ToLower(string(c.tok.Data)), "(")
		var (
			args []string
			cur  strings.Builder
		)
		for _, a := range c.args {
			switch a.TokenType {
			case css.CommaToken:
				args = append(args, cur.String())
				cur.Reset()
			case css.WhitespaceToken:
				if cur.Len() > 0 && !strings.HasSuffix(cur.String(), " ") {
					cur.WriteByte(' ')
				}
			default:
				cur.Write(a.Data)
			}
		}
		args = append(args, cur.String())
		if len(args) == 1 {
			// space separated syntax: rgb(1 2 3 / 50%)
			args = strings.Fields(strings.ReplaceAll(args[0], "/", " "))
		}
		return parseRGB(name, args)
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", c)
}

func parseHex(h string) (color.RGBA, error) {
	expand := func(b byte) string { return string([]byte{b, b}) }
	switch len(h) {
	case 3:
		h = expand(h[0]) + expand(h[1]) + expand(h[2]) + "ff"
	case 4:
		h = expand(h[0]) + expand(h[1]) + expand(h[2]) + expand(h[3])
	case 6:
		h += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color #%s", h)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color #%s: %w", h, err)
	}
	return color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

func parseRGB(name string, args []string) (color.RGBA, error) {
	if name != "rgb" && name != "rgba" {
		return color.RGBA{}, fmt.Errorf("unsupported color function %s()", name)
	}
	if len(args) != 3 && len(args) != 4 {
		return color.RGBA{}, fmt.Errorf("%s() expects 3 or 4 arguments, got %d", name, len(args))
	}
	var ch [4]uint8
	ch[3] = 0xff
	for i, a := range args {
		a = strings.TrimSpace(a)
		var (
			f   float64
			err error
		)
		switch {
		case strings.HasSuffix(a, "%"):
			f, err = strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
			f = f * 255 / 100
		case i == 3:
			f, err = strconv.ParseFloat(a, 64)
			f *= 255
		default:
			f, err = strconv.ParseFloat(a, 64)
		}
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid %s() argument %q: %w", name, a, err)
		}
		ch[i] = uint8(max(0, min(255, f+0.5)))
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}
