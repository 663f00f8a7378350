package css

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// ColorStop is a color and its position along the gradient line. Offset is a
// length, a percentage, or none when the position was omitted.
type ColorStop struct {
	Color  color.RGBA
	Offset Value
}

// Gradient is a linear-gradient() background image.
type Gradient struct {
	// Angle in degrees, clockwise from "to top".
	Angle float64
	Stops []ColorStop
}

// ParseLinearGradient parses "linear-gradient([<angle> | to <side>,] <stop>, <stop>...)".
func ParseLinearGradient(value string) (*Gradient, bool) {
	g, err := parseGradient(components(tokenize(value)))
	return g, err == nil
}

func expandBackgroundImage(name string, comps []component) ([]Declaration, error) {
	if len(comps) == 1 {
		switch comps[0].ident() {
		case "none":
			return []Declaration{{Property: "background-image", Value: None()}}, nil
		case "inherit":
			return []Declaration{{Property: "background-image", Value: Inherit()}}, nil
		}
	}
	g, err := parseGradient(comps)
	if err != nil {
		return nil, malformed(name, "%v", err)
	}
	return []Declaration{{Property: "background-image", Value: Keyword("linear-gradient"), Gradient: g}}, nil
}

func parseGradient(comps []component) (*Gradient, error) {
	if len(comps) != 1 || comps[0].tok.TokenType != css.FunctionToken {
		return nil, fmt.Errorf("expected a single gradient function")
	}
	fn := strings.ToLower(strings.TrimSuffix(string(comps[0].tok.Data), "("))
	if fn != "linear-gradient" {
		return nil, fmt.Errorf("unsupported image function %s()", fn)
	}

	parts := splitArgs(comps[0].args)
	g := &Gradient{Angle: 180}
	if len(parts) > 0 {
		if angle, ok := gradientDirection(parts[0]); ok {
			g.Angle = angle
			parts = parts[1:]
		}
	}
	for _, p := range parts {
		stop, err := parseColorStop(p)
		if err != nil {
			return nil, err
		}
		g.Stops = append(g.Stops, stop)
	}
	if len(g.Stops) < 2 {
		return nil, fmt.Errorf("gradient needs at least two color stops, got %d", len(g.Stops))
	}
	return g, nil
}

// splitArgs splits function arguments at top level commas.
func splitArgs(args []css.Token) [][]component {
	var (
		out   [][]component
		cur   []css.Token
		depth int
	)
	for _, a := range args {
		switch a.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				out = append(out, components(cur))
				cur = nil
				continue
			}
		}
		cur = append(cur, a)
	}
	return append(out, components(cur))
}

var sideAngles = map[string]float64{
	"top": 0, "right": 90, "bottom": 180, "left": 270,
	"top right": 45, "right top": 45,
	"bottom right": 135, "right bottom": 135,
	"bottom left": 225, "left bottom": 225,
	"top left": 315, "left top": 315,
}

func gradientDirection(comps []component) (float64, bool) {
	if len(comps) == 1 && comps[0].tok.TokenType == css.DimensionToken {
		s := strings.ToLower(string(comps[0].tok.Data))
		if num, ok := strings.CutSuffix(s, "deg"); ok {
			if deg, err := strconv.ParseFloat(num, 64); err == nil {
				return deg, true
			}
		}
		return 0, false
	}
	if len(comps) < 2 || comps[0].ident() != "to" {
		return 0, false
	}
	sides := make([]string, 0, 2)
	for _, c := range comps[1:] {
		sides = append(sides, c.ident())
	}
	angle, ok := sideAngles[strings.Join(sides, " ")]
	return angle, ok
}

func parseColorStop(comps []component) (ColorStop, error) {
	if len(comps) == 0 || len(comps) > 2 {
		return ColorStop{}, fmt.Errorf("invalid color stop")
	}
	col, err := parseColor(comps[0])
	if err != nil {
		return ColorStop{}, err
	}
	stop := ColorStop{Color: col, Offset: None()}
	if len(comps) == 2 {
		v, ok := parseLength(comps[1])
		if !ok {
			return ColorStop{}, fmt.Errorf("invalid color stop position %q", comps[1])
		}
		stop.Offset = v
	}
	return stop, nil
}

// Line returns the start and end points of the gradient line for a box at
// (x, y) of size w x h.
func (g *Gradient) Line(x, y, w, h float64) (x0, y0, x1, y1 float64) {
	rad := g.Angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := (math.Abs(w*dx) + math.Abs(h*dy)) / 2
	cx, cy := x+w/2, y+h/2
	return cx - dx*half, cy - dy*half, cx + dx*half, cy + dy*half
}

// Offsets resolves every stop position to the 0..1 range for a gradient line
// of the given length. Omitted positions are spread evenly between their
// neighbours and positions never decrease.
func (g *Gradient) Offsets(length float64) []float64 {
	n := len(g.Stops)
	out := make([]float64, n)
	set := make([]bool, n)
	for i, s := range g.Stops {
		switch s.Offset.Kind {
		case KindPercentage:
			out[i], set[i] = s.Offset.Number/100, true
		case KindLength:
			if length > 0 {
				out[i], set[i] = s.Offset.Number/length, true
			}
		}
	}
	if !set[0] {
		out[0], set[0] = 0, true
	}
	if !set[n-1] {
		out[n-1], set[n-1] = 1, true
	}
	for i := 1; i < n; i++ {
		if set[i] {
			out[i] = max(out[i], out[i-1])
			continue
		}
		next := i + 1
		for !set[next] {
			next++
		}
		step := (max(out[next], out[i-1]) - out[i-1]) / float64(next-i+1)
		out[i], set[i] = out[i-1]+step, true
	}
	return out
}
