package css

import (
	"image/color"
	"maps"
	"slices"
)

// Style is the resolved style record of one node: explicit values keyed by
// longhand property name, with registry defaults for everything else.
type Style struct {
	registry   *Registry
	Properties map[string]Value
	Shadows    []Shadow
	Gradient   *Gradient
}

// NewStyle creates an empty style backed by registry.
func NewStyle(registry *Registry) *Style {
	return &Style{registry: registry, Properties: make(map[string]Value)}
}

// Registry returns the registry the style resolves defaults from.
func (s *Style) Registry() *Registry {
	return s.registry
}

// Get returns the explicit value of property, or its registered default.
func (s *Style) Get(property string) Value {
	if v, ok := s.Properties[property]; ok {
		return v
	}
	return s.registry.defaultFor(property)
}

// Lookup returns the explicit value only.
func (s *Style) Lookup(property string) (Value, bool) {
	v, ok := s.Properties[property]
	return v, ok
}

func (s *Style) Set(property string, v Value) {
	s.Properties[property] = v
}

// Apply sets every declaration in order.
func (s *Style) Apply(decls []Declaration) {
	for _, d := range decls {
		switch d.Property {
		case "box-shadow":
			s.Shadows = slices.Clone(d.Shadows)
		case "background-image":
			s.Gradient = d.Gradient
		}
		s.Properties[d.Property] = d.Value
	}
}

// Clone returns an independent copy of the style.
func (s *Style) Clone() *Style {
	return &Style{
		registry:   s.registry,
		Properties: maps.Clone(s.Properties),
		Shadows:    slices.Clone(s.Shadows),
		Gradient:   s.Gradient,
	}
}

// BoxEdge holds the four sides of a box (top, right, bottom, left).
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Horizontal returns Left+Right.
func (e BoxEdge) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns Top+Bottom.
func (e BoxEdge) Vertical() float64 { return e.Top + e.Bottom }

// Margin resolves the four margins; percentages are taken of the containing
// block width cb (negative cb: indefinite, percentages become 0).
func (s *Style) Margin(cb float64) BoxEdge {
	return s.edge("margin-", "", cb)
}

// Padding resolves the four paddings against the containing block width cb.
func (s *Style) Padding(cb float64) BoxEdge {
	return s.edge("padding-", "", cb)
}

// BorderWidth returns the four border widths. Borders with style none or
// hidden have zero width.
func (s *Style) BorderWidth() BoxEdge {
	if st := s.Get("border-style"); st.IsNone() || st.Is("hidden") {
		return BoxEdge{}
	}
	return s.edge("border-", "-width", -1)
}

func (s *Style) edge(prefix, suffix string, cb float64) BoxEdge {
	return BoxEdge{
		Top:    s.Get(prefix+"top"+suffix).ResolveOr(cb, 0),
		Right:  s.Get(prefix+"right"+suffix).ResolveOr(cb, 0),
		Bottom: s.Get(prefix+"bottom"+suffix).ResolveOr(cb, 0),
		Left:   s.Get(prefix+"left"+suffix).ResolveOr(cb, 0),
	}
}

// PositionType is the position property value.
type PositionType string

const (
	PositionStatic   PositionType = "static"
	PositionRelative PositionType = "relative"
	PositionAbsolute PositionType = "absolute"
	PositionFixed    PositionType = "fixed"
)

// Position returns the position mode (default: static).
func (s *Style) Position() PositionType {
	switch v := s.Get("position"); v.Keyword {
	case "relative":
		return PositionRelative
	case "absolute":
		return PositionAbsolute
	case "fixed":
		return PositionFixed
	}
	return PositionStatic
}

// OutOfFlow reports whether the position mode takes the box out of normal flow.
func (s *Style) OutOfFlow() bool {
	p := s.Position()
	return p == PositionAbsolute || p == PositionFixed
}

// LayoutType selects the strategy a container uses for its children.
type LayoutType string

const (
	LayoutBlock  LayoutType = "block"
	LayoutInline LayoutType = "inline"
	LayoutFlex   LayoutType = "flex"
)

// Layout returns the layout strategy from display. The layout property is
// an alias consulted when display does not name inline or flex.
func (s *Style) Layout() LayoutType {
	switch s.Get("display").Keyword {
	case "inline", "inline-block":
		return LayoutInline
	case "flex", "inline-flex":
		return LayoutFlex
	}
	switch s.Get("layout").Keyword {
	case "inline":
		return LayoutInline
	case "flex":
		return LayoutFlex
	}
	return LayoutBlock
}

// HasClearance reports whether clear is anything but none.
func (s *Style) HasClearance() bool {
	v := s.Get("clear")
	return !v.IsNone() && !v.Is("none")
}

// Number returns a unitless numeric property (stored as a length).
func (s *Style) Number(property string) float64 {
	v := s.Get(property)
	if v.Kind == KindLength {
		return v.Number
	}
	return 0
}

// FontSize returns the font size in pixels.
func (s *Style) FontSize() float64 {
	return s.Get("font-size").ResolveOr(-1, 13)
}

// LineHeight returns the explicit line height, or false for auto (normal).
func (s *Style) LineHeight() (float64, bool) {
	v := s.Get("line-height")
	if v.Kind == KindPercentage {
		return s.FontSize() * v.Number / 100, true
	}
	return v.Resolve(-1)
}

// ColorOf returns a color property, or false when it is none.
func (s *Style) ColorOf(property string) (color.RGBA, bool) {
	v := s.Get(property)
	if v.Kind != KindColor {
		return color.RGBA{}, false
	}
	return v.Color, true
}

// TextAlign returns the inline alignment keyword (left, center or right).
func (s *Style) TextAlign() string {
	switch k := s.Get("text-align").Keyword; k {
	case "center", "right":
		return k
	case "end":
		return "right"
	}
	return "left"
}
