package layout

import (
	"boxlayout/pkg/css"
)

// Rect is a rectangle in pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Outset grows r by the given edges.
func (r Rect) Outset(e css.BoxEdge) Rect {
	return Rect{
		X:      r.X - e.Left,
		Y:      r.Y - e.Top,
		Width:  r.Width + e.Horizontal(),
		Height: r.Height + e.Vertical(),
	}
}

// View is the tree node the engine lays out. Implementations must be
// comparable (typically pointers): views are used as map keys.
type View interface {
	// LayoutChildren returns the ordered children. Order is flow order.
	LayoutChildren() []View
	IsHidden() bool
	Style() *css.Style
	// Content returns the leaf content, or nil for containers.
	Content() Content
	// SetGeometry receives the content box relative to the parent's content box.
	SetGeometry(Rect)
}

// Content is leaf content sized by a collaborator (text, images).
type Content interface {
	PreferredWidth() float64
	PreferredHeight(width float64) float64
	// Baseline is the offset of the first baseline from the content top.
	Baseline() float64
}

// State tracks how far a box got through a layout pass.
type State int

const (
	StateNotLaidOut State = iota
	StateWidthMeasured
	StateHeightMeasured
	StatePositioned
)

func (s State) String() string {
	switch s {
	case StateNotLaidOut:
		return "not-laid-out"
	case StateWidthMeasured:
		return "width-measured"
	case StateHeightMeasured:
		return "height-measured"
	case StatePositioned:
		return "positioned"
	}
	return "unknown"
}

// Box is the geometry of one view, created fresh for every pass.
type Box struct {
	View     View
	Parent   *Box
	Children []*Box
	Depth    int
	State    State

	// Rect is the content box relative to the parent's content box, Abs the
	// same box in viewport coordinates.
	Rect Rect
	Abs  Rect

	// Used edges. Vertical margins are the collapsed values.
	Margin  css.BoxEdge
	Border  css.BoxEdge
	Padding css.BoxEdge

	// Baselines are offsets from the content top.
	FirstBaseline float64
	LastBaseline  float64

	OutOfFlow bool

	style   *css.Style
	content Content
	mode    layoutMode

	inFlow    []*Box
	flowIndex int

	// formatting context the box's own margins collapse in, 0 for none,
	// and the one its in-flow children collapse in
	context  int
	childCtx int

	pref       float64
	width      float64
	height     float64
	definiteH  float64
	autoMargin struct{ left, right bool }

	flex *flexContainer
}

// Style returns the computed style the box was laid out with.
func (b *Box) Style() *css.Style {
	return b.style
}

// PaddingBox returns the absolute padding box.
func (b *Box) PaddingBox() Rect {
	return b.Abs.Outset(b.Padding)
}

// BorderBox returns the absolute border box.
func (b *Box) BorderBox() Rect {
	return b.PaddingBox().Outset(b.Border)
}

// MarginBox returns the absolute margin box.
func (b *Box) MarginBox() Rect {
	return b.BorderBox().Outset(b.Margin)
}

// Result holds the geometry of one layout pass.
type Result struct {
	Root *Box
	// Boxes lists every laid out box in document order.
	Boxes []*Box

	byView map[View]*Box
}

// Lookup returns the box of v, if v was laid out.
func (r *Result) Lookup(v View) (*Box, bool) {
	b, ok := r.byView[v]
	return b, ok
}
