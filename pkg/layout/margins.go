package layout

// Vertical margin collapsing, CSS 2.1 §8.3.1.

type edgeRole uint8

const (
	marginTop edgeRole = iota
	marginBottom
)

func (r edgeRole) String() string {
	if r == marginTop {
		return "top"
	}
	return "bottom"
}

// marginEdge is one box edge taking part in collapsing.
type marginEdge struct {
	role      edgeRole
	box       *Box
	context   int
	depth     int
	clearance bool
	value     float64
}

// collapsedMargin is a run of adjoining edges, first to last in document
// order, that collapse into a single margin.
type collapsedMargin struct {
	edges []marginEdge
}

func newMargin(b *Box, role edgeRole, value float64) collapsedMargin {
	return collapsedMargin{edges: []marginEdge{{
		role:      role,
		box:       b,
		context:   b.context,
		depth:     b.Depth,
		clearance: b.style.HasClearance(),
		value:     value,
	}}}
}

func createTopMargin(b *Box) collapsedMargin {
	return newMargin(b, marginTop, b.Margin.Top)
}

func createBottomMargin(b *Box) collapsedMargin {
	return newMargin(b, marginBottom, b.Margin.Bottom)
}

func (m collapsedMargin) first() marginEdge { return m.edges[0] }
func (m collapsedMargin) last() marginEdge  { return m.edges[len(m.edges)-1] }

// value is the collapsed size: the largest positive margin plus the most
// negative one.
func (m collapsedMargin) value() float64 {
	var pos, neg float64
	for _, e := range m.edges {
		pos = max(pos, e.value)
		neg = min(neg, e.value)
	}
	return pos + neg
}

// outer returns the index of the edge the collapsed margin is applied to: the
// shallowest edge, the first one on ties.
func (m collapsedMargin) outer() int {
	idx := 0
	for i, e := range m.edges {
		if e.depth < m.edges[idx].depth {
			idx = i
		}
	}
	return idx
}

// tryCollapseMargins merges adjoining neighbours in one left to right pass.
// A merged entry is tested again against the following one, so chains of
// any length collapse without rescanning.
func tryCollapseMargins(seq []collapsedMargin) []collapsedMargin {
	out := make([]collapsedMargin, 0, len(seq))
	for _, m := range seq {
		if n := len(out); n > 0 && areMarginsAdjoining(out[n-1], m) {
			merged := make([]marginEdge, 0, len(out[n-1].edges)+len(m.edges))
			merged = append(merged, out[n-1].edges...)
			out[n-1].edges = append(merged, m.edges...)
			continue
		}
		out = append(out, m)
	}
	return out
}

// areMarginsAdjoining tests the last edge of a against the first edge of b.
func areMarginsAdjoining(a, b collapsedMargin) bool {
	x, y := a.last(), b.first()
	if x.context == 0 || x.context != y.context || y.clearance {
		return false
	}
	switch {
	case x.role == marginTop && y.role == marginTop:
		// parent top with its first in-flow child's top
		p, c := x.box, y.box
		return c.Parent == p && c.flowIndex == 0 && p.Border.Top == 0 && p.Padding.Top == 0

	case x.role == marginBottom && y.role == marginTop:
		// bottom of a box with the top of its next in-flow sibling
		return x.box.Parent == y.box.Parent && y.box.flowIndex == x.box.flowIndex+1

	case x.role == marginBottom && y.role == marginBottom:
		// last in-flow child's bottom with its auto height parent's bottom
		c, p := x.box, y.box
		return c.Parent == p && c.flowIndex == len(p.inFlow)-1 &&
			p.style.Get("height").IsAuto() && p.Border.Bottom == 0 && p.Padding.Bottom == 0

	case x.role == marginTop && y.role == marginBottom:
		return x.box == y.box && collapsesThrough(x.box)
	}
	return false
}

// collapsesThrough reports whether the top and bottom margins of b adjoin:
// the box has no height, no in-flow children and nothing separating them.
func collapsesThrough(b *Box) bool {
	cb := -1.0
	if b.Parent != nil {
		cb = b.Parent.definiteH
	}
	minH := b.style.Get("min-height").ResolveOr(cb, 0)
	if minH != 0.0 {
		return false
	}
	if h, ok := b.explicitHeight(cb); ok && h != 0 {
		return false
	}
	return len(b.inFlow) == 0 && b.content == nil &&
		b.Border.Top == 0 && b.Border.Bottom == 0 &&
		b.Padding.Top == 0 && b.Padding.Bottom == 0
}

// collapseMargins sets the used vertical margins of every box. Edges are
// collected per formatting context in document order (top, children,
// bottom), collapsed, and each collapsed value is applied once at the
// outermost edge of its run; the other edges of the run get 0.
func collapseMargins(root *Box) {
	sequences := make(map[int][]collapsedMargin)
	var contexts []int

	emit := func(m collapsedMargin) {
		ctx := m.first().context
		if ctx == 0 {
			return
		}
		if _, ok := sequences[ctx]; !ok {
			contexts = append(contexts, ctx)
		}
		sequences[ctx] = append(sequences[ctx], m)
	}

	type visit struct {
		box  *Box
		exit bool
	}
	stack := []visit{{box: root}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if v.exit {
			emit(createBottomMargin(v.box))
			continue
		}
		emit(createTopMargin(v.box))
		stack = append(stack, visit{box: v.box, exit: true})
		for i := len(v.box.Children) - 1; i >= 0; i-- {
			stack = append(stack, visit{box: v.box.Children[i]})
		}
	}

	for _, ctx := range contexts {
		for _, m := range tryCollapseMargins(sequences[ctx]) {
			if len(m.edges) == 1 {
				continue
			}
			val, outer := m.value(), m.outer()
			for i, e := range m.edges {
				used := 0.0
				if i == outer {
					used = val
				}
				if e.role == marginTop {
					e.box.Margin.Top = used
				} else {
					e.box.Margin.Bottom = used
				}
			}
		}
	}
}
