package layout

import (
	"cmp"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// flexLayoutMode distributes in-flow children along a main axis, optionally
// wrapping them into several lines.
type flexLayoutMode struct {
	log *zap.Logger
}

// flexContainer is the per-pass flex state of one container box.
type flexContainer struct {
	row     bool
	reverse bool
	wrap    string
	justify string
	align   string

	items []*flexItem
	lines []*flexLine

	// containing block size on the main axis, -1 when indefinite
	cbMain float64
}

type flexItem struct {
	box *Box

	grow   float64
	shrink float64
	order  float64

	// base is the flex base size and main the resolved main size, both
	// content sizes. insets is the margin, border and padding on the main axis.
	base   float64
	main   float64
	insets float64
}

func (it *flexItem) outer() float64 {
	return it.main + it.insets
}

type flexLine struct {
	items []*flexItem
	cross float64
	pos   float64
}

func newFlexContainer(b *Box) *flexContainer {
	s := b.style
	dir := s.Get("flex-direction").Keyword
	fc := &flexContainer{
		row:     !strings.HasPrefix(dir, "column"),
		reverse: strings.HasSuffix(dir, "-reverse"),
		wrap:    s.Get("flex-wrap").Keyword,
		justify: s.Get("justify-content").Keyword,
		align:   s.Get("align-items").Keyword,
		cbMain:  -1,
	}
	for _, c := range b.inFlow {
		fc.items = append(fc.items, &flexItem{
			box:    c,
			grow:   max(c.style.Number("flex-grow"), 0),
			shrink: max(c.style.Number("flex-shrink"), 0),
			order:  c.style.Number("order"),
		})
	}
	slices.SortStableFunc(fc.items, func(a, b *flexItem) int {
		return cmp.Compare(a.order, b.order)
	})
	return fc
}

func (fc *flexContainer) wraps() bool {
	return fc.wrap == "wrap" || fc.wrap == "wrap-reverse"
}

func (fc *flexContainer) clamp(it *flexItem, v float64) float64 {
	if fc.row {
		return it.box.clampWidth(v, fc.cbMain)
	}
	return it.box.clampHeight(v, fc.cbMain)
}

// preferredWidth sums the children on a row and takes the widest in a column.
func (m *flexLayoutMode) preferredWidth(b *Box) float64 {
	dir := b.style.Get("flex-direction").Keyword
	var w float64
	for _, c := range b.inFlow {
		if strings.HasPrefix(dir, "column") {
			w = max(w, c.prefOuterWidth())
			continue
		}
		base := c.pref
		if v, ok := c.style.Get("flex-basis").Resolve(-1); ok {
			base = max(v, 0)
		}
		w += base + c.intrinsicInsets()
	}
	return w
}

// measureChildren resolves the flexible widths of a row. Columns only get
// their cross size here; their main sizes wait for the container height.
func (m *flexLayoutMode) measureChildren(b *Box) {
	fc := newFlexContainer(b)
	b.flex = fc
	for _, it := range fc.items {
		c := it.box
		c.resolveEdges(b.width)
		if !fc.row {
			c.width = m.columnWidth(fc, c, b.width)
			continue
		}
		it.base = c.pref
		if v, ok := c.style.Get("flex-basis").Resolve(b.width); ok {
			it.base = max(v, 0)
		} else if w, ok := c.explicitWidth(b.width); ok {
			it.base = w
		}
		it.insets = c.horizontalInsets()
	}
	if !fc.row {
		return
	}
	fc.cbMain = b.width
	m.resolve(fc, b.width)
	for _, it := range fc.items {
		it.box.width = it.main
	}
}

func (m *flexLayoutMode) columnWidth(fc *flexContainer, c *Box, avail float64) float64 {
	if w, ok := c.explicitWidth(avail); ok {
		return c.clampWidth(w, avail)
	}
	if fc.align == "stretch" && !fc.wraps() {
		w, _ := c.fitWidth(avail)
		return c.clampWidth(w, avail)
	}
	return c.clampWidth(c.pref, avail)
}

// resolve breaks the items into lines and resolves their main sizes against
// avail, the container main size or -1 when it is indefinite.
func (m *flexLayoutMode) resolve(fc *flexContainer, avail float64) {
	for _, it := range fc.items {
		it.main = fc.clamp(it, it.base)
	}
	fc.lines = breakLines(fc, avail)
	for _, l := range fc.lines {
		resolveLengths(fc, l, avail)
	}
	m.log.Debug("Resolved flex lines",
		zap.Bool("row", fc.row),
		zap.Int("items", len(fc.items)),
		zap.Int("lines", len(fc.lines)),
		zap.Float64("main", avail))
}

// breakLines collects items into lines. Only wrapping containers with a
// definite main size break; a line always takes at least one item.
func breakLines(fc *flexContainer, avail float64) []*flexLine {
	if !fc.wraps() || avail < 0 {
		return []*flexLine{{items: fc.items}}
	}
	var (
		lines []*flexLine
		cur   = &flexLine{}
		used  float64
	)
	for _, it := range fc.items {
		if len(cur.items) > 0 && used+it.outer() > avail {
			lines = append(lines, cur)
			cur, used = &flexLine{}, 0
		}
		cur.items = append(cur.items, it)
		used += it.outer()
	}
	if len(cur.items) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// resolveLengths grows items by their grow factors when the line has free
// space, and shrinks them by shrink factor times base size when it
// overflows. Items hitting a min or max constraint are frozen and the rest
// redistributed.
func resolveLengths(fc *flexContainer, l *flexLine, avail float64) {
	if avail < 0 {
		return
	}
	var hypothetical float64
	for _, it := range l.items {
		hypothetical += it.outer()
	}
	if hypothetical == avail {
		return
	}
	growing := hypothetical < avail

	frozen := make([]bool, len(l.items))
	for i, it := range l.items {
		factor := it.shrink
		if growing {
			factor = it.grow
		}
		if factor == 0 || (growing && it.base > it.main) || (!growing && it.base < it.main) {
			frozen[i] = true
		}
	}

	targets := make([]float64, len(l.items))
	for {
		free := avail
		var factors float64
		active := 0
		for i, it := range l.items {
			if frozen[i] {
				free -= it.outer()
				continue
			}
			active++
			free -= it.base + it.insets
			if growing {
				factors += it.grow
			} else {
				factors += it.shrink * it.base
			}
		}
		if active == 0 || factors == 0 {
			return
		}

		var violation float64
		for i, it := range l.items {
			if frozen[i] {
				continue
			}
			if growing {
				targets[i] = it.base + free*it.grow/factors
			} else {
				targets[i] = it.base + free*it.shrink*it.base/factors
			}
			it.main = fc.clamp(it, targets[i])
			violation += it.main - targets[i]
		}
		if violation == 0 {
			return
		}
		for i, it := range l.items {
			if frozen[i] {
				continue
			}
			if (violation > 0 && it.main > targets[i]) || (violation < 0 && it.main < targets[i]) {
				frozen[i] = true
			}
		}
	}
}

// preferredHeight stacks the lines of a row. A column is as tall as its
// items' outer base sizes.
func (m *flexLayoutMode) preferredHeight(b *Box) float64 {
	fc := b.flex
	var h float64
	if fc.row {
		for _, l := range fc.lines {
			h += lineCross(fc, l)
		}
		return h
	}
	for _, it := range fc.items {
		m.columnBase(b, it)
		h += it.base + it.insets
	}
	return h
}

func (m *flexLayoutMode) columnBase(b *Box, it *flexItem) {
	c := it.box
	it.base = c.height
	if v, ok := c.style.Get("flex-basis").Resolve(b.definiteH); ok {
		it.base = max(v, 0)
	}
	it.insets = c.Margin.Vertical() + c.Border.Vertical() + c.Padding.Vertical()
}

func lineCross(fc *flexContainer, l *flexLine) float64 {
	var cross float64
	for _, it := range l.items {
		if fc.row {
			cross = max(cross, it.box.outerHeight())
		} else {
			cross = max(cross, it.box.outerWidth())
		}
	}
	return cross
}

func (m *flexLayoutMode) layoutSubviews(b *Box) {
	fc := b.flex
	mainSize, crossSize := b.width, b.height
	if !fc.row {
		mainSize, crossSize = b.height, b.width
		for _, it := range fc.items {
			m.columnBase(b, it)
		}
		fc.cbMain = b.definiteH
		avail := -1.0
		if b.definiteH >= 0 {
			avail = b.height
		}
		m.resolve(fc, avail)
		for _, it := range fc.items {
			it.box.height = it.main
		}
	}

	var pos float64
	for _, l := range fc.lines {
		l.cross = lineCross(fc, l)
		if !fc.wraps() {
			l.cross = crossSize
		}
		l.pos = pos
		if fc.wrap == "wrap-reverse" {
			l.pos = crossSize - pos - l.cross
		}
		pos += l.cross
	}

	for _, l := range fc.lines {
		var used float64
		for _, it := range l.items {
			used += it.outer()
		}
		start, gap := justify(fc.justify, mainSize-used, len(l.items))
		at := start
		for _, it := range l.items {
			mainPos := at
			if fc.reverse {
				mainPos = mainSize - at - it.outer()
			}
			at += it.outer() + gap
			m.place(fc, b, it, l, mainPos)
		}
	}
}

// place aligns one item on the cross axis of its line and commits its rect.
func (m *flexLayoutMode) place(fc *flexContainer, b *Box, it *flexItem, l *flexLine, mainPos float64) {
	c := it.box
	if fc.row && fc.align == "stretch" {
		if _, ok := c.explicitHeight(b.definiteH); !ok {
			c.height = c.clampHeight(max(l.cross-c.verticalInsets(), 0), b.definiteH)
		}
	}

	outerCross := c.outerHeight()
	if !fc.row {
		outerCross = c.outerWidth()
	}
	crossPos := l.pos
	switch fc.align {
	case "flex-end", "end":
		crossPos += l.cross - outerCross
	case "center":
		crossPos += (l.cross - outerCross) / 2
	}

	if fc.row {
		c.Rect = Rect{X: mainPos + c.leftInset(), Y: crossPos + c.topInset(), Width: c.width, Height: c.height}
	} else {
		c.Rect = Rect{X: crossPos + c.leftInset(), Y: mainPos + c.topInset(), Width: c.width, Height: c.height}
	}
}

// justify returns the offset of the first item and the gap between items
// for the given free space. Distributed alignments fall back to flex-start
// (space-between) or center (space-around, space-evenly) when there is no
// positive free space.
func justify(mode string, free float64, n int) (start, gap float64) {
	switch mode {
	case "flex-end", "end":
		return free, 0
	case "center":
		return free / 2, 0
	case "space-between":
		if free > 0 && n > 1 {
			return 0, free / float64(n-1)
		}
		return 0, 0
	case "space-around":
		if free > 0 {
			gap = free / float64(n)
			return gap / 2, gap
		}
		return free / 2, 0
	case "space-evenly":
		if free > 0 {
			gap = free / float64(n+1)
			return gap, gap
		}
		return free / 2, 0
	}
	return 0, 0
}

// baselines come from the first and the last item in order.
func (m *flexLayoutMode) baselines(b *Box) (first, last float64) {
	items := b.flex.items
	f, l := items[0].box, items[len(items)-1].box
	return f.Rect.Y + f.FirstBaseline, l.Rect.Y + l.LastBaseline
}
