package layout

import (
	"go.uber.org/zap"
)

// blockLayoutMode stacks in-flow children vertically.
type blockLayoutMode struct {
	log *zap.Logger
}

// preferredWidth is the widest child margin box. Block containers do not
// shrink-to-fit beyond that.
func (m *blockLayoutMode) preferredWidth(b *Box) float64 {
	var w float64
	for _, c := range b.inFlow {
		w = max(w, c.prefOuterWidth())
	}
	return w
}

func (m *blockLayoutMode) measureChildren(b *Box) {
	for _, c := range b.inFlow {
		m.measureChild(c, b.width)
	}
}

// measureChild sizes c inside a containing block of width avail. Auto widths
// fill the available space, leaves keep their preferred width.
func (m *blockLayoutMode) measureChild(c *Box, avail float64) {
	c.resolveEdges(avail)
	switch w, ok := c.explicitWidth(avail); {
	case ok:
		c.width = c.clampWidth(w, avail)
	case c.content != nil:
		c.width = c.clampWidth(c.pref, avail)
	default:
		w, dropped := c.fitWidth(avail)
		if dropped > 0 {
			m.log.Debug("Dropped insets to keep content width non-negative",
				zap.Int("insets", dropped),
				zap.Float64("available", avail),
				zap.Int("depth", c.Depth))
		}
		c.width = c.clampWidth(w, avail)
	}
	c.centerAuto(avail)
}

// preferredHeight sums the children's margin boxes using the collapsed
// vertical margins.
func (m *blockLayoutMode) preferredHeight(b *Box) float64 {
	var h float64
	for _, c := range b.inFlow {
		h += c.outerHeight()
	}
	return h
}

func (m *blockLayoutMode) layoutSubviews(b *Box) {
	var y float64
	for _, c := range b.inFlow {
		y += c.topInset()
		c.Rect = Rect{X: c.leftInset(), Y: y, Width: c.width, Height: c.height}
		y += c.height + c.Padding.Bottom + c.Border.Bottom + c.Margin.Bottom
	}
}

func (m *blockLayoutMode) baselines(b *Box) (first, last float64) {
	f, l := b.inFlow[0], b.inFlow[len(b.inFlow)-1]
	return f.Rect.Y + f.FirstBaseline, l.Rect.Y + l.LastBaseline
}
