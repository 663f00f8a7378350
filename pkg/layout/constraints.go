package layout

import (
	"boxlayout/pkg/css"
)

// resolveEdges resolves margins, borders and paddings against the containing
// block width cb. Auto margins resolve to 0 and are remembered for centering.
func (b *Box) resolveEdges(cb float64) {
	b.Margin = b.style.Margin(cb)
	b.Border = b.style.BorderWidth()
	b.Padding = b.style.Padding(cb)
	b.autoMargin.left = b.style.Get("margin-left").IsAuto()
	b.autoMargin.right = b.style.Get("margin-right").IsAuto()
}

func (b *Box) explicitWidth(cb float64) (float64, bool) {
	w, ok := b.style.Get("width").Resolve(cb)
	return max(w, 0), ok
}

// explicitHeight resolves height against the containing block height cb.
// Percentages only resolve when cb is definite (non-negative).
func (b *Box) explicitHeight(cb float64) (float64, bool) {
	h, ok := b.style.Get("height").Resolve(cb)
	return max(h, 0), ok
}

func (b *Box) clampWidth(w, cb float64) float64 {
	return clampSize(w, b.style.Get("min-width"), b.style.Get("max-width"), cb)
}

func (b *Box) clampHeight(h, cb float64) float64 {
	return clampSize(h, b.style.Get("min-height"), b.style.Get("max-height"), cb)
}

// clampSize applies a max then a min constraint, so min wins when they conflict.
func clampSize(v float64, lo, hi css.Value, base float64) float64 {
	if limit, ok := hi.Resolve(base); ok {
		v = min(v, limit)
	}
	if limit, ok := lo.Resolve(base); ok {
		v = max(v, limit)
	}
	return max(v, 0)
}

func (b *Box) horizontalInsets() float64 {
	return b.Margin.Horizontal() + b.Border.Horizontal() + b.Padding.Horizontal()
}

func (b *Box) verticalInsets() float64 {
	return b.Margin.Vertical() + b.Border.Vertical() + b.Padding.Vertical()
}

func (b *Box) leftInset() float64 {
	return b.Margin.Left + b.Border.Left + b.Padding.Left
}

func (b *Box) topInset() float64 {
	return b.Margin.Top + b.Border.Top + b.Padding.Top
}

func (b *Box) outerWidth() float64 {
	return b.width + b.horizontalInsets()
}

func (b *Box) outerHeight() float64 {
	return b.height + b.verticalInsets()
}

// intrinsicInsets is the horizontal margin, border and padding used for
// preferred widths, where percentages have nothing to resolve against.
func (b *Box) intrinsicInsets() float64 {
	return b.style.Margin(-1).Horizontal() + b.style.BorderWidth().Horizontal() + b.style.Padding(-1).Horizontal()
}

// prefOuterWidth is the preferred margin-box width.
func (b *Box) prefOuterWidth() float64 {
	return b.pref + b.intrinsicInsets()
}

// fitWidth returns the content width left in avail after the horizontal
// insets. When they do not fit, positive insets are dropped one at a time:
// right margin, border and padding first, then the left ones. The result is
// clamped at 0.
func (b *Box) fitWidth(avail float64) (width float64, dropped int) {
	w := avail - b.horizontalInsets()
	for _, inset := range []*float64{
		&b.Margin.Right, &b.Border.Right, &b.Padding.Right,
		&b.Margin.Left, &b.Border.Left, &b.Padding.Left,
	} {
		if w >= 0 {
			break
		}
		if *inset <= 0 {
			continue
		}
		w += *inset
		*inset = 0
		dropped++
	}
	return max(w, 0), dropped
}

// centerAuto distributes the space left by a box of fixed width between auto
// horizontal margins.
func (b *Box) centerAuto(avail float64) {
	free := avail - b.outerWidth()
	if free <= 0 {
		return
	}
	switch {
	case b.autoMargin.left && b.autoMargin.right:
		b.Margin.Left += free / 2
		b.Margin.Right += free / 2
	case b.autoMargin.left:
		b.Margin.Left += free
	case b.autoMargin.right:
		b.Margin.Right += free
	}
}
