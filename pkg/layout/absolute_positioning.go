package layout

// Absolutely positioned children are sized and placed against the padding
// box of their parent. They take no part in the parent's flow, margin
// collapsing or baselines.

func paddingBoxSize(b *Box) (w, h float64) {
	return b.width + b.Padding.Horizontal(), b.height + b.Padding.Vertical()
}

func offsets(c *Box, cbW, cbH float64) (top, right, bottom, left float64, hasTop, hasRight, hasBottom, hasLeft bool) {
	top, hasTop = c.style.Get("top").Resolve(cbH)
	right, hasRight = c.style.Get("right").Resolve(cbW)
	bottom, hasBottom = c.style.Get("bottom").Resolve(cbH)
	left, hasLeft = c.style.Get("left").Resolve(cbW)
	return
}

// measureAbsoluteChildren sizes the out-of-flow children of b. An auto width
// with both left and right set fills the space between them; otherwise the
// child shrinks to its preferred width.
func measureAbsoluteChildren(b *Box) {
	cbW := b.width + b.Padding.Horizontal()
	for _, c := range b.Children {
		if !c.OutOfFlow {
			continue
		}
		c.resolveEdges(cbW)
		_, right, _, left, _, hasRight, _, hasLeft := offsets(c, cbW, -1)
		switch w, ok := c.explicitWidth(cbW); {
		case ok:
			c.width = c.clampWidth(w, cbW)
			if hasLeft && hasRight {
				c.centerAuto(cbW - left - right)
			}
		case hasLeft && hasRight && c.content == nil:
			c.width = c.clampWidth(max(cbW-left-right-c.horizontalInsets(), 0), cbW)
		default:
			c.width = c.clampWidth(c.pref, cbW)
		}
	}
}

// placeAbsoluteChildren positions the out-of-flow children of b once b's
// height is known. A child with neither left nor right keeps its static
// position at the content origin; the same holds vertically.
func placeAbsoluteChildren(b *Box) {
	cbW, cbH := paddingBoxSize(b)
	for _, c := range b.Children {
		if !c.OutOfFlow {
			continue
		}
		top, right, bottom, left, hasTop, hasRight, hasBottom, hasLeft := offsets(c, cbW, cbH)
		if _, ok := c.explicitHeight(cbH); !ok && hasTop && hasBottom && c.content == nil {
			c.height = c.clampHeight(max(cbH-top-bottom-c.verticalInsets(), 0), cbH)
		}

		x := c.leftInset()
		switch {
		case hasLeft:
			x = left - b.Padding.Left + c.leftInset()
		case hasRight:
			x = cbW - b.Padding.Left - right - c.outerWidth() + c.leftInset()
		}
		y := c.topInset()
		switch {
		case hasTop:
			y = top - b.Padding.Top + c.topInset()
		case hasBottom:
			y = cbH - b.Padding.Top - bottom - c.outerHeight() + c.topInset()
		}
		c.Rect = Rect{X: x, Y: y, Width: c.width, Height: c.height}
	}
}
