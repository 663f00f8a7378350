package layout

// inlineLayoutMode flows in-flow children left to right and wraps them into
// lines.
type inlineLayoutMode struct{}

// preferredWidth is the single line width: the sum of the children's margin
// boxes.
func (m *inlineLayoutMode) preferredWidth(b *Box) float64 {
	var w float64
	for _, c := range b.inFlow {
		w += c.prefOuterWidth()
	}
	return w
}

// measureChildren gives every child its own preferred width.
func (m *inlineLayoutMode) measureChildren(b *Box) {
	for _, c := range b.inFlow {
		c.resolveEdges(b.width)
		if w, ok := c.explicitWidth(b.width); ok {
			c.width = c.clampWidth(w, b.width)
		} else {
			c.width = c.clampWidth(c.pref, b.width)
		}
	}
}

// flow runs the line breaking pass and returns the content height. A child
// wraps when it does not fit the remaining width, unless it is the first on
// its line: a child wider than the container overflows instead. commit, when
// set, receives each finished line with its top and its used width.
func (m *inlineLayoutMode) flow(b *Box, commit func(line []*Box, y, width float64)) float64 {
	var (
		x, y, lineHeight float64
		line             []*Box
	)
	for _, c := range b.inFlow {
		w := c.outerWidth()
		if x != 0 && x+w > b.width {
			if commit != nil {
				commit(line, y, x)
			}
			y += lineHeight
			x, lineHeight, line = 0, 0, nil
		}
		line = append(line, c)
		x += w
		lineHeight = max(lineHeight, c.outerHeight())
	}
	if commit != nil && len(line) > 0 {
		commit(line, y, x)
	}
	return y + lineHeight
}

func (m *inlineLayoutMode) preferredHeight(b *Box) float64 {
	return m.flow(b, nil)
}

func (m *inlineLayoutMode) layoutSubviews(b *Box) {
	align := b.style.TextAlign()
	m.flow(b, func(line []*Box, y, width float64) {
		var x float64
		if free := b.width - width; free > 0 {
			switch align {
			case "center":
				x = free / 2
			case "right":
				x = free
			}
		}
		for _, c := range line {
			c.Rect = Rect{X: x + c.leftInset(), Y: y + c.topInset(), Width: c.width, Height: c.height}
			x += c.outerWidth()
		}
	})
}

// baselines returns the topmost child baseline for both the first and the
// last baseline.
func (m *inlineLayoutMode) baselines(b *Box) (first, last float64) {
	for i, c := range b.inFlow {
		bl := c.Rect.Y + c.FirstBaseline
		if i == 0 || bl < first {
			first = bl
		}
	}
	return first, first
}
