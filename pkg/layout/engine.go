package layout

import (
	"fmt"

	"go.uber.org/zap"

	"boxlayout/pkg/css"
)

// DefaultMaxDepth bounds the depth of trees the engine accepts.
const DefaultMaxDepth = 512

// layoutMode is one placement strategy for the children of a container.
// The driver calls the methods in pass order; each may rely on what earlier
// passes computed for the children.
type layoutMode interface {
	// preferredWidth is the content width wanted without constraints.
	// Children's preferred widths are known.
	preferredWidth(b *Box) float64
	// measureChildren assigns used widths (and horizontal edges) to the
	// in-flow children once b's own width is known.
	measureChildren(b *Box)
	// preferredHeight is the content height for b's width. Children's
	// heights are known.
	preferredHeight(b *Box) float64
	// layoutSubviews places the in-flow children inside b's content box.
	layoutSubviews(b *Box)
	// baselines returns b's first and last baseline offsets. Children are
	// positioned and their baselines known.
	baselines(b *Box) (first, last float64)
}

// Engine lays out view trees. An Engine holds no per-pass state and can be
// shared; a single tree must not be laid out concurrently.
type Engine struct {
	log      *zap.Logger
	maxDepth int
	block    *blockLayoutMode
	modes    map[css.LayoutType]layoutMode
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth sets the deepest tree accepted; deeper trees fail with
// ErrTreeTooDeep.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

func NewEngine(log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		log:      log.Named("layout"),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.block = &blockLayoutMode{log: e.log}
	e.modes = map[css.LayoutType]layoutMode{
		css.LayoutBlock:  e.block,
		css.LayoutInline: &inlineLayoutMode{},
		css.LayoutFlex:   &flexLayoutMode{log: e.log},
	}
	return e
}

// Layout runs a full pass over the tree rooted at root, with viewport as the
// root's containing block. Every laid out view receives SetGeometry. The
// tree is validated first; on error no geometry is produced.
func (e *Engine) Layout(root View, viewport Rect) (*Result, error) {
	if root == nil {
		return nil, fmt.Errorf("layout: nil root view")
	}
	boxes, err := e.buildBoxes(root)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	// bottom up: preferred widths
	for i := len(boxes) - 1; i >= 0; i-- {
		e.measurePreferredWidth(boxes[i])
	}

	// top down: used widths
	e.measureRoot(boxes[0], viewport)
	for _, b := range boxes {
		if len(b.Children) > 0 {
			if len(b.inFlow) > 0 {
				b.mode.measureChildren(b)
			}
			measureAbsoluteChildren(b)
		}
		for _, c := range b.Children {
			c.definiteH = -1
			if h, ok := c.explicitHeight(b.definiteH); ok {
				c.definiteH = c.clampHeight(h, b.definiteH)
			}
		}
		b.State = StateWidthMeasured
	}

	collapseMargins(boxes[0])

	// bottom up: heights
	for i := len(boxes) - 1; i >= 0; i-- {
		e.measureHeight(boxes[i], viewport)
	}

	// top down: positions
	top := boxes[0]
	top.Rect = Rect{X: top.leftInset(), Y: top.topInset(), Width: top.width, Height: top.height}
	top.Abs = top.Rect.Translate(viewport.X, viewport.Y)
	for _, b := range boxes {
		if len(b.inFlow) > 0 {
			b.mode.layoutSubviews(b)
		}
		placeAbsoluteChildren(b)
		for _, c := range b.Children {
			c.Abs = c.Rect.Translate(b.Abs.X, b.Abs.Y)
		}
		b.State = StatePositioned
		b.View.SetGeometry(b.Rect)
	}

	// bottom up: baselines
	for i := len(boxes) - 1; i >= 0; i-- {
		b := boxes[i]
		switch {
		case b.content != nil:
			b.FirstBaseline = b.content.Baseline()
			b.LastBaseline = b.FirstBaseline
		case len(b.inFlow) > 0:
			b.FirstBaseline, b.LastBaseline = b.mode.baselines(b)
		}
	}

	res := &Result{Root: top, Boxes: boxes, byView: make(map[View]*Box, len(boxes))}
	for _, b := range boxes {
		res.byView[b.View] = b
	}
	e.log.Debug("Layout pass complete",
		zap.Int("boxes", len(boxes)),
		zap.Float64("width", top.width),
		zap.Float64("height", top.height))
	return res, nil
}

// measurePreferredWidth memoizes the preferred content width of b.
func (e *Engine) measurePreferredWidth(b *Box) {
	var w float64
	switch ew, ok := b.explicitWidth(-1); {
	case ok:
		w = ew
	case b.content != nil:
		w = b.content.PreferredWidth()
	default:
		w = b.mode.preferredWidth(b)
	}
	b.pref = b.clampWidth(w, -1)
}

// measureRoot sizes the root against the viewport the way a block container
// sizes its children.
func (e *Engine) measureRoot(root *Box, viewport Rect) {
	root.definiteH = -1
	if h, ok := root.explicitHeight(viewport.Height); ok {
		root.definiteH = root.clampHeight(h, viewport.Height)
	}
	e.block.measureChild(root, viewport.Width)
}

func (e *Engine) measureHeight(b *Box, viewport Rect) {
	cb := viewport.Height
	if b.Parent != nil {
		cb = b.Parent.definiteH
	}
	var h float64
	switch eh, ok := b.explicitHeight(cb); {
	case ok:
		h = eh
	case b.content != nil:
		h = b.content.PreferredHeight(b.width)
	case len(b.inFlow) > 0:
		h = b.mode.preferredHeight(b)
	}
	b.height = b.clampHeight(h, cb)
	b.State = StateHeightMeasured
}
