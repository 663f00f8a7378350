package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"boxlayout/pkg/css"
)

var (
	// ErrCyclicTree is returned when a view is reachable twice, for example
	// because it is its own descendant.
	ErrCyclicTree = errors.New("cyclic view tree")
	// ErrTreeTooDeep is returned when the tree is deeper than the engine limit.
	ErrTreeTooDeep = errors.New("view tree too deep")
	// ErrMissingStyle is returned for views without a computed style.
	ErrMissingStyle = errors.New("view has no style")
)

// buildBoxes walks the tree with an explicit work list and returns one box
// per non-hidden view in document order. Nothing is measured: the tree is
// rejected before any geometry is produced.
func (e *Engine) buildBoxes(root View) ([]*Box, error) {
	type work struct {
		view   View
		parent *Box
		depth  int
	}

	var (
		boxes    []*Box
		contexts int
		visited  = make(map[View]struct{})
		stack    = []work{{view: root}}
	)
	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[w.view]; seen {
			return nil, fmt.Errorf("%w: view %T at depth %d was already visited", ErrCyclicTree, w.view, w.depth)
		}
		if w.depth > e.maxDepth {
			return nil, fmt.Errorf("%w: depth exceeds %d", ErrTreeTooDeep, e.maxDepth)
		}
		visited[w.view] = struct{}{}

		style := w.view.Style()
		if style == nil {
			return nil, fmt.Errorf("%w: %T at depth %d", ErrMissingStyle, w.view, w.depth)
		}
		b := &Box{
			View:      w.view,
			Parent:    w.parent,
			Depth:     w.depth,
			OutOfFlow: style.OutOfFlow(),
			style:     style,
			content:   w.view.Content(),
			mode:      e.modes[style.Layout()],
		}
		if p := w.parent; p != nil {
			p.Children = append(p.Children, b)
			if !b.OutOfFlow {
				b.flowIndex = len(p.inFlow)
				p.inFlow = append(p.inFlow, b)
				b.context = p.childCtx
			}
		}
		b.childCtx = childContext(b, &contexts)
		boxes = append(boxes, b)

		if b.content != nil {
			continue
		}
		children := w.view.LayoutChildren()
		for i := len(children) - 1; i >= 0; i-- {
			c := children[i]
			if c == nil || c.IsHidden() {
				continue
			}
			stack = append(stack, work{view: c, parent: b, depth: w.depth + 1})
		}
	}

	e.log.Debug("View tree validated", zap.Int("boxes", len(boxes)), zap.Int("contexts", contexts))
	return boxes, nil
}

// childContext returns the block formatting context in which the in-flow
// children of b collapse their margins. Only block containers have one; the
// root, boxes outside any block context and boxes clipping their overflow
// start a new one.
func childContext(b *Box, next *int) int {
	if b.style.Layout() != css.LayoutBlock || b.content != nil {
		return 0
	}
	if b.Parent == nil || b.context == 0 || !b.style.Get("overflow").Is("visible") {
		*next++
		return *next
	}
	return b.context
}
