package view

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"boxlayout/pkg/css"
	"boxlayout/pkg/layout"
	"boxlayout/pkg/text"
)

// UserAgentSheet is the built-in stylesheet, applied before the document's.
const UserAgentSheet = `
text { layout: inline }
`

// Styler computes the style of every node and attaches leaf content sized
// from it.
type Styler struct {
	log      *zap.Logger
	registry *css.Registry
	parser   *css.Parser
	measurer text.Measurer
}

// NewStyler creates a styler. A nil measurer selects text.BasicMeasurer.
func NewStyler(registry *css.Registry, measurer text.Measurer, log *zap.Logger) *Styler {
	if log == nil {
		log = zap.NewNop()
	}
	if measurer == nil {
		measurer = text.BasicMeasurer{}
	}
	return &Styler{
		log:      log.Named("styler"),
		registry: registry,
		parser:   css.NewParser(registry, log),
		measurer: measurer,
	}
}

// Apply styles doc. Stylesheet and inline declaration problems do not stop
// styling: everything that parsed is applied and the returned error lists
// what was dropped. A node reachable twice is a hard error.
func (s *Styler) Apply(doc *Document) error {
	var warnings error

	sheets := make([]*css.Stylesheet, 0, len(doc.Sheets)+1)
	for i, src := range append([]string{UserAgentSheet}, doc.Sheets...) {
		name := "user-agent"
		if i > 0 {
			name = fmt.Sprintf("stylesheet %d", i)
		}
		sheet, err := s.parser.ParseStylesheet(src, name)
		if err != nil {
			warnings = multierr.Append(warnings, fmt.Errorf("%s: %w", name, err))
		}
		if sheet != nil {
			sheets = append(sheets, sheet)
		}
	}
	cascade := css.NewCascade(s.registry, s.log, sheets...)

	visited := make(map[*Node]struct{})
	stack := []*Node{doc.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[n]; seen {
			return fmt.Errorf("%w: <%s> reached twice", ErrHierarchy, n.Tag)
		}
		visited[n] = struct{}{}

		var inline []css.Declaration
		if raw, ok := n.Attrs["style"]; ok {
			decls, err := s.parser.ParseDeclarations(raw)
			if err != nil {
				warnings = multierr.Append(warnings, fmt.Errorf("<%s style=%q>: %w", n.Tag, raw, err))
			}
			inline = decls
		}

		var parent *css.Style
		if n.Parent != nil {
			parent = n.Parent.style
		}
		n.style = cascade.Compute(n, inline, parent)
		n.content = s.content(n)

		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}

	s.log.Debug("Styles computed",
		zap.Int("nodes", len(visited)),
		zap.Int("stylesheets", len(sheets)),
		zap.Int("warnings", len(multierr.Errors(warnings))))
	return warnings
}

func (s *Styler) content(n *Node) layout.Content {
	switch n.Kind {
	case ContentText:
		run := &text.Run{Text: n.Text, Size: n.style.FontSize(), Measurer: s.measurer}
		if lh, ok := n.style.LineHeight(); ok {
			run.LineHeight = lh
		}
		return run
	case ContentImage:
		return n.Image
	}
	return nil
}
