package css

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Combinator joins two compound selectors.
type Combinator int

const (
	DescendantCombinator Combinator = iota // "a b"
	ChildCombinator                        // "a > b"
)

// SelectorPart is a compound selector: element, id and classes that must all
// match the same node. An empty Element (or "*") matches any element.
type SelectorPart struct {
	Element string
	ID      string
	Classes []string
}

// Selector is a complex selector; Combinators[i] joins Parts[i] and Parts[i+1].
type Selector struct {
	Raw         string
	Parts       []SelectorPart
	Combinators []Combinator
	Specificity int
}

// Rule is a selector with its expanded longhand declarations.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
	Order        int
}

// Stylesheet is an ordered list of rules.
type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses a stylesheet. Unsupported at-rules and selectors and
// malformed declarations are skipped; the returned error describes what was
// skipped and the stylesheet holds everything that parsed.
func (p *Parser) ParseStylesheet(text string, source ...string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing stylesheet", zap.String("source", source[0]), zap.Int("bytes", len(text)))
	}

	parser := css.NewParser(parse.NewInputString(text), false)
	var errs error
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				errs = multierr.Append(errs, fmt.Errorf("%w: %v", ErrMalformed, err))
			}
			return sheet, errs

		case css.BeginAtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))
			skipAtRuleBlock(parser)

		case css.AtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.BeginRulesetGrammar:
			var sb strings.Builder
			sb.Write(data)
			for _, v := range parser.Values() {
				sb.Write(v.Data)
			}
			decls := p.rulesetDeclarations(parser, &errs)
			for sel := range strings.SplitSeq(sb.String(), ",") {
				selector, err := ParseSelector(sel)
				if err != nil {
					errs = multierr.Append(errs, err)
					p.log.Debug("Skipping selector", zap.String("selector", sel), zap.Error(err))
					continue
				}
				sheet.Rules = append(sheet.Rules, Rule{
					Selector:     selector,
					Declarations: decls,
					Order:        len(sheet.Rules),
				})
			}
		}
	}
}

func (p *Parser) rulesetDeclarations(parser *css.Parser, errs *error) []Declaration {
	var decls []Declaration
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls
		case css.DeclarationGrammar:
			out, err := p.declaration(string(data), parser.Values())
			if err != nil {
				p.log.Debug("Dropping declaration", zap.String("property", string(data)), zap.Error(err))
				*errs = multierr.Append(*errs, err)
				continue
			}
			decls = append(decls, out...)
		}
	}
}

func skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// ErrUnsupportedSelector is wrapped by errors for selectors outside the
// supported subset (compound type/#id/.class parts joined by descendant or
// child combinators).
var ErrUnsupportedSelector = errors.New("unsupported selector")

// ParseSelector parses a complex selector.
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	sel := Selector{Raw: raw}
	if raw == "" {
		return sel, fmt.Errorf("%w: empty", ErrUnsupportedSelector)
	}
	if strings.ContainsAny(raw, "[]:+~") {
		return sel, fmt.Errorf("%w: %q", ErrUnsupportedSelector, raw)
	}

	pendingChild := false
	for _, f := range strings.Fields(strings.ReplaceAll(raw, ">", " > ")) {
		if f == ">" {
			if len(sel.Parts) == 0 || pendingChild {
				return sel, fmt.Errorf("%w: dangling combinator in %q", ErrUnsupportedSelector, raw)
			}
			pendingChild = true
			continue
		}
		part, spec, err := parseSelectorPart(f)
		if err != nil {
			return sel, fmt.Errorf("%w: %q: %v", ErrUnsupportedSelector, raw, err)
		}
		if len(sel.Parts) > 0 {
			comb := DescendantCombinator
			if pendingChild {
				comb = ChildCombinator
			}
			sel.Combinators = append(sel.Combinators, comb)
		}
		pendingChild = false
		sel.Parts = append(sel.Parts, part)
		sel.Specificity += spec
	}
	if pendingChild {
		return sel, fmt.Errorf("%w: dangling combinator in %q", ErrUnsupportedSelector, raw)
	}
	return sel, nil
}

// parseSelectorPart parses "tag#id.class1.class2" and returns its specificity
// (id 100, class 10, element 1).
func parseSelectorPart(s string) (SelectorPart, int, error) {
	var (
		part SelectorPart
		spec int
	)
	i := 0
	for i < len(s) && s[i] != '#' && s[i] != '.' {
		i++
	}
	part.Element = strings.ToLower(s[:i])
	if part.Element != "" && part.Element != "*" {
		spec++
	}
	for i < len(s) {
		kind := s[i]
		j := i + 1
		for j < len(s) && s[j] != '#' && s[j] != '.' {
			j++
		}
		name := s[i+1 : j]
		if name == "" {
			return part, 0, fmt.Errorf("empty name after %q", kind)
		}
		if kind == '#' {
			if part.ID != "" {
				return part, 0, fmt.Errorf("multiple ids")
			}
			part.ID = name
			spec += 100
		} else {
			part.Classes = append(part.Classes, name)
			spec += 10
		}
		i = j
	}
	return part, spec, nil
}
