package css

import (
	"sort"

	"go.uber.org/zap"
)

// Cascade computes styles from a set of stylesheets.
type Cascade struct {
	log      *zap.Logger
	registry *Registry
	sheets   []*Stylesheet
}

// NewCascade creates a cascade over sheets; earlier sheets lose ties against
// later ones, the user agent sheet therefore goes first.
func NewCascade(registry *Registry, log *zap.Logger, sheets ...*Stylesheet) *Cascade {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cascade{log: log.Named("cascade"), registry: registry, sheets: sheets}
}

type matchedRule struct {
	rule  *Rule
	sheet int
}

// Compute returns the computed style of el: matching rules applied in
// ascending specificity (stable by sheet and source order), then inline
// declarations, then inherit keywords and inherited properties resolved
// against parent (which may be nil for the root). Important declarations
// go through the same order after all normal ones.
func (c *Cascade) Compute(el Element, inline []Declaration, parent *Style) *Style {
	style := NewStyle(c.registry)

	var matched []matchedRule
	for si, sheet := range c.sheets {
		for ri := range sheet.Rules {
			if MatchesSelector(el, sheet.Rules[ri].Selector) {
				matched = append(matched, matchedRule{rule: &sheet.Rules[ri], sheet: si})
			}
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.rule.Selector.Specificity != b.rule.Selector.Specificity {
			return a.rule.Selector.Specificity < b.rule.Selector.Specificity
		}
		if a.sheet != b.sheet {
			return a.sheet < b.sheet
		}
		return a.rule.Order < b.rule.Order
	})
	for _, important := range []bool{false, true} {
		for _, m := range matched {
			style.Apply(filterImportant(m.rule.Declarations, important))
		}
		style.Apply(filterImportant(inline, important))
	}

	c.inherit(style, parent)
	if len(matched) > 0 {
		c.log.Debug("Computed style", zap.String("element", el.TagName()), zap.Int("rules", len(matched)))
	}
	return style
}

func filterImportant(decls []Declaration, important bool) []Declaration {
	var out []Declaration
	for _, d := range decls {
		if d.Important == important {
			out = append(out, d)
		}
	}
	return out
}

// inherit replaces inherit keywords with the parent's value (or the default
// for the root) and copies inherited properties that were not set.
func (c *Cascade) inherit(style, parent *Style) {
	for name, v := range style.Properties {
		if !v.IsInherit() {
			continue
		}
		if parent != nil {
			style.Properties[name] = parent.Get(name)
			switch name {
			case "box-shadow":
				style.Shadows = parent.Clone().Shadows
			case "background-image":
				style.Gradient = parent.Gradient
			}
		} else {
			style.Properties[name] = c.registry.defaultFor(name)
		}
	}
	if parent == nil {
		return
	}
	for _, name := range c.registry.Names() {
		prop, _ := c.registry.Lookup(name)
		if !prop.Inherited {
			continue
		}
		if _, set := style.Properties[name]; !set {
			if v, ok := parent.Lookup(name); ok {
				style.Properties[name] = v
			}
		}
	}
}
