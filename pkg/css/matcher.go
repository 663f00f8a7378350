package css

// Element is the view of a tree node the selector matcher needs.
type Element interface {
	TagName() string
	ElementID() string
	HasClass(name string) bool
	// ParentElement returns nil for the root.
	ParentElement() Element
}

// MatchesSelector reports whether el matches the complex selector.
func MatchesSelector(el Element, sel Selector) bool {
	if len(sel.Parts) == 0 {
		return false
	}
	return matchesFrom(el, sel, len(sel.Parts)-1)
}

// matchesFrom matches part index i against el and everything to the left of
// it against el's ancestors.
func matchesFrom(el Element, sel Selector, i int) bool {
	if !matchesPart(el, sel.Parts[i]) {
		return false
	}
	if i == 0 {
		return true
	}
	switch sel.Combinators[i-1] {
	case ChildCombinator:
		parent := el.ParentElement()
		return parent != nil && matchesFrom(parent, sel, i-1)
	default:
		for anc := el.ParentElement(); anc != nil; anc = anc.ParentElement() {
			if matchesFrom(anc, sel, i-1) {
				return true
			}
		}
		return false
	}
}

func matchesPart(el Element, part SelectorPart) bool {
	if part.Element != "" && part.Element != "*" && el.TagName() != part.Element {
		return false
	}
	if part.ID != "" && el.ElementID() != part.ID {
		return false
	}
	for _, c := range part.Classes {
		if !el.HasClass(c) {
			return false
		}
	}
	return true
}
