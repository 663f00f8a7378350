package css

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseStylesheet_SingleRule(t *testing.T) {
	p := newTestParser()
	sheet, err := p.ParseStylesheet(`view { width: 10px; }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sheet.Rules))
	}
	rule := sheet.Rules[0]
	if rule.Selector.Raw != "view" {
		t.Errorf("expected selector 'view', got %q", rule.Selector.Raw)
	}
	want := []Declaration{{Property: "width", Value: Length(10)}}
	if diff := cmp.Diff(want, rule.Declarations); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestParseStylesheet_SelectorList(t *testing.T) {
	p := newTestParser()
	sheet, err := p.ParseStylesheet(`
		a, .b, #c { padding: 1px 2px; }
		d { height: 5%; }
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var raws []string
	for _, r := range sheet.Rules {
		raws = append(raws, r.Selector.Raw)
	}
	if diff := cmp.Diff([]string{"a", ".b", "#c", "d"}, raws); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	for i, r := range sheet.Rules {
		if r.Order != i {
			t.Errorf("rule %d: expected order %d, got %d", i, i, r.Order)
		}
	}
	if n := len(sheet.Rules[0].Declarations); n != 4 {
		t.Errorf("padding shorthand should expand to 4 longhands, got %d", n)
	}
}

func TestParseStylesheet_CommentsAndAtRules(t *testing.T) {
	p := newTestParser()
	sheet, err := p.ParseStylesheet(`
		/* leading comment */
		@media screen { view { width: 1px; } }
		@import "other.css";
		view { /* inside */ width: 2px; }
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected only the top level rule, got %d", len(sheet.Rules))
	}
	if got := sheet.Rules[0].Declarations[0].Value; got != Length(2) {
		t.Errorf("expected 2px, got %v", got)
	}
}

func TestParseStylesheet_ErrorRecovery(t *testing.T) {
	p := newTestParser()
	sheet, err := p.ParseStylesheet(`
		a:hover { width: 1px; }
		b { width: 1px 2px; height: 3px; }
		c { margin: 1px 2px 3px 4px 5px; padding: 1px; }
	`)
	if err == nil {
		t.Fatal("expected an error describing skipped input")
	}
	if !errors.Is(err, ErrUnsupportedSelector) {
		t.Errorf("expected ErrUnsupportedSelector in %v", err)
	}
	var found bool
	for _, r := range sheet.Rules {
		if r.Selector.Raw == "c" {
			found = true
			if len(r.Declarations) != 4 || r.Declarations[0].Property != "padding-top" {
				t.Errorf("expected only padding to survive, got %+v", r.Declarations)
			}
		}
		if r.Selector.Raw == "a:hover" {
			t.Error("pseudo-class selector must be skipped")
		}
	}
	if !found {
		t.Error("rule 'c' should survive earlier errors")
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		raw         string
		parts       []SelectorPart
		combinators []Combinator
		specificity int
	}{
		{"view", []SelectorPart{{Element: "view"}}, nil, 1},
		{"#main", []SelectorPart{{ID: "main"}}, nil, 100},
		{"view.a.b", []SelectorPart{{Element: "view", Classes: []string{"a", "b"}}}, nil, 21},
		{"*", []SelectorPart{{Element: "*"}}, nil, 0},
		{
			"#r view > .x",
			[]SelectorPart{{ID: "r"}, {Element: "view"}, {Classes: []string{"x"}}},
			[]Combinator{DescendantCombinator, ChildCombinator},
			111,
		},
		{
			"a>b",
			[]SelectorPart{{Element: "a"}, {Element: "b"}},
			[]Combinator{ChildCombinator},
			2,
		},
	}
	for _, tt := range tests {
		sel, err := ParseSelector(tt.raw)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.raw, err)
			continue
		}
		if diff := cmp.Diff(tt.parts, sel.Parts); diff != "" {
			t.Errorf("%q parts (-want +got):\n%s", tt.raw, diff)
		}
		if diff := cmp.Diff(tt.combinators, sel.Combinators); diff != "" {
			t.Errorf("%q combinators (-want +got):\n%s", tt.raw, diff)
		}
		if sel.Specificity != tt.specificity {
			t.Errorf("%q: expected specificity %d, got %d", tt.raw, tt.specificity, sel.Specificity)
		}
	}
}

func TestParseSelector_Unsupported(t *testing.T) {
	for _, raw := range []string{"", "a:hover", "a + b", "a ~ b", "[x]", "> a", "a >", "a#x#y", "a."} {
		if _, err := ParseSelector(raw); !errors.Is(err, ErrUnsupportedSelector) {
			t.Errorf("%q: expected ErrUnsupportedSelector, got %v", raw, err)
		}
	}
}

func TestParseLinearGradient(t *testing.T) {
	g, ok := ParseLinearGradient("linear-gradient(45deg, red 10px, rgb(0, 0, 255) 50%, #0f0)")
	if !ok {
		t.Fatal("expected gradient to parse")
	}
	if g.Angle != 45 {
		t.Errorf("expected angle 45, got %v", g.Angle)
	}
	if len(g.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(g.Stops))
	}
	if g.Stops[1].Offset != Percent(50) || !g.Stops[2].Offset.IsNone() {
		t.Errorf("unexpected stop offsets %+v", g.Stops)
	}

	g, ok = ParseLinearGradient("linear-gradient(red, blue)")
	if !ok || g.Angle != 180 {
		t.Errorf("default direction should be to bottom, got %+v", g)
	}

	for _, bad := range []string{"linear-gradient(red)", "radial-gradient(red, blue)", "linear-gradient(to nowhere, red, blue)", "red"} {
		if _, ok := ParseLinearGradient(bad); ok {
			t.Errorf("%q: expected failure", bad)
		}
	}
}

func TestGradientOffsets(t *testing.T) {
	g, _ := ParseLinearGradient("linear-gradient(red, green, blue 50px, white 20%, black)")
	got := g.Offsets(100)
	want := []float64{0, 0.25, 0.5, 0.5, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestGradientLine(t *testing.T) {
	g := &Gradient{Angle: 90}
	x0, y0, x1, y1 := g.Line(10, 20, 100, 50)
	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
	if !near(x0, 10) || !near(x1, 110) || !near(y0, 45) || !near(y1, 45) {
		t.Errorf("to right: got (%v,%v)-(%v,%v)", x0, y0, x1, y1)
	}
}
