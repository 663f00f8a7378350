package view

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"boxlayout/pkg/css"
	"boxlayout/pkg/layout"
	"boxlayout/pkg/text"
)

func styled(t *testing.T, markup string) *Document {
	t.Helper()
	doc := mustLoad(t, markup)
	styler := NewStyler(css.NewRegistry(nil, css.WithStrictLookups(true)), nil, nil)
	if err := styler.Apply(doc); err != nil {
		t.Fatalf("unexpected styling error: %v", err)
	}
	return doc
}

func TestStyler_CascadeAndInline(t *testing.T) {
	doc := styled(t, `<root>
		<style>box { width: 10px } .wide { width: 50% } #first { height: 7px }</style>
		<box id="first" class="wide" style="padding: 2px"/>
		<box/>
	</root>`)

	first := doc.Root.Find("first")
	if got := first.Style().Get("width"); got != css.Percent(50) {
		t.Errorf("expected class rule to win, got %v", got)
	}
	if got := first.Style().Get("height"); got != css.Length(7) {
		t.Errorf("expected id rule, got %v", got)
	}
	if got := first.Style().Get("padding-left"); got != css.Length(2) {
		t.Errorf("expected inline padding, got %v", got)
	}
	if got := doc.Root.Children[1].Style().Get("width"); got != css.Length(10) {
		t.Errorf("expected element rule, got %v", got)
	}
}

func TestStyler_TextIsInlineAndInherits(t *testing.T) {
	doc := styled(t, `<root style="font-size: 26px"><text>ab cd</text></root>`)

	txt := doc.Root.Children[0]
	if txt.Style().Layout() != css.LayoutInline {
		t.Errorf("expected inline layout for <text>, got %v", txt.Style().Layout())
	}
	word := txt.Children[0]
	run, ok := word.Content().(*text.Run)
	if !ok {
		t.Fatalf("expected a text run, got %T", word.Content())
	}
	if run.Size != 26 || run.Text != "ab " {
		t.Errorf("unexpected run %+v", run)
	}
	// 3 runes at 14px each
	if got := run.PreferredWidth(); got != 42 {
		t.Errorf("expected width 42, got %v", got)
	}
}

func TestStyler_LineHeight(t *testing.T) {
	doc := styled(t, `<text style="line-height: 20px">word</text>`)
	run := doc.Root.Children[0].Content().(*text.Run)
	if run.LineHeight != 20 {
		t.Errorf("expected line height 20, got %v", run.LineHeight)
	}
}

func TestStyler_HiddenNodes(t *testing.T) {
	doc := styled(t, `<root><a hidden=""/><b style="display: none"/><c/></root>`)

	var hidden []bool
	for _, c := range doc.Root.Children {
		hidden = append(hidden, c.IsHidden())
	}
	if diff := cmp.Diff([]bool{true, true, false}, hidden); diff != "" {
		t.Errorf("hidden mismatch (-want +got):\n%s", diff)
	}
}

func TestStyler_DisplayNoneLeavesFlow(t *testing.T) {
	doc := styled(t, `<root style="width: 100px"><a style="display: none; height: 40px"/><b style="height: 10px"/></root>`)

	res, err := layout.NewEngine(nil).Layout(doc.Root, layout.Rect{Width: 200, Height: 200})
	if err != nil {
		t.Fatalf("unexpected layout error: %v", err)
	}
	if _, ok := res.Lookup(doc.Root.Children[0]); ok {
		t.Error("expected no box for the display: none child")
	}
	b, ok := res.Lookup(doc.Root.Children[1])
	if !ok {
		t.Fatal("expected a box for b")
	}
	if b.Rect.Y != 0 {
		t.Errorf("expected b at y 0, got %v", b.Rect.Y)
	}
	if got := res.Root.Rect.Height; got != 10 {
		t.Errorf("expected root height 10, got %v", got)
	}
}

func TestStyler_Warnings(t *testing.T) {
	doc := mustLoad(t, `<root><style>a { width: 1px 2px }</style><box style="margin: 1px 2px 3px 4px 5px; height: 3px"/></root>`)
	err := NewStyler(css.NewRegistry(nil), nil, nil).Apply(doc)
	if !errors.Is(err, css.ErrMalformed) {
		t.Fatalf("expected malformed declaration warnings, got %v", err)
	}
	if got := doc.Root.Children[0].Style().Get("height"); got != css.Length(3) {
		t.Errorf("expected valid declarations to apply, got %v", got)
	}
}

func TestStyler_RejectsSharedNodes(t *testing.T) {
	doc := mustLoad(t, `<root><a/></root>`)
	doc.Root.Children = append(doc.Root.Children, doc.Root.Children[0])
	err := NewStyler(css.NewRegistry(nil), nil, nil).Apply(doc)
	if !errors.Is(err, ErrHierarchy) {
		t.Errorf("expected ErrHierarchy, got %v", err)
	}
}

func TestDocumentLayout(t *testing.T) {
	doc := styled(t, `<root style="width: 90px">
		<text id="t">aaaa bbbb cccc</text>
		<image id="img" width="30" height="20" style="margin-top: 5px"/>
	</root>`)

	if _, err := layout.NewEngine(nil).Layout(doc.Root, layout.Rect{Width: 800, Height: 600}); err != nil {
		t.Fatalf("unexpected layout error: %v", err)
	}

	// words are 5 runes wide (35px) with the trailing space: two per line
	words := doc.Root.Find("t").Children
	var got []layout.Rect
	for _, w := range words {
		got = append(got, w.Geometry())
	}
	want := []layout.Rect{
		{X: 0, Y: 0, Width: 35, Height: 13},
		{X: 35, Y: 0, Width: 35, Height: 13},
		{X: 0, Y: 13, Width: 28, Height: 13},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("word geometry mismatch (-want +got):\n%s", diff)
	}

	img := doc.Root.Find("img")
	if diff := cmp.Diff(layout.Rect{X: 0, Y: 31, Width: 30, Height: 20}, img.Geometry()); diff != "" {
		t.Errorf("image geometry mismatch (-want +got):\n%s", diff)
	}
}
