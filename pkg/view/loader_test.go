package view

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustLoad(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := NewLoader(nil).LoadString(markup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func tags(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Tag)
	}
	return out
}

func TestLoader_Elements(t *testing.T) {
	doc := mustLoad(t, `<root id="r"><box class="a b" style="width: 10px"/><box/></root>`)

	if doc.Root.Tag != "root" {
		t.Errorf("expected root tag, got %q", doc.Root.Tag)
	}
	if diff := cmp.Diff([]string{"box", "box"}, tags(doc.Root.Children)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	first := doc.Root.Children[0]
	if v, _ := first.Attr("style"); v != "width: 10px" {
		t.Errorf("expected style attribute, got %q", v)
	}
	if !first.HasClass("b") || first.HasClass("c") {
		t.Error("unexpected class matching")
	}
	if first.Parent != doc.Root || first.IndexInParent() != 0 {
		t.Error("expected parent links to be set")
	}
	if doc.Root.ParentElement() != nil {
		t.Error("expected nil parent element for the root")
	}
}

func TestLoader_TextBecomesWords(t *testing.T) {
	doc := mustLoad(t, "<root><text>Hello,  big\n world</text>ignored</root>")

	txt := doc.Root.Children[0]
	var words []string
	for _, c := range txt.Children {
		if c.Kind != ContentText || c.Tag != TextTag {
			t.Errorf("expected text leaf, got %v %q", c.Kind, c.Tag)
		}
		words = append(words, c.Text)
	}
	if diff := cmp.Diff([]string{"Hello, ", "big ", "world"}, words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Root.TextContent(); got != "Hello, big world" {
		t.Errorf("expected text content, got %q", got)
	}
}

func TestLoader_NestedTextElements(t *testing.T) {
	doc := mustLoad(t, "<text>a <span>b</span> c</text>")
	if got := doc.Root.TextContent(); got != "a bc" {
		t.Errorf("expected %q, got %q", "a bc", got)
	}
	if diff := cmp.Diff([]string{TextTag, "span", TextTag}, tags(doc.Root.Children)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Images(t *testing.T) {
	doc := mustLoad(t, `<root><image width="40" height="30px" id="pic"/></root>`)

	img := doc.Root.Find("pic")
	if img == nil {
		t.Fatal("expected image node")
	}
	if img.Kind != ContentImage {
		t.Errorf("expected image kind, got %v", img.Kind)
	}
	if diff := cmp.Diff(Image{Width: 40, Height: 30}, img.Image); diff != "" {
		t.Errorf("image mismatch (-want +got):\n%s", diff)
	}
}

type fakeImages map[string]image.Image

func (f fakeImages) Load(src string) (image.Image, error) {
	if img, ok := f[src]; ok {
		return img, nil
	}
	return nil, fmt.Errorf("no image %q: %w", src, os.ErrNotExist)
}

func TestLoader_ImageSource(t *testing.T) {
	source := fakeImages{"pic.png": image.NewRGBA(image.Rect(0, 0, 40, 20))}
	tests := []struct {
		name   string
		markup string
		want   [2]float64
	}{
		{"intrinsic", `<image src="pic.png"/>`, [2]float64{40, 20}},
		{"width only", `<image src="pic.png" width="20"/>`, [2]float64{20, 10}},
		{"height only", `<image src="pic.png" height="40"/>`, [2]float64{80, 40}},
		{"both", `<image src="pic.png" width="5" height="5"/>`, [2]float64{5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewLoader(nil, WithImages(source)).LoadString("<root>" + tt.markup + "</root>")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			img := doc.Root.Children[0].Image
			if got := [2]float64{img.Width, img.Height}; got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if img.Bitmap == nil {
				t.Error("expected the bitmap to be attached")
			}
		})
	}

	_, err := NewLoader(nil, WithImages(source)).LoadString(`<root><image src="gone.png"/></root>`)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	// without a source the src attribute is kept but not resolved
	doc := mustLoad(t, `<root><image src="pic.png" width="3" height="4"/></root>`)
	if img := doc.Root.Children[0].Image; img.Bitmap != nil || img.Width != 3 {
		t.Errorf("expected a placeholder image, got %+v", img)
	}
}

func TestLoader_StyleAndScript(t *testing.T) {
	doc := mustLoad(t, `<root><style>box { width: 5px }</style><box/><script>view("x")</script><style>a {}</style></root>`)

	if diff := cmp.Diff([]string{"box { width: 5px }", "a {}"}, doc.Sheets); diff != "" {
		t.Errorf("sheets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{`view("x")`}, doc.Scripts); diff != "" {
		t.Errorf("scripts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"box"}, tags(doc.Root.Children)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		wantErr error
	}{
		{"empty", "", ErrNoRoot},
		{"style root", "<style>a {}</style>", ErrNoRoot},
		{"bad image width", `<image width="wide" height="1"/>`, ErrBadAttribute},
		{"negative image height", `<image width="1" height="-1"/>`, ErrBadAttribute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(nil).LoadString(tt.markup)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := NewLoader(nil).LoadString("<root><unclosed></root>"); err == nil {
		t.Error("expected error for malformed XML")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xml")
	if err := os.WriteFile(path, []byte(`<root><box/></root>`), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := NewLoader(nil).LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Root.Children) != 1 {
		t.Errorf("expected 1 child, got %d", len(doc.Root.Children))
	}

	if _, err := NewLoader(nil).LoadFile(filepath.Join(t.TempDir(), "missing.xml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
