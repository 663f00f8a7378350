package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"boxlayout/pkg/css"
	"boxlayout/pkg/layout"
	"boxlayout/pkg/view"
)

var viewport = layout.Rect{Width: 200, Height: 100}

func buildReport(t *testing.T) *Report {
	t.Helper()
	doc, err := view.NewLoader(nil).LoadString(`<root id="r" style="width: 100px; padding: 5px">
		<box id="b" style="height: 10px; margin-top: 4px"/>
		<text>hi</text>
	</root>`)
	if err != nil {
		t.Fatal(err)
	}
	if err := view.NewStyler(css.NewRegistry(nil), nil, nil).Apply(doc); err != nil {
		t.Fatal(err)
	}
	res, err := layout.NewEngine(nil).Layout(doc.Root, viewport)
	if err != nil {
		t.Fatal(err)
	}
	return New(res, viewport)
}

func TestNew(t *testing.T) {
	r := buildReport(t)

	want := &Node{
		Tag:     "root",
		ID:      "r",
		Box:     Rect{X: 5, Y: 5, Width: 100, Height: 27},
		Padding: &Edges{Top: 5, Right: 5, Bottom: 5, Left: 5},
		Children: []*Node{
			{Tag: "box", ID: "b", Box: Rect{X: 5, Y: 9, Width: 100, Height: 10}, Margin: &Edges{Top: 4}},
			{
				Tag: "text", Box: Rect{X: 5, Y: 19, Width: 100, Height: 13}, Baseline: 11,
				Children: []*Node{
					{Tag: view.TextTag, Text: "hi", Box: Rect{X: 5, Y: 19, Width: 14, Height: 13}, Baseline: 11},
				},
			},
		},
	}
	// the root baseline comes from its first in-flow child with one
	want.Baseline = r.Root.Baseline
	if diff := cmp.Diff(want, r.Root); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Rect{Width: 200, Height: 100}, r.Viewport); diff != "" {
		t.Errorf("viewport mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_JSON(t *testing.T) {
	r := buildReport(t)
	var buf bytes.Buffer
	if err := r.Encode(&buf, FormatJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Report
	if err := jsoniter.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid json: %v", err)
	}
	if diff := cmp.Diff(r, &decoded); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
	if bytes.Contains(buf.Bytes(), []byte(`"border"`)) {
		t.Error("expected zero borders to be omitted")
	}
}

func TestEncode_YAML(t *testing.T) {
	r := buildReport(t)
	var buf bytes.Buffer
	if err := r.Encode(&buf, FormatYAML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Report
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid yaml: %v", err)
	}
	if diff := cmp.Diff(r, &decoded); diff != "" {
		t.Errorf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestFormats(t *testing.T) {
	for in, want := range map[string]Format{"yaml": FormatYAML, "yml": FormatYAML, "json": FormatJSON} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q): expected %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if err := (&Report{}).Encode(&bytes.Buffer{}, "toml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
