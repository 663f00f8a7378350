// Package report serializes layout results as YAML or JSON geometry trees.
package report

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"boxlayout/pkg/css"
	"boxlayout/pkg/layout"
	"boxlayout/pkg/text"
)

// ErrUnknownFormat is returned for output formats other than yaml and json.
var ErrUnknownFormat = errors.New("unknown report format")

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Rect is a box in viewport coordinates.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Edges are used margin, border or padding widths.
type Edges struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Node is the geometry of one box. Zero edges are omitted.
type Node struct {
	Tag       string  `json:"tag" yaml:"tag"`
	ID        string  `json:"id,omitempty" yaml:"id,omitempty"`
	Text      string  `json:"text,omitempty" yaml:"text,omitempty"`
	Box       Rect    `json:"box" yaml:"box"`
	Margin    *Edges  `json:"margin,omitempty" yaml:"margin,omitempty"`
	Border    *Edges  `json:"border,omitempty" yaml:"border,omitempty"`
	Padding   *Edges  `json:"padding,omitempty" yaml:"padding,omitempty"`
	Baseline  float64 `json:"baseline" yaml:"baseline"`
	OutOfFlow bool    `json:"outOfFlow,omitempty" yaml:"outOfFlow,omitempty"`
	Children  []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Report is the geometry of a whole pass.
type Report struct {
	Viewport Rect  `json:"viewport" yaml:"viewport"`
	Root     *Node `json:"root" yaml:"root"`
}

// New builds a report from a layout result. Views that implement
// css.Element contribute their tag and id.
func New(res *layout.Result, viewport layout.Rect) *Report {
	return &Report{Viewport: rect(viewport), Root: node(res.Root)}
}

func node(b *layout.Box) *Node {
	n := &Node{
		Tag:       "view",
		Box:       rect(b.Abs),
		Margin:    edges(b.Margin),
		Border:    edges(b.Border),
		Padding:   edges(b.Padding),
		Baseline:  b.FirstBaseline,
		OutOfFlow: b.OutOfFlow,
	}
	if el, ok := b.View.(css.Element); ok {
		n.Tag, n.ID = el.TagName(), el.ElementID()
	}
	if run, ok := b.View.Content().(*text.Run); ok {
		n.Text = run.Text
	}
	for _, c := range b.Children {
		n.Children = append(n.Children, node(c))
	}
	return n
}

func rect(r layout.Rect) Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func edges(e css.BoxEdge) *Edges {
	if e == (css.BoxEdge{}) {
		return nil
	}
	return &Edges{Top: e.Top, Right: e.Right, Bottom: e.Bottom, Left: e.Left}
}

// Encode writes r to w in the given format.
func (r *Report) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("unable to encode json report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("unable to encode yaml report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("unable to encode yaml report: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
