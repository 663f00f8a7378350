package view

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"boxlayout/pkg/text"
)

var (
	// ErrNoRoot is returned for markup without a root element.
	ErrNoRoot = errors.New("markup has no root element")
	// ErrBadAttribute is returned for attributes that do not parse.
	ErrBadAttribute = errors.New("invalid attribute")
)

// Document is a loaded view tree with the stylesheets and scripts found in
// its markup.
type Document struct {
	Root    *Node
	Sheets  []string
	Scripts []string
}

// Loader reads XML markup into view trees. Every element becomes a view,
// except <style> and <script> whose text is collected on the document.
// Character data inside <text> elements becomes one leaf per word and
// <image width= height=> becomes a fixed-size leaf.
type Loader struct {
	log    *zap.Logger
	images ImageSource
}

// ImageSource decodes the bitmap named by an image src attribute.
type ImageSource interface {
	Load(src string) (image.Image, error)
}

type LoaderOption func(*Loader)

// WithImages resolves <image src=> through source. Missing width or height
// attributes are then taken from the bitmap, keeping its aspect ratio when
// only one of them is given.
func WithImages(source ImageSource) LoaderOption {
	return func(l *Loader) { l.images = source }
}

func NewLoader(log *zap.Logger, opts ...LoaderOption) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loader{log: log.Named("view-loader")}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads markup from path.
func (l *Loader) LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open markup: %w", err)
	}
	defer f.Close()
	return l.Load(f)
}

// LoadString reads markup from a string.
func (l *Loader) LoadString(markup string) (*Document, error) {
	return l.Load(strings.NewReader(markup))
}

func (l *Loader) Load(r io.Reader) (*Document, error) {
	xml := etree.NewDocument()
	if _, err := xml.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read markup: %w", err)
	}
	root := xml.Root()
	if root == nil {
		return nil, ErrNoRoot
	}

	doc := &Document{}
	node, err := l.convert(doc, root, false)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: <%s> cannot be the root", ErrNoRoot, root.Tag)
	}
	doc.Root = node

	var count int
	node.Walk(func(*Node) bool { count++; return true })
	l.log.Debug("Markup loaded",
		zap.Int("nodes", count),
		zap.Int("stylesheets", len(doc.Sheets)),
		zap.Int("scripts", len(doc.Scripts)))
	return doc, nil
}

// convert turns el into a node, or returns nil for elements that are
// collected on the document instead.
func (l *Loader) convert(doc *Document, el *etree.Element, inText bool) (*Node, error) {
	attrs := make(map[string]string, len(el.Attr))
	for _, a := range el.Attr {
		attrs[a.Key] = a.Value
	}

	switch el.Tag {
	case "style":
		doc.Sheets = append(doc.Sheets, el.Text())
		return nil, nil
	case "script":
		doc.Scripts = append(doc.Scripts, el.Text())
		return nil, nil
	case "image":
		return l.imageNode(el, attrs)
	case "text":
		inText = true
	}

	node := NewElement(el.Tag, attrs)
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			child, err := l.convert(doc, t, inText)
			if err != nil {
				return nil, err
			}
			if child != nil {
				// a freshly built child cannot create a cycle
				_ = node.AppendChild(child)
			}
		case *etree.CharData:
			if !inText {
				if strings.TrimSpace(t.Data) != "" {
					l.log.Debug("Ignoring character data outside <text>", zap.String("element", el.Tag))
				}
				continue
			}
			for _, word := range text.Words(t.Data) {
				_ = node.AppendChild(NewText(word))
			}
		}
	}
	return node, nil
}

func (l *Loader) imageNode(el *etree.Element, attrs map[string]string) (*Node, error) {
	w, err := floatAttr(el, "width")
	if err != nil {
		return nil, err
	}
	h, err := floatAttr(el, "height")
	if err != nil {
		return nil, err
	}
	src := el.SelectAttrValue("src", "")
	if src == "" || l.images == nil {
		return NewImage(w, h, attrs), nil
	}

	bitmap, err := l.images.Load(src)
	if err != nil {
		return nil, fmt.Errorf("unable to load <image src=%q>: %w", src, err)
	}
	iw, ih := float64(bitmap.Bounds().Dx()), float64(bitmap.Bounds().Dy())
	_, hasW := attrs["width"]
	_, hasH := attrs["height"]
	switch {
	case !hasW && !hasH:
		w, h = iw, ih
	case !hasW && ih > 0:
		w = h * iw / ih
	case !hasH && iw > 0:
		h = w * ih / iw
	}
	n := NewImage(w, h, attrs)
	n.Image.Bitmap = bitmap
	return n, nil
}

func floatAttr(el *etree.Element, name string) (float64, error) {
	raw := el.SelectAttrValue(name, "0")
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(raw), "px"), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: <%s %s=%q>", ErrBadAttribute, el.Tag, name, raw)
	}
	return v, nil
}
