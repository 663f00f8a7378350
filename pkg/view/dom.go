package view

import (
	"errors"
	"image"
	"maps"
	"slices"
	"strings"

	"github.com/beevik/etree"

	"boxlayout/pkg/css"
	"boxlayout/pkg/layout"
)

// ErrHierarchy is returned for insertions that would make a node its own
// ancestor.
var ErrHierarchy = errors.New("node would become its own ancestor")

// TextTag is the tag of word nodes.
const TextTag = "#text"

// ContentKind tells what a leaf holds.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentText
	ContentImage
)

func (k ContentKind) String() string {
	switch k {
	case ContentNone:
		return "none"
	case ContentText:
		return "text"
	case ContentImage:
		return "image"
	}
	return "unknown"
}

// Node is one view: an element, a word of text or an image.
type Node struct {
	Tag   string
	Attrs map[string]string
	Kind  ContentKind
	// Text is the word of a text node, trailing space included.
	Text string
	// Image is the intrinsic size of an image node.
	Image Image

	Children []*Node
	Parent   *Node

	style    *css.Style
	content  layout.Content
	geometry layout.Rect
}

// NewElement creates an element node.
func NewElement(tag string, attrs map[string]string) *Node {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &Node{Tag: tag, Attrs: attrs}
}

// NewText creates a text leaf holding one word.
func NewText(word string) *Node {
	return &Node{Tag: TextTag, Attrs: map[string]string{}, Kind: ContentText, Text: word}
}

// NewImage creates an image leaf of the given intrinsic size.
func NewImage(width, height float64, attrs map[string]string) *Node {
	n := NewElement("image", attrs)
	n.Kind = ContentImage
	n.Image = Image{Width: width, Height: height}
	return n
}

func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

func (n *Node) SetAttr(name, value string) {
	n.Attrs[name] = value
}

// AppendChild adds child as the last child of n, detaching it from its
// previous parent first.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref. A nil or foreign ref appends.
func (n *Node) InsertBefore(child, ref *Node) error {
	if child.Contains(n) {
		return ErrHierarchy
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	if i := slices.Index(n.Children, ref); ref != nil && i >= 0 {
		n.Children = slices.Insert(n.Children, i, child)
		return nil
	}
	n.Children = append(n.Children, child)
	return nil
}

// RemoveChild detaches child and returns it, or nil when child is not a
// child of n.
func (n *Node) RemoveChild(child *Node) *Node {
	i := slices.Index(n.Children, child)
	if i < 0 {
		return nil
	}
	n.Children = slices.Delete(n.Children, i, i+1)
	child.Parent = nil
	return child
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// IndexInParent returns the position of n among its siblings, -1 for the root.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	return slices.Index(n.Parent.Children, n)
}

// Walk visits n and its descendants in document order until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			return
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}

// Find returns the first node with the given id.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Attrs["id"] == id && id != "" {
			found = c
		}
		return found == nil
	})
	return found
}

// TextContent concatenates the words below n.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Kind == ContentText {
			sb.WriteString(c.Text)
		}
		return true
	})
	return sb.String()
}

// Markup serializes n and its subtree as XML.
func (n *Node) Markup() (string, error) {
	if n.Kind == ContentText {
		return n.Text, nil
	}
	doc := etree.NewDocument()
	doc.SetRoot(n.element())
	return doc.WriteToString()
}

func (n *Node) element() *etree.Element {
	el := etree.NewElement(n.Tag)
	for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
		el.CreateAttr(k, n.Attrs[k])
	}
	for _, c := range n.Children {
		if c.Kind == ContentText {
			// words keep their trailing space
			el.CreateText(c.Text)
			continue
		}
		el.AddChild(c.element())
	}
	return el
}

// css.Element

func (n *Node) TagName() string   { return n.Tag }
func (n *Node) ElementID() string { return n.Attrs["id"] }

func (n *Node) HasClass(name string) bool {
	return slices.Contains(strings.Fields(n.Attrs["class"]), name)
}

func (n *Node) ParentElement() css.Element {
	if n.Parent == nil {
		return nil
	}
	return n.Parent
}

// layout.View

func (n *Node) LayoutChildren() []layout.View {
	out := make([]layout.View, len(n.Children))
	for i, c := range n.Children {
		out[i] = c
	}
	return out
}

// IsHidden reports a hidden attribute or display: none.
func (n *Node) IsHidden() bool {
	if _, ok := n.Attrs["hidden"]; ok {
		return true
	}
	if n.style == nil {
		return false
	}
	v := n.style.Get("display")
	return v.IsNone() || v.Is("none")
}

// Style returns the computed style, nil before the styler ran.
func (n *Node) Style() *css.Style { return n.style }

func (n *Node) Content() layout.Content { return n.content }

func (n *Node) SetGeometry(r layout.Rect) { n.geometry = r }

// Geometry returns the content box from the last layout pass.
func (n *Node) Geometry() layout.Rect { return n.geometry }

// Image is fixed-size leaf content. Its baseline is its bottom edge.
// Bitmap is nil for placeholders.
type Image struct {
	Width  float64
	Height float64
	Bitmap image.Image
}

func (i Image) PreferredWidth() float64         { return i.Width }
func (i Image) PreferredHeight(float64) float64 { return i.Height }
func (i Image) Baseline() float64               { return i.Height }
