package text

import (
	"fmt"
	"sync"
	"unicode"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Measurer reports the metrics used to size text leaves.
type Measurer interface {
	// Width returns the advance width of s at the given font size.
	Width(s string, size float64) float64
	// LineHeight returns the default line box height at size.
	LineHeight(size float64) float64
	// Ascent returns the distance from the top of the line box to the baseline.
	Ascent(size float64) float64
}

// basicSize is the pixel size basicfont.Face7x13 is drawn at.
const basicSize = 13

// BasicMeasurer measures with the fixed 7x13 bitmap face, scaled linearly
// by size/13. It needs no font files, which makes results reproducible.
type BasicMeasurer struct{}

func (BasicMeasurer) Width(s string, size float64) float64 {
	return toFloat(font.MeasureString(basicfont.Face7x13, s)) * size / basicSize
}

func (BasicMeasurer) LineHeight(size float64) float64 {
	return toFloat(basicfont.Face7x13.Metrics().Height) * size / basicSize
}

func (BasicMeasurer) Ascent(size float64) float64 {
	return toFloat(basicfont.Face7x13.Metrics().Ascent) * size / basicSize
}

// FaceMeasurer measures with a TrueType font loaded through gg. Faces are
// loaded lazily, one per size.
type FaceMeasurer struct {
	path  string
	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFaceMeasurer loads the font at path once to make sure it is usable.
func NewFaceMeasurer(path string) (*FaceMeasurer, error) {
	m := &FaceMeasurer{path: path, faces: make(map[float64]font.Face)}
	if _, err := m.face(basicSize); err != nil {
		return nil, err
	}
	return m, nil
}

// Path returns the font file the measurer was created from.
func (m *FaceMeasurer) Path() string {
	return m.path
}

func (m *FaceMeasurer) face(size float64) (font.Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := gg.LoadFontFace(m.path, size)
	if err != nil {
		return nil, fmt.Errorf("unable to load font %q: %w", m.path, err)
	}
	m.faces[size] = f
	return f, nil
}

// Width falls back to the bitmap metrics if the face cannot be loaded at size.
func (m *FaceMeasurer) Width(s string, size float64) float64 {
	f, err := m.face(size)
	if err != nil {
		return BasicMeasurer{}.Width(s, size)
	}
	return toFloat(font.MeasureString(f, s))
}

func (m *FaceMeasurer) LineHeight(size float64) float64 {
	f, err := m.face(size)
	if err != nil {
		return BasicMeasurer{}.LineHeight(size)
	}
	return toFloat(f.Metrics().Height)
}

func (m *FaceMeasurer) Ascent(size float64) float64 {
	f, err := m.face(size)
	if err != nil {
		return BasicMeasurer{}.Ascent(size)
	}
	return toFloat(f.Metrics().Ascent)
}

// Face returns the loaded face for size, for painters that draw with it.
func (m *FaceMeasurer) Face(size float64) (font.Face, error) {
	return m.face(size)
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Words splits text into words for inline flow. Runs of whitespace collapse to
// a single space kept at the end of the preceding word, so laying the words
// out side by side reproduces the text.
func Words(s string) []string {
	var (
		words []string
		cur   []rune
		space bool
	)
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && len(cur) > 0 {
			words = append(words, string(cur)+" ")
			cur = cur[:0]
		}
		space = false
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		if space {
			cur = append(cur, ' ')
		}
		words = append(words, string(cur))
	}
	return words
}

// Run is one measured piece of text. It satisfies the layout content
// contract: a fixed width, one line box of height, and its baseline.
type Run struct {
	Text string
	Size float64
	// LineHeight overrides the measurer's line height when positive.
	LineHeight float64
	Measurer   Measurer
}

func (r *Run) PreferredWidth() float64 {
	return r.Measurer.Width(r.Text, r.Size)
}

func (r *Run) PreferredHeight(float64) float64 {
	if r.LineHeight > 0 {
		return r.LineHeight
	}
	return r.Measurer.LineHeight(r.Size)
}

// Baseline centers the glyphs' line box in the run's line height.
func (r *Run) Baseline() float64 {
	natural := r.Measurer.LineHeight(r.Size)
	return r.Measurer.Ascent(r.Size) + (r.PreferredHeight(0)-natural)/2
}
