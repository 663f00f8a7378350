package render

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCompare(t *testing.T) {
	base := solid(10, 10, white)

	shifted := solid(10, 10, white)
	shifted.Set(3, 3, color.RGBA{R: 0xfd, G: 0xfd, B: 0xfd, A: 0xff})

	dot := solid(10, 10, white)
	dot.Set(5, 5, color.RGBA{A: 0xff})
	dotMoved := solid(10, 10, white)
	dotMoved.Set(6, 5, color.RGBA{A: 0xff})

	tests := []struct {
		name      string
		actual    image.Image
		expected  image.Image
		opts      CompareOptions
		wantMatch bool
		wantDiff  int
	}{
		{"identical", base, base, CompareOptions{}, true, 0},
		{"within tolerance", shifted, base, CompareOptions{Tolerance: 2}, true, 0},
		{"exact", shifted, base, CompareOptions{}, false, 1},
		{"moved dot", dotMoved, dot, CompareOptions{}, false, 2},
		{"moved dot fuzzy", dotMoved, dot, CompareOptions{FuzzyRadius: 1}, true, 0},
		{"moved dot percent", dotMoved, dot, CompareOptions{MaxDifferentPercent: 2}, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compare(tt.actual, tt.expected, tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Match != tt.wantMatch {
				t.Errorf("expected match %v, got %v", tt.wantMatch, res.Match)
			}
			if res.DifferentPixels != tt.wantDiff {
				t.Errorf("expected %d different pixels, got %d", tt.wantDiff, res.DifferentPixels)
			}
			if res.TotalPixels != 100 {
				t.Errorf("expected 100 pixels, got %d", res.TotalPixels)
			}
		})
	}

	if _, err := Compare(base, solid(5, 5, white), CompareOptions{}); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected size mismatch, got %v", err)
	}
}

func TestCompare_DiffImage(t *testing.T) {
	dot := solid(4, 4, white)
	dot.Set(1, 1, color.RGBA{A: 0xff})
	res, err := Compare(dot, solid(4, 4, white), CompareOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := pixel(res.Diff, 1, 1); got != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Errorf("expected a red diff pixel, got %v", got)
	}
	if got := pixel(res.Diff, 0, 0); got != white {
		t.Errorf("expected a grey matching pixel, got %v", got)
	}
}

// Each pair of documents must paint the same picture.
func TestPaint_References(t *testing.T) {
	tests := []struct {
		name      string
		markup    string
		reference string
	}{
		{
			"margin equals parent padding",
			`<root style="width: 100px; height: 60px">
				<box style="margin-left: 10px; margin-top: 10px; width: 20px; height: 20px; background-color: #0000ff"/>
			</root>`,
			`<root style="width: 90px; height: 50px; padding-left: 10px; padding-top: 10px">
				<box style="width: 20px; height: 20px; background-color: #0000ff"/>
			</root>`,
		},
		{
			"flex grow equals explicit widths",
			`<root style="width: 100px; layout: flex">
				<box style="flex: 1 1 0; height: 20px; background-color: #ff0000"/>
				<box style="flex: 1 1 0; height: 20px; background-color: #00ff00"/>
			</root>`,
			`<root style="width: 100px; layout: flex">
				<box style="width: 50px; height: 20px; background-color: #ff0000"/>
				<box style="width: 50px; height: 20px; background-color: #00ff00"/>
			</root>`,
		},
		{
			"collapsed sibling margins",
			`<root style="width: 100px">
				<box style="margin-bottom: 10px; height: 10px; background-color: #000000"/>
				<box style="margin-top: 6px; height: 10px; background-color: #000000"/>
			</root>`,
			`<root style="width: 100px">
				<box style="height: 10px; background-color: #000000"/>
				<box style="margin-top: 10px; height: 10px; background-color: #000000"/>
			</root>`,
		},
	}
	p := NewPainter(Options{Background: white}, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := p.Paint(layoutMarkup(t, tt.markup), 120, 80)
			expected := p.Paint(layoutMarkup(t, tt.reference), 120, 80)
			res, err := Compare(actual, expected, CompareOptions{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.Match {
				t.Errorf("expected identical pictures, %d pixels differ", res.DifferentPixels)
			}
		})
	}
}
