package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrSizeMismatch is returned when compared images differ in bounds.
var ErrSizeMismatch = errors.New("image sizes differ")

// CompareOptions controls how strict Compare is.
type CompareOptions struct {
	// Tolerance is the largest per-channel difference (0-255) still
	// counted as equal.
	Tolerance int
	// FuzzyRadius lets a pixel match any expected pixel within the radius.
	FuzzyRadius int
	// MaxDifferentPercent accepts images whose share of different pixels
	// does not exceed it.
	MaxDifferentPercent float64
}

// CompareResult describes a comparison. Diff shows matching pixels in grey
// and different pixels in red.
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int
	Diff            *image.RGBA
}

// Compare checks actual against expected pixel by pixel.
func Compare(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return &CompareResult{}, fmt.Errorf("%w: %v and %v", ErrSizeMismatch, bounds, expected.Bounds())
	}

	res := &CompareResult{
		Match:       true,
		TotalPixels: bounds.Dx() * bounds.Dy(),
		Diff:        image.NewRGBA(bounds),
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := rgba8(actual.At(x, y))
			d := channelDiff(a, rgba8(expected.At(x, y)))
			res.MaxDifference = max(res.MaxDifference, d)

			if d <= opts.Tolerance || (opts.FuzzyRadius > 0 && fuzzyMatch(a, expected, x, y, opts)) {
				res.Diff.Set(x, y, color.RGBA{R: a[0], G: a[0], B: a[0], A: 0xff})
				continue
			}
			res.Match = false
			res.DifferentPixels++
			res.Diff.Set(x, y, color.RGBA{R: 0xff, A: 0xff})
		}
	}

	if !res.Match && opts.MaxDifferentPercent > 0 && res.TotalPixels > 0 {
		if float64(res.DifferentPixels)/float64(res.TotalPixels)*100 <= opts.MaxDifferentPercent {
			res.Match = true
		}
	}
	return res, nil
}

func fuzzyMatch(a [4]uint8, expected image.Image, x, y int, opts CompareOptions) bool {
	bounds := expected.Bounds()
	for dy := -opts.FuzzyRadius; dy <= opts.FuzzyRadius; dy++ {
		for dx := -opts.FuzzyRadius; dx <= opts.FuzzyRadius; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(bounds) {
				continue
			}
			if channelDiff(a, rgba8(expected.At(p.X, p.Y))) <= opts.Tolerance {
				return true
			}
		}
	}
	return false
}

func rgba8(c color.Color) [4]uint8 {
	r, g, b, a := c.RGBA()
	return [4]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func channelDiff(a, b [4]uint8) int {
	var d int
	for i := range a {
		d = max(d, abs(int(a[i])-int(b[i])))
	}
	return d
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
