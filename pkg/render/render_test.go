package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"boxlayout/pkg/css"
	"boxlayout/pkg/images"
	"boxlayout/pkg/layout"
	"boxlayout/pkg/view"
)

var white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func layoutMarkup(t *testing.T, markup string, opts ...view.LoaderOption) *layout.Result {
	t.Helper()
	doc, err := view.NewLoader(nil, opts...).LoadString(markup)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if err := view.NewStyler(css.NewRegistry(nil), nil, nil).Apply(doc); err != nil {
		t.Fatalf("unexpected styling error: %v", err)
	}
	res, err := layout.NewEngine(nil).Layout(doc.Root, layout.Rect{Width: 120, Height: 80})
	if err != nil {
		t.Fatalf("unexpected layout error: %v", err)
	}
	return res
}

func pixel(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

const boxesMarkup = `<root style="width: 100px; height: 60px; background-color: #ff0000">
	<box style="position: absolute; left: 0; top: 0; width: 5px; height: 5px; background-color: #ffff00"/>
	<box style="width: 20px; height: 20px; border-width: 2px; border-color: #00ff00; background-color: #0000ff"/>
	<box style="width: 40px; height: 10px; background-image: linear-gradient(to right, #000000, #ffffff)"/>
	<box style="height: 10px; border-width: 3px; border-style: none"/>
</root>`

func TestPaint_Boxes(t *testing.T) {
	res := layoutMarkup(t, boxesMarkup)
	img := NewPainter(Options{Background: white}, nil, nil).Paint(res, 120, 80)

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"canvas", 110, 70, white},
		{"root background", 90, 50, color.RGBA{R: 0xff, A: 0xff}},
		{"border", 1, 12, color.RGBA{G: 0xff, A: 0xff}},
		{"padding box background", 12, 12, color.RGBA{B: 0xff, A: 0xff}},
		{"positioned box paints last", 1, 1, color.RGBA{R: 0xff, G: 0xff, A: 0xff}},
		{"border style none", 1, 36, color.RGBA{R: 0xff, A: 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pixel(img, tt.x, tt.y); got != tt.want {
				t.Errorf("expected %v at (%d,%d), got %v", tt.want, tt.x, tt.y, got)
			}
		})
	}
}

func TestPaint_Gradient(t *testing.T) {
	res := layoutMarkup(t, boxesMarkup)
	img := NewPainter(Options{Background: white}, nil, nil).Paint(res, 120, 80)

	// gradient box spans x 0..40 at y 24..34
	left, right := pixel(img, 0, 29), pixel(img, 39, 29)
	if left.R > 30 {
		t.Errorf("expected a dark left end, got %v", left)
	}
	if right.R < 220 {
		t.Errorf("expected a light right end, got %v", right)
	}
	if mid := pixel(img, 20, 29); mid.R <= left.R || mid.R >= right.R {
		t.Errorf("expected the middle between both ends, got %v", mid)
	}
}

func TestPaint_Shadow(t *testing.T) {
	res := layoutMarkup(t, `<root style="width: 100px; height: 60px">
		<box style="margin: 10px; width: 20px; height: 20px; box-shadow: 5px 5px #000000"/>
	</root>`)
	img := NewPainter(Options{Background: white}, nil, nil).Paint(res, 120, 80)

	// the box covers 10..30, its hard shadow 15..35
	if got := pixel(img, 33, 33); got != (color.RGBA{A: 0xff}) {
		t.Errorf("expected shadow at (33,33), got %v", got)
	}
	if got := pixel(img, 12, 12); got != white {
		t.Errorf("expected the shadow to stay under the box offset, got %v", got)
	}
}

func TestPaint_Text(t *testing.T) {
	res := layoutMarkup(t, `<root style="width: 100px"><text style="color: #000000">WWW</text></root>`)
	img := NewPainter(Options{Background: white}, nil, nil).Paint(res, 120, 80)

	dark := 0
	for y := range 13 {
		for x := range 21 {
			if pixel(img, x, y).R < 0x80 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("expected glyph pixels inside the text box")
	}
	if got := pixel(img, 60, 6); got != white {
		t.Errorf("expected no ink past the run, got %v", got)
	}
}

func TestPaint_Outlines(t *testing.T) {
	res := layoutMarkup(t, `<root style="width: 50px; height: 20px"/>`)
	red := color.RGBA{R: 0xff, A: 0xff}
	img := NewPainter(Options{Background: white, Outlines: true, OutlineColor: red}, nil, nil).Paint(res, 120, 80)

	if got := pixel(img, 0, 10); got != red {
		t.Errorf("expected outline at the left edge, got %v", got)
	}
	if got := pixel(img, 25, 10); got != white {
		t.Errorf("expected no fill inside the outline, got %v", got)
	}
}

func TestPaint_Bitmap(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			src.Set(x, y, color.RGBA{B: 0xff, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	res := layoutMarkup(t, `<root style="width: 100px">
		<image src="`+uri+`" width="20" height="20"/>
		<image width="20" height="20"/>
	</root>`, view.WithImages(images.NewCache("")))
	img := NewPainter(Options{Background: white}, nil, nil).Paint(res, 120, 80)

	if got := pixel(img, 10, 10); got != (color.RGBA{B: 0xff, A: 0xff}) {
		t.Errorf("expected the scaled bitmap, got %v", got)
	}
	// the second image stacks below and has no source, so it paints the
	// grey placeholder
	if got := pixel(img, 10, 22); got.R != got.B || got == white {
		t.Errorf("expected a placeholder pixel, got %v", got)
	}
}

func TestEncodeAndSavePNG(t *testing.T) {
	res := layoutMarkup(t, boxesMarkup)
	p := NewPainter(Options{Background: white}, nil, nil)

	var buf bytes.Buffer
	if err := p.EncodePNG(&buf, res, 120, 80); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("expected a valid png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("expected 120x80, got %v", b)
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := p.SavePNG(path, res, 120, 80); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %v", err)
	}
}
