package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"slices"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"boxlayout/pkg/css"
	"boxlayout/pkg/layout"
	"boxlayout/pkg/text"
	"boxlayout/pkg/view"
)

// FaceSource supplies font faces for drawing text runs.
type FaceSource interface {
	Face(size float64) (font.Face, error)
}

// BasicFaces draws every size with the 7x13 bitmap face.
type BasicFaces struct{}

func (BasicFaces) Face(float64) (font.Face, error) { return basicfont.Face7x13, nil }

// Options control what is painted besides the boxes themselves.
type Options struct {
	Background color.RGBA
	// Outlines strokes every content box, for debugging geometry.
	Outlines     bool
	OutlineColor color.RGBA
}

// Painter rasterizes laid out boxes: shadows, backgrounds, gradients,
// borders, text and images.
type Painter struct {
	log   *zap.Logger
	opts  Options
	faces FaceSource
}

// NewPainter creates a painter. A nil faces selects BasicFaces.
func NewPainter(opts Options, faces FaceSource, log *zap.Logger) *Painter {
	if log == nil {
		log = zap.NewNop()
	}
	if faces == nil {
		faces = BasicFaces{}
	}
	return &Painter{log: log.Named("render"), opts: opts, faces: faces}
}

// Paint draws res on a canvas of the given size.
func (p *Painter) Paint(res *layout.Result, width, height int) image.Image {
	dc := gg.NewContext(width, height)
	setColor(dc, p.opts.Background)
	dc.Clear()

	// in-flow boxes first, positioned boxes above them, document order otherwise
	boxes := slices.Clone(res.Boxes)
	slices.SortStableFunc(boxes, func(a, b *layout.Box) int {
		return paintLevel(a) - paintLevel(b)
	})
	for _, b := range boxes {
		p.drawBox(dc, b)
	}
	p.log.Debug("Painted boxes", zap.Int("boxes", len(boxes)), zap.Int("width", width), zap.Int("height", height))
	return dc.Image()
}

// EncodePNG paints res and writes it as PNG.
func (p *Painter) EncodePNG(w io.Writer, res *layout.Result, width, height int) error {
	dc := gg.NewContextForImage(p.Paint(res, width, height))
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("unable to encode png: %w", err)
	}
	return nil
}

// SavePNG paints res into the file at path.
func (p *Painter) SavePNG(path string, res *layout.Result, width, height int) error {
	dc := gg.NewContextForImage(p.Paint(res, width, height))
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("unable to save png: %w", err)
	}
	return nil
}

func paintLevel(b *layout.Box) int {
	if b.OutOfFlow {
		return 1
	}
	return 0
}

func (p *Painter) drawBox(dc *gg.Context, b *layout.Box) {
	style := b.Style()

	p.drawShadows(dc, b, style)

	pad := b.PaddingBox()
	if bg, ok := style.ColorOf("background-color"); ok && bg.A > 0 && pad.Width > 0 && pad.Height > 0 {
		setColor(dc, bg)
		dc.DrawRectangle(pad.X, pad.Y, pad.Width, pad.Height)
		dc.Fill()
	}
	if style.Gradient != nil {
		p.drawGradient(dc, style.Gradient, pad)
	}

	p.drawBorders(dc, b, style)

	switch c := b.View.Content().(type) {
	case *text.Run:
		p.drawText(dc, b, c, style)
	case view.Image:
		if c.Bitmap != nil {
			drawBitmap(dc, c.Bitmap, b.Abs)
		} else {
			drawImagePlaceholder(dc, b.Abs)
		}
	}

	if p.opts.Outlines {
		setColor(dc, p.opts.OutlineColor)
		dc.SetLineWidth(1)
		dc.DrawRectangle(b.Abs.X+0.5, b.Abs.Y+0.5, max(b.Abs.Width-1, 0), max(b.Abs.Height-1, 0))
		dc.Stroke()
	}
}

// drawShadows paints outer shadows under the border box, last shadow first.
// Blur is approximated by concentric rectangles of decreasing opacity.
func (p *Painter) drawShadows(dc *gg.Context, b *layout.Box, style *css.Style) {
	border := b.BorderBox()
	for i := len(style.Shadows) - 1; i >= 0; i-- {
		s := style.Shadows[i]
		if s.Inset {
			continue
		}
		r := layout.Rect{
			X:      border.X + s.OffsetX - s.Spread,
			Y:      border.Y + s.OffsetY - s.Spread,
			Width:  border.Width + 2*s.Spread,
			Height: border.Height + 2*s.Spread,
		}
		if r.Width <= 0 || r.Height <= 0 {
			continue
		}
		steps := int(math.Ceil(s.Blur / 2))
		if steps < 1 {
			setColor(dc, s.Color)
			dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
			dc.Fill()
			continue
		}
		steps = min(steps, 10)
		c := s.Color
		c.A = uint8(float64(s.Color.A) / float64(steps))
		for step := steps; step > 0; step-- {
			grow := s.Blur / 2 * float64(step) / float64(steps)
			setColor(dc, c)
			dc.DrawRectangle(r.X-grow, r.Y-grow, r.Width+2*grow, r.Height+2*grow)
			dc.Fill()
		}
	}
}

func (p *Painter) drawGradient(dc *gg.Context, g *css.Gradient, r layout.Rect) {
	if len(g.Stops) < 2 || r.Width <= 0 || r.Height <= 0 {
		return
	}
	x0, y0, x1, y1 := g.Line(r.X, r.Y, r.Width, r.Height)
	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	for i, off := range g.Offsets(math.Hypot(x1-x0, y1-y0)) {
		grad.AddColorStop(off, nrgba(g.Stops[i].Color))
	}
	dc.SetFillStyle(grad)
	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	dc.Fill()
}

func (p *Painter) drawBorders(dc *gg.Context, b *layout.Box, style *css.Style) {
	if bs := style.Get("border-style"); bs.IsNone() || bs.Is("hidden") {
		return
	}
	col, ok := style.ColorOf("border-color")
	if !ok || col.A == 0 {
		return
	}
	bb, e := b.BorderBox(), b.Border
	setColor(dc, col)
	sides := []layout.Rect{
		{X: bb.X, Y: bb.Y, Width: bb.Width, Height: e.Top},
		{X: bb.X, Y: bb.Y + bb.Height - e.Bottom, Width: bb.Width, Height: e.Bottom},
		{X: bb.X, Y: bb.Y + e.Top, Width: e.Left, Height: bb.Height - e.Top - e.Bottom},
		{X: bb.X + bb.Width - e.Right, Y: bb.Y + e.Top, Width: e.Right, Height: bb.Height - e.Top - e.Bottom},
	}
	for _, s := range sides {
		if s.Width > 0 && s.Height > 0 {
			dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
			dc.Fill()
		}
	}
}

func (p *Painter) drawText(dc *gg.Context, b *layout.Box, run *text.Run, style *css.Style) {
	face, err := p.faces.Face(run.Size)
	if err != nil {
		p.log.Warn("Unable to load font face, skipping text", zap.Float64("size", run.Size), zap.Error(err))
		return
	}
	col, ok := style.ColorOf("color")
	if !ok {
		return
	}
	dc.SetFontFace(face)
	setColor(dc, col)
	dc.DrawString(run.Text, b.Abs.X, b.Abs.Y+b.FirstBaseline)
}

// drawBitmap scales img to fill r.
func drawBitmap(dc *gg.Context, img image.Image, r layout.Rect) {
	bounds := img.Bounds()
	if r.Width <= 0 || r.Height <= 0 || bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}
	dc.Push()
	dc.Translate(r.X, r.Y)
	dc.Scale(r.Width/float64(bounds.Dx()), r.Height/float64(bounds.Dy()))
	dc.DrawImage(img, -bounds.Min.X, -bounds.Min.Y)
	dc.Pop()
}

func drawImagePlaceholder(dc *gg.Context, r layout.Rect) {
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	dc.SetRGBA(0.8, 0.8, 0.8, 1)
	dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	dc.Fill()
	dc.SetRGBA(0.5, 0.5, 0.5, 1)
	dc.SetLineWidth(1)
	dc.DrawLine(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	dc.DrawLine(r.X+r.Width, r.Y, r.X, r.Y+r.Height)
	dc.Stroke()
}

// setColor sets a straight (non premultiplied) color as produced by the
// style parser.
func setColor(dc *gg.Context, c color.RGBA) {
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
}

func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
