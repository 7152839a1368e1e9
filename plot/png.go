package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/tsawler/pagelayout/layout"
)

// DefaultScale is the number of pixels per page unit for PNG previews
const DefaultScale = 1.0

// Rasterize draws the layout into an RGBA image, scale pixels per point
func Rasterize(l *layout.Layout, scale float64) (*image.RGBA, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", scale)
	}
	width := int(math.Ceil(l.Width * scale))
	height := int(math.Ceil(l.Height * scale))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("cannot plot page of size %gx%g", l.Width, l.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorPage), image.Point{}, draw.Src)

	r := vector.NewRasterizer(0, 0)
	for _, s := range pageShapes(l, layout.StageLayout) {
		x0, y0 := float32(s.box.X0*scale), float32(s.box.Y0*scale)
		x1, y1 := float32(s.box.X1*scale), float32(s.box.Y1*scale)
		if x1 < x0 || y1 < y0 || (x1 == x0 && y1 == y0) {
			continue
		}

		// at least one pixel so hairlines stay visible
		sw := float32(math.Max(s.width*scale, 1))

		if x1 == x0 || y1 == y0 {
			if s.stroke != nil {
				fillRect(r, img, x0-sw/2, y0-sw/2, x1+sw/2, y1+sw/2, s.stroke)
			}
			continue
		}

		if s.fill != nil {
			fillRect(r, img, x0, y0, x1, y1, s.fill)
		}
		if s.stroke != nil {
			fillRect(r, img, x0, y0, x1, y0+sw, s.stroke)
			fillRect(r, img, x0, y1-sw, x1, y1, s.stroke)
			fillRect(r, img, x0, y0, x0+sw, y1, s.stroke)
			fillRect(r, img, x1-sw, y0, x1, y1, s.stroke)
		}
	}
	return img, nil
}

// RenderPNG writes a PNG preview of the layout
func RenderPNG(w io.Writer, l *layout.Layout, scale float64) error {
	img, err := Rasterize(l, scale)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// fillRect fills an axis-aligned rectangle clipped to dst, rasterizing only
// the covered pixel span
func fillRect(r *vector.Rasterizer, dst draw.Image, x0, y0, x1, y1 float32, c color.Color) {
	b := dst.Bounds()
	x0, x1 = clamp32(x0, float32(b.Min.X), float32(b.Max.X)), clamp32(x1, float32(b.Min.X), float32(b.Max.X))
	y0, y1 = clamp32(y0, float32(b.Min.Y), float32(b.Max.Y)), clamp32(y1, float32(b.Min.Y), float32(b.Max.Y))
	if x1 <= x0 || y1 <= y0 {
		return
	}

	px := image.Rect(
		int(math.Floor(float64(x0))), int(math.Floor(float64(y0))),
		int(math.Ceil(float64(x1))), int(math.Ceil(float64(y1))),
	)
	ox, oy := float32(px.Min.X), float32(px.Min.Y)

	r.Reset(px.Dx(), px.Dy())
	r.MoveTo(x0-ox, y0-oy)
	r.LineTo(x1-ox, y0-oy)
	r.LineTo(x1-ox, y1-oy)
	r.LineTo(x0-ox, y1-oy)
	r.ClosePath()
	r.Draw(dst, px, image.NewUniform(c), image.Point{})
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
