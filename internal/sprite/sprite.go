// Package sprite turns a raw mouth image into a paste-ready sprite by
// applying the per-pose transform: horizontal flip, then scale, then
// rotation. The order is fixed; the anchor math in the compose package
// assumes a flip-then-scale-then-rotate sprite.
package sprite

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/liptoon/internal/assets"
)

// Transform applies t to a mouth image and returns the resulting sprite.
// The sprite keeps its alpha channel for masking during compositing. The
// input image is never modified; with an identity transform the input is
// returned as-is.
func Transform(mouth *image.RGBA, t assets.MouthTransform) (*image.RGBA, error) {
	if t.ScaleX <= 0 || t.ScaleY <= 0 {
		return nil, &CompositeError{Op: "scale", Reason: "scale factors must be positive"}
	}
	if t.Rotation < -360 || t.Rotation > 360 {
		return nil, &CompositeError{Op: "rotate", Reason: "rotation must be in [-360, 360] degrees"}
	}

	out := mouth
	if t.FlipX {
		out = flipHorizontal(out)
	}
	if t.ScaleX != 1.0 || t.ScaleY != 1.0 {
		out = scale(out, t.ScaleX, t.ScaleY)
	}
	if t.Rotation != 0 {
		out = rotate(out, t.Rotation)
	}
	return out, nil
}

// flipHorizontal mirrors the image about its vertical center axis.
func flipHorizontal(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := dst.PixOffset(b.Dx()-1-x, y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// scale resizes to (round(w*sx), round(h*sy)) with the CatmullRom kernel.
// Flip semantics live exclusively in flipHorizontal; the factors here are
// always positive magnitudes.
func scale(src *image.RGBA, sx, sy float64) *image.RGBA {
	b := src.Bounds()
	w := int(math.Round(float64(b.Dx()) * sx))
	h := int(math.Round(float64(b.Dy()) * sy))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Rect, src, b, xdraw.Src, nil)
	return dst
}

// rotate spins the image about its own center by -degrees (the stored
// value is counter-clockwise-positive), expanding the canvas so corners
// are never clipped. Newly exposed area stays transparent.
func rotate(src *image.RGBA, degrees float64) *image.RGBA {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	b := src.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	dw := int(math.Ceil(math.Abs(w*cos) + math.Abs(h*sin)))
	dh := int(math.Ceil(math.Abs(w*sin) + math.Abs(h*cos)))
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	// Rotation about the source center, re-centered on the expanded canvas.
	scx, scy := float64(b.Min.X)+w/2, float64(b.Min.Y)+h/2
	dcx, dcy := float64(dw)/2, float64(dh)/2
	m := f64.Aff3{
		cos, -sin, dcx - cos*scx + sin*scy,
		sin, cos, dcy - sin*scx - cos*scy,
	}
	xdraw.CatmullRom.Transform(dst, m, src, b, xdraw.Src, nil)
	return dst
}
