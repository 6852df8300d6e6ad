// Package compose pastes transformed mouth sprites onto pose images.
package compose

import (
	"image"
	"image/draw"
	"math"

	"github.com/ivlev/liptoon/internal/assets"
)

// Compose pastes a sprite onto a pose and returns the finished frame.
// (t.X, t.Y) is the sprite center in pose-canvas coordinates, so the paste
// origin is (round(x - w/2), round(y - h/2)). The sprite's alpha channel is
// the paste mask; parts falling outside the canvas are clipped silently.
// The pose is never mutated, every call allocates a fresh frame.
func Compose(pose *image.RGBA, spr *image.RGBA, t assets.MouthTransform) *image.RGBA {
	frame := image.NewRGBA(pose.Bounds())
	copy(frame.Pix, pose.Pix)

	w, h := spr.Bounds().Dx(), spr.Bounds().Dy()
	x := int(math.Round(t.X - float64(w)/2))
	y := int(math.Round(t.Y - float64(h)/2))

	draw.Draw(frame, image.Rect(x, y, x+w, y+h), spr, spr.Bounds().Min, draw.Over)
	return frame
}

// Over draws img over a copy of the background, anchored at the canvas
// origin. Used when the animation is rendered on top of a backdrop; the
// background itself is left untouched.
func Over(background, img *image.RGBA) *image.RGBA {
	frame := image.NewRGBA(background.Bounds())
	copy(frame.Pix, background.Pix)
	draw.Draw(frame, img.Bounds(), img, img.Bounds().Min, draw.Over)
	return frame
}
