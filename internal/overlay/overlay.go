// Package overlay stamps a QR-code watermark onto frames or poses.
package overlay

import (
	"fmt"
	"image"
	"image/draw"

	qrcode "github.com/skip2/go-qrcode"
)

const margin = 12

// StampQR returns a copy of img with a QR code for url rendered in the
// bottom-right corner. size is the QR edge length in pixels.
func StampQR(img *image.RGBA, url string, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("qr size must be > 0, got %d", size)
	}

	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	code := qr.Image(size)

	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)

	b := out.Bounds()
	origin := image.Pt(b.Max.X-size-margin, b.Max.Y-size-margin)
	draw.Draw(out, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(size, size))},
		code, code.Bounds().Min, draw.Over)
	return out, nil
}
