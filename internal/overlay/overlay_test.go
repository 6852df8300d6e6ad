package overlay

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestStampQR(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	before := append([]byte(nil), img.Pix...)

	out, err := StampQR(img, "https://example.com/liptoon", 64)
	if err != nil {
		t.Fatalf("StampQR failed: %v", err)
	}

	if bytes.Equal(out.Pix, img.Pix) {
		t.Error("Stamped image should differ from the original")
	}
	if !bytes.Equal(img.Pix, before) {
		t.Error("StampQR must not modify its input")
	}

	// The QR sits in the bottom-right corner; the opposite corner is clean.
	if got := out.RGBAAt(0, 0); got != (color.RGBA{128, 128, 128, 128}) {
		t.Errorf("Top-left corner should be untouched, got %v", got)
	}
}

func TestStampQRBadSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	if _, err := StampQR(img, "https://example.com", 0); err == nil {
		t.Error("Expected error for non-positive size")
	}
}
