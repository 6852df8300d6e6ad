// Package background loads the optional backdrop the animation is rendered
// over: a plain image file or a rendered PDF page.
package background

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	xdraw "golang.org/x/image/draw"
)

type Source interface {
	Render(dpi int) (image.Image, error)
	Close() error
}

// Open picks a source by extension: .pdf renders the given page, anything
// else is decoded as an image file. page is zero-based.
func Open(path string, page int) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return newPDFPage(path, page)
	}
	return &imageFile{path: path}, nil
}

type imageFile struct {
	path string
}

func (s *imageFile) Render(dpi int) (image.Image, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return img, nil
}

func (s *imageFile) Close() error { return nil }

type pdfPage struct {
	doc  *fitz.Document
	path string
	page int
}

func newPDFPage(path string, page int) (*pdfPage, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if page < 0 || page >= doc.NumPage() {
		doc.Close()
		return nil, fmt.Errorf("%s: page %d out of range (document has %d)", path, page, doc.NumPage())
	}
	return &pdfPage{doc: doc, path: path, page: page}, nil
}

func (s *pdfPage) Render(dpi int) (image.Image, error) {
	return s.doc.ImageDPI(s.page, float64(dpi))
}

func (s *pdfPage) Close() error { return s.doc.Close() }

// Fit rescales a backdrop to the pose canvas so frames composited over it
// keep the canvas dimensions the encoder expects.
func Fit(img image.Image, canvas image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, canvas.Dx(), canvas.Dy()))
	if img.Bounds().Dx() == canvas.Dx() && img.Bounds().Dy() == canvas.Dy() {
		xdraw.Copy(dst, image.Point{}, img, img.Bounds(), xdraw.Src, nil)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Rect, img, img.Bounds(), xdraw.Src, nil)
	return dst
}
