package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// JPEGEncoder encodes sprites to JPEG. JPEG has no alpha channel, so the
// sprite is first composited over an opaque white background.
type JPEGEncoder struct {
	// Quality in 1-100; zero means 90.
	Quality int
}

func (e *JPEGEncoder) Format() Format    { return JPG }
func (e *JPEGEncoder) Extension() string { return "jpg" }
func (e *JPEGEncoder) DirectOnly() bool  { return true }

func (e *JPEGEncoder) Encode(img image.Image) ([]byte, error) {
	quality := e.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	b := img.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	buf.Grow(64 * 1024)
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
