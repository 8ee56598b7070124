package encoder

import (
	"bytes"
	"image"
	"image/gif"
)

// GIFEncoder encodes sprites to GIF. Callers are expected to pass an
// *image.Paletted of at most 256 colors; anything else is quantized by
// the standard library with the Plan9 palette.
type GIFEncoder struct{}

func (e *GIFEncoder) Format() Format    { return GIF }
func (e *GIFEncoder) Extension() string { return "gif" }
func (e *GIFEncoder) DirectOnly() bool  { return false }

func (e *GIFEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, &gif.Options{NumColors: 256}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
