package encoder

import (
	"bytes"
	"image"
	"image/png"
)

// PNGEncoder encodes sprites to PNG using Go's standard library. An
// *image.Paletted input is written as an indexed PNG.
type PNGEncoder struct{}

func (e *PNGEncoder) Format() Format    { return PNG }
func (e *PNGEncoder) Extension() string { return "png" }
func (e *PNGEncoder) DirectOnly() bool  { return false }

func (e *PNGEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(64 * 1024)

	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
