package encoder

import (
	"bytes"
	"image"

	nativewebp "github.com/HugoSmits86/nativewebp"
)

// WebPEncoder encodes sprites to lossless WebP in pure Go.
type WebPEncoder struct{}

func (e *WebPEncoder) Format() Format    { return WebP }
func (e *WebPEncoder) Extension() string { return "webp" }
func (e *WebPEncoder) DirectOnly() bool  { return true }

func (e *WebPEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
