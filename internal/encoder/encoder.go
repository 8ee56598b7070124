// Package encoder writes sprite canvases in the formats a sprite image
// directive can name.
package encoder

import (
	"fmt"
	"image"
	"strings"
)

// Format is a sprite image format, named by its file extension.
type Format string

const (
	PNG  Format = "png"
	GIF  Format = "gif"
	JPG  Format = "jpg"
	WebP Format = "webp"
)

// ParseFormat maps a file extension (without the dot) to a Format.
// "jpeg" is accepted as an alias of jpg.
func ParseFormat(ext string) (Format, error) {
	switch f := Format(strings.ToLower(ext)); f {
	case PNG, GIF, JPG, WebP:
		return f, nil
	case "jpeg":
		return JPG, nil
	}
	return PNG, fmt.Errorf("unsupported sprite image format %q", ext)
}

// Encoder encodes a sprite canvas to a specific format.
type Encoder interface {
	Format() Format

	// Encode converts the image to bytes. Paletted images are kept
	// paletted by formats that can store them.
	Encode(img image.Image) ([]byte, error)

	// DirectOnly reports whether the format can only hold direct color,
	// so no color reduction should happen before encoding.
	DirectOnly() bool

	// Extension returns the file extension without dot.
	Extension() string
}
