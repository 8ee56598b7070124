package encoder

import (
	"fmt"
	"strings"
)

// Registry holds the sprite encoders by format.
type Registry struct {
	encoders map[Format]Encoder
}

// NewRegistry creates a registry with every built-in encoder. jpegQuality
// is passed to the JPEG encoder; zero selects its default.
func NewRegistry(jpegQuality int) *Registry {
	r := &Registry{
		encoders: make(map[Format]Encoder),
	}

	all := []Encoder{
		&PNGEncoder{},
		&GIFEncoder{},
		&JPEGEncoder{Quality: jpegQuality},
		&WebPEncoder{},
	}
	for _, enc := range all {
		r.encoders[enc.Format()] = enc
	}

	return r
}

// Get returns the encoder for f, or nil if there is none.
func (r *Registry) Get(f Format) Encoder {
	return r.encoders[Format(strings.ToLower(string(f)))]
}

// Available returns all format names in preference order.
func (r *Registry) Available() []Format {
	var result []Format
	for _, f := range []Format{PNG, GIF, JPG, WebP} {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	names := make([]string, len(avail))
	for i, f := range avail {
		names[i] = string(f)
	}
	return fmt.Sprintf("encoders: %s", strings.Join(names, ", "))
}
