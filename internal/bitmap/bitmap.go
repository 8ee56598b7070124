// Package bitmap holds the in-memory pixel representations shared by the
// quantizer, the color reduction policy and the sprite layout engine.
package bitmap

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Buffer is a width × height grid of packed, non-premultiplied ARGB pixels
// (0xAARRGGBB), stored row-major.
type Buffer struct {
	W, H int
	Pix  []uint32
}

// New returns a fully transparent buffer of the given size.
func New(w, h int) *Buffer {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Buffer{W: w, H: h, Pix: make([]uint32, w*h)}
}

// FromImage converts any decoded image into a Buffer. The image is first
// normalized to NRGBA so paletted, gray and premultiplied sources all
// produce straight alpha.
func FromImage(img image.Image) *Buffer {
	n := imaging.Clone(img)
	w, h := n.Rect.Dx(), n.Rect.Dy()
	b := New(w, h)
	for y := 0; y < h; y++ {
		row := n.Pix[y*n.Stride : y*n.Stride+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4]
			b.Pix[y*w+x] = ARGB(p[3], p[0], p[1], p[2])
		}
	}
	return b
}

// Image returns the buffer as an *image.NRGBA.
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			a, r, g, bl := Channels(b.Pix[y*b.W+x])
			i := y*img.Stride + x*4
			img.Pix[i+0] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = bl
			img.Pix[i+3] = a
		}
	}
	return img
}

// At returns the pixel at (x, y).
func (b *Buffer) At(x, y int) uint32 { return b.Pix[y*b.W+x] }

// Set stores c at (x, y).
func (b *Buffer) Set(x, y int, c uint32) { b.Pix[y*b.W+x] = c }

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{W: b.W, H: b.H, Pix: make([]uint32, len(b.Pix))}
	copy(c.Pix, b.Pix)
	return c
}

// Draw copies src into b with its top-left corner at (x, y). Pixels are
// replaced, not blended, and anything falling outside b is clipped.
func (b *Buffer) Draw(src *Buffer, x, y int) {
	for sy := 0; sy < src.H; sy++ {
		dy := y + sy
		if dy < 0 || dy >= b.H {
			continue
		}
		for sx := 0; sx < src.W; sx++ {
			dx := x + sx
			if dx < 0 || dx >= b.W {
				continue
			}
			b.Pix[dy*b.W+dx] = src.Pix[sy*src.W+sx]
		}
	}
}

// Equal reports whether b and o have the same size and the same pixels,
// treating every fully transparent pixel as identical regardless of its
// color channels.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == o {
		return true
	}
	if b == nil || o == nil || b.W != o.W || b.H != o.H {
		return false
	}
	for i, p := range b.Pix {
		if Visible(p) != Visible(o.Pix[i]) {
			return false
		}
	}
	return true
}

// Visible maps a fully transparent pixel to 0 and leaves others unchanged.
func Visible(p uint32) uint32 {
	if p>>24 == 0 {
		return 0
	}
	return p
}

// ARGB packs channels into a pixel.
func ARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Channels unpacks a pixel.
func Channels(p uint32) (a, r, g, b uint8) {
	return uint8(p >> 24), uint8(p >> 16), uint8(p >> 8), uint8(p)
}

// RGB returns the pixel with its alpha bits cleared.
func RGB(p uint32) uint32 { return p & 0xffffff }

// IndexBuffer holds palette indices for a width × height image.
type IndexBuffer struct {
	W, H int
	Pix  []int32
}

// NewIndex returns a zero-filled index buffer.
func NewIndex(w, h int) *IndexBuffer {
	return &IndexBuffer{W: w, H: h, Pix: make([]int32, w*h)}
}

// Palette is an ordered list of opaque colors.
type Palette []color.RGBA

// Expand maps every index back to its palette color, producing an opaque
// buffer.
func (p Palette) Expand(ix *IndexBuffer) *Buffer {
	b := New(ix.W, ix.H)
	for i, n := range ix.Pix {
		c := p[n]
		b.Pix[i] = ARGB(0xff, c.R, c.G, c.B)
	}
	return b
}
