// Package colorreduce decides whether a sprite can be stored in indexed
// color and performs the lossless remap or the lossy quantization.
package colorreduce

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ericpauley/go-quantize/quantize"

	"github.com/hazendaz/smartsprites-sub000/internal/bitmap"
	"github.com/hazendaz/smartsprites-sub000/internal/octree"
)

// MaxIndexedColors is the number of opaque colors an indexed sprite can
// hold; palette index 0 is kept for the transparent entry.
const MaxIndexedColors = 255

var (
	ErrTooManyColors   = errors.New("too many colors for indexed color")
	ErrHasTranslucency = errors.New("image cannot contain translucent areas")
)

// White is the matte used when none is configured.
var White = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Info summarizes the colors of a bitmap.
type Info struct {
	// DistinctColors counts RGB values of pixels that are not fully
	// transparent.
	DistinctColors int
	// PartialTransparency is set when some alpha is neither 0 nor 255.
	PartialTransparency bool
	// Transparency is set when some alpha is below 255.
	Transparency bool
}

// Lossless reports whether the bitmap fits an indexed palette exactly.
func (i Info) Lossless() bool {
	return !i.PartialTransparency && i.DistinctColors <= MaxIndexedColors
}

// Evaluate scans b once.
func Evaluate(b *bitmap.Buffer) Info {
	var info Info
	seen := make(map[uint32]struct{})
	for _, p := range b.Pix {
		a := p >> 24
		if a != 0xff {
			info.Transparency = true
			if a != 0 {
				info.PartialTransparency = true
			}
		}
		if a != 0 {
			seen[bitmap.RGB(p)] = struct{}{}
		}
	}
	info.DistinctColors = len(seen)
	return info
}

// Reduce converts b to a paletted image without changing any visible
// pixel. Index 0 is fully transparent and the remaining entries follow
// first-seen order. It fails when b has partial transparency or more than
// MaxIndexedColors colors.
func Reduce(b *bitmap.Buffer) (*image.Paletted, error) {
	info := Evaluate(b)
	if info.PartialTransparency {
		return nil, ErrHasTranslucency
	}
	if info.DistinctColors > MaxIndexedColors {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyColors, info.DistinctColors, MaxIndexedColors)
	}

	pal := make(color.Palette, 1, info.DistinctColors+1)
	pal[0] = color.NRGBA{}
	index := make(map[uint32]uint8, info.DistinctColors)

	out := image.NewPaletted(image.Rect(0, 0, b.W, b.H), pal)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			p := b.At(x, y)
			if p>>24 == 0 {
				continue
			}
			rgb := bitmap.RGB(p)
			n, ok := index[rgb]
			if !ok {
				_, r, g, bl := bitmap.Channels(p)
				out.Palette = append(out.Palette, color.NRGBA{R: r, G: g, B: bl, A: 0xff})
				n = uint8(len(out.Palette) - 1)
				index[rgb] = n
			}
			out.Pix[y*out.Stride+x] = n
		}
	}
	return out, nil
}

// Matte composites b over a solid background, leaving every pixel opaque.
func Matte(b *bitmap.Buffer, c color.NRGBA) *bitmap.Buffer {
	c.A = 0xff
	bg := imaging.New(b.W, b.H, c)
	return bitmap.FromImage(imaging.Overlay(bg, b.Image(), image.Pt(0, 0), 1.0))
}

// Quantizer selects the palette builder used for lossy reduction.
type Quantizer int

const (
	Octree Quantizer = iota
	MedianCut
)

func (q Quantizer) String() string {
	if q == MedianCut {
		return "mediancut"
	}
	return "octree"
}

// ParseQuantizer accepts "octree" and "mediancut".
func ParseQuantizer(s string) (Quantizer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "octree":
		return Octree, nil
	case "mediancut", "median-cut":
		return MedianCut, nil
	}
	return Octree, fmt.Errorf("unknown quantizer %q", s)
}

// Stats describes a lossy reduction.
type Stats struct {
	Colors       int
	ForcedPrunes int
}

// Quantize mattes b and reduces it to at most maxColors opaque colors.
// The returned palette has one extra leading entry, the matte color with
// zero alpha, which every fully transparent pixel of b maps to.
func Quantize(b *bitmap.Buffer, matte color.NRGBA, maxColors int, q Quantizer) (*image.Paletted, Stats) {
	return quantizeLimit(b, matte, maxColors, q, octree.MaxNodes)
}

func quantizeLimit(b *bitmap.Buffer, matte color.NRGBA, maxColors int, q Quantizer, maxNodes int) (*image.Paletted, Stats) {
	flat := Matte(b, matte)
	rect := image.Rect(0, 0, b.W, b.H)

	var (
		colors color.Palette
		idx    []int32
		st     Stats
	)
	switch q {
	case MedianCut:
		src := flat.Image()
		colors = quantize.MedianCutQuantizer{}.Quantize(make(color.Palette, 0, maxColors), src)
		tmp := image.NewPaletted(rect, colors)
		draw.Draw(tmp, rect, src, image.Point{}, draw.Src)
		idx = make([]int32, len(tmp.Pix))
		for y := 0; y < b.H; y++ {
			for x := 0; x < b.W; x++ {
				idx[y*b.W+x] = int32(tmp.Pix[y*tmp.Stride+x])
			}
		}
	default:
		s := octree.ClassifyLimit(flat, maxColors, maxNodes)
		s.Reduce()
		p, ix := s.Assign(true)
		st.ForcedPrunes = s.ForcedPrunes()
		colors = make(color.Palette, len(p))
		for i, c := range p {
			colors[i] = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
		}
		idx = ix.Pix
	}
	st.Colors = len(colors)

	pal := make(color.Palette, 0, len(colors)+1)
	pal = append(pal, color.NRGBA{R: matte.R, G: matte.G, B: matte.B})
	pal = append(pal, colors...)

	out := image.NewPaletted(rect, pal)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.At(x, y)>>24 == 0 {
				continue
			}
			out.Pix[y*out.Stride+x] = uint8(idx[y*b.W+x] + 1)
		}
	}
	return out, st
}
