package layout

import (
	"errors"
	"math"

	"github.com/hazendaz/smartsprites-sub000/internal/bitmap"
	"github.com/hazendaz/smartsprites-sub000/internal/hasher"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

// ErrEmptySprite is returned when a sprite would have no area.
var ErrEmptySprite = errors.New("sprite has zero width or height")

// LeastCommonMultiple returns the least common multiple of the shared
// dimension of every repeat-aligned image, or 1 when there are none.
func LeastCommonMultiple(images []Image, o Orientation) int {
	m := 1
	for _, img := range images {
		if img.Alignment != Repeat {
			continue
		}
		size := img.RequiredHeight(o)
		if o == Vertical {
			size = img.RequiredWidth(o)
		}
		if size > 0 {
			m = lcm(m, size)
		}
	}
	return m
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

// Layout renders images into a single sprite stacked along o. Images with
// identical renderings share one slot. scale is the ratio between sprite
// pixels and CSS pixels; a non-positive scale is reported and replaced
// with 1. Layout returns ErrEmptySprite when nothing can be drawn.
func Layout(spriteID string, images []Image, o Orientation, scale float64, log *message.Log) (*Sprite, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		log.Warning(message.InvalidScale, scale, spriteID)
		scale = 1
	}

	images = append([]Image(nil), images...)
	for i := range images {
		images[i].Margins = images[i].Margins.Normalize(log)
		images[i].Alignment = images[i].Alignment.Fit(o)
	}

	// Step 1: shared dimension.
	multiple := LeastCommonMultiple(images, o)
	dimension := multiple
	for _, img := range images {
		size := img.RequiredHeight(o)
		if o == Vertical {
			size = img.RequiredWidth(o)
		}
		if size > dimension {
			dimension = size
		}
	}
	if r := dimension % multiple; r != 0 {
		dimension += multiple - r
	}

	// Step 2: render, deduplicate and assign offsets.
	s := &Sprite{Orientation: o, Scale: scale, Placed: make([]Placed, len(images))}
	seen := make(map[uint64][]int)
	var unique []int
	cursor := 0
	for i, img := range images {
		r := render(img, o, dimension)
		p := Placed{Rendered: r, Offset: -1}

		h := hasher.Bitmap(r)
		for _, j := range seen[h] {
			if s.Placed[j].Rendered.Equal(r) {
				p.Offset = s.Placed[j].Offset
				p.Shared = true
				break
			}
		}
		if !p.Shared {
			p.Offset = cursor
			seen[h] = append(seen[h], i)
			unique = append(unique, i)
			if o == Vertical {
				cursor += r.H
			} else {
				cursor += r.W
			}
		}

		w, hgt := img.RequiredWidth(o), img.RequiredHeight(o)
		if fractional(w, scale) || fractional(hgt, scale) {
			p.Fractional = true
			log.Warning(message.ImageFractionalScaleValue, img.ID, spriteID, w, hgt, scale)
		}
		p.ScaledOffset = int(math.Round(float64(p.Offset) / scale))
		s.Placed[i] = p
	}

	// Step 3: canvas size.
	width, height := dimension, cursor
	if o == Horizontal {
		width, height = cursor, dimension
	}
	if width == 0 || height == 0 {
		return nil, ErrEmptySprite
	}

	// Step 4: the canvas itself must scale to whole pixels.
	if fractional(width, scale) || fractional(height, scale) {
		s.Fractional = true
		log.Warning(message.FractionalScaleValue, spriteID, width, height, scale)
	}

	// Step 5: composite.
	s.Canvas = bitmap.New(width, height)
	for _, i := range unique {
		p := s.Placed[i]
		if o == Vertical {
			s.Canvas.Draw(p.Rendered, 0, p.Offset)
		} else {
			s.Canvas.Draw(p.Rendered, p.Offset, 0)
		}
	}
	return s, nil
}

func fractional(size int, scale float64) bool {
	v := float64(size) / scale
	return math.Abs(v-math.Round(v)) > 1e-9
}

// render draws img into a bitmap spanning the full shared dimension.
func render(img Image, o Orientation, dimension int) *bitmap.Buffer {
	src, m := img.Bitmap, img.Margins
	if o == Vertical {
		out := bitmap.New(dimension, img.RequiredHeight(o))
		switch img.Alignment {
		case Right:
			out.Draw(src, dimension-m.Right-src.W, m.Top)
		case Center:
			out.Draw(src, (out.W-src.W)/2, m.Top)
		case Repeat:
			for x := 0; src.W > 0 && x < dimension; x += src.W {
				out.Draw(src, x, m.Top)
			}
		default:
			out.Draw(src, m.Left, m.Top)
		}
		return out
	}

	out := bitmap.New(img.RequiredWidth(o), dimension)
	switch img.Alignment {
	case Bottom:
		out.Draw(src, m.Left, dimension-m.Bottom-src.H)
	case Center:
		out.Draw(src, m.Left, (out.H-src.H)/2)
	case Repeat:
		for y := 0; src.H > 0 && y < dimension; y += src.H {
			out.Draw(src, m.Left, y)
		}
	default:
		out.Draw(src, m.Left, m.Top)
	}
	return out
}
