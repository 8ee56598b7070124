// Package layout stacks individual images into one sprite canvas.
//
// A vertical sprite stacks images top to bottom; its width is shared by
// every image and is a multiple of the width of each repeat-aligned image,
// so that tiled backgrounds wrap seamlessly. Horizontal sprites are the
// transpose.
package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hazendaz/smartsprites-sub000/internal/bitmap"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

// Orientation is the stacking direction of a sprite.
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseOrientation accepts "vertical" and "horizontal".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical":
		return Vertical, nil
	case "horizontal":
		return Horizontal, nil
	}
	return Vertical, fmt.Errorf("unknown sprite layout %q", s)
}

// Alignment positions an image across the sprite's shared dimension.
type Alignment int

const (
	Left Alignment = iota
	Right
	Top
	Bottom
	Center
	Repeat
)

var alignmentNames = [...]string{"left", "right", "top", "bottom", "center", "repeat"}

func (a Alignment) String() string {
	if a < 0 || int(a) >= len(alignmentNames) {
		return "Alignment(" + strconv.Itoa(int(a)) + ")"
	}
	return alignmentNames[a]
}

// ParseAlignment accepts the CSS keyword of an alignment.
func ParseAlignment(s string) (Alignment, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range alignmentNames {
		if s == n {
			return Alignment(i), nil
		}
	}
	return Left, fmt.Errorf("unknown alignment %q", s)
}

// Default returns the leading-edge alignment for o.
func Default(o Orientation) Alignment {
	if o == Horizontal {
		return Top
	}
	return Left
}

// Fit maps a to an alignment meaningful for o. Alignments along the
// stacking axis collapse to the leading edge.
func (a Alignment) Fit(o Orientation) Alignment {
	switch o {
	case Vertical:
		if a == Top || a == Bottom {
			return Left
		}
	case Horizontal:
		if a == Left || a == Right {
			return Top
		}
	}
	return a
}

// Margins are the transparent padding around an image, in pixels.
type Margins struct {
	Left, Right, Top, Bottom int
}

// Normalize replaces negative margins with zero, reporting each one.
func (m Margins) Normalize(log *message.Log) Margins {
	fix := func(v *int) {
		if *v < 0 {
			log.Warning(message.IgnoringNegativeMarginValue, strconv.Itoa(*v)+"px")
			*v = 0
		}
	}
	fix(&m.Left)
	fix(&m.Right)
	fix(&m.Top)
	fix(&m.Bottom)
	return m
}

// Image is one input of a sprite.
type Image struct {
	ID        string
	Bitmap    *bitmap.Buffer
	Alignment Alignment
	Margins   Margins
}

// RequiredWidth is the width the image occupies in a sprite of
// orientation o. Horizontal margins do not apply to images repeated
// across a vertical sprite.
func (img Image) RequiredWidth(o Orientation) int {
	if img.Alignment == Repeat && o == Vertical {
		return img.Bitmap.W
	}
	return img.Bitmap.W + img.Margins.Left + img.Margins.Right
}

// RequiredHeight is the transpose of RequiredWidth.
func (img Image) RequiredHeight(o Orientation) int {
	if img.Alignment == Repeat && o == Horizontal {
		return img.Bitmap.H
	}
	return img.Bitmap.H + img.Margins.Top + img.Margins.Bottom
}

// Placed records where an input image ended up.
type Placed struct {
	// Offset is the position along the stacking axis in sprite pixels.
	Offset int
	// ScaledOffset is Offset divided by the sprite scale, rounded.
	ScaledOffset int
	// Rendered is the image as drawn into the sprite: margins applied,
	// repeated images tiled.
	Rendered *bitmap.Buffer
	// Fractional is set when the required size of the image is not a
	// whole number of CSS pixels at the sprite scale.
	Fractional bool
	// Shared is set when the rendering duplicated an earlier image and
	// reuses its offset.
	Shared bool
}

// Sprite is a laid out and composited sprite.
type Sprite struct {
	Canvas      *bitmap.Buffer
	Orientation Orientation
	Scale       float64
	// Placed is in input order.
	Placed []Placed
	// Fractional is set when the canvas size is not a whole number of CSS
	// pixels at Scale.
	Fractional bool
}

// Width returns the canvas width.
func (s *Sprite) Width() int { return s.Canvas.W }

// Height returns the canvas height.
func (s *Sprite) Height() int { return s.Canvas.H }
