// Package replacement derives the CSS background properties that point an
// element at its image inside a sprite.
package replacement

import (
	"fmt"
	"math"
	"strconv"

	"github.com/hazendaz/smartsprites-sub000/internal/layout"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

// Replacement is the position of one image within its sprite, in CSS
// pixels.
type Replacement struct {
	Orientation layout.Orientation
	// Edge is the keyword for the axis the sprite does not stack along.
	Edge string
	// Offset is the stacking-axis offset divided by the sprite scale.
	Offset    int
	Important bool
}

// Build derives the replacement of the i-th placed image of s. img must
// be the same image that was passed to layout.Layout at index i.
func Build(s *layout.Sprite, i int, img layout.Image, important bool, spriteID string, log *message.Log) Replacement {
	p := s.Placed[i]
	if v := float64(p.Offset) / s.Scale; v != math.Round(v) {
		log.Warning(message.FractionalOffsetValue, p.Offset, img.ID, spriteID, s.Scale)
	}
	return Replacement{
		Orientation: s.Orientation,
		Edge:        Edge(img.Alignment, s.Orientation),
		Offset:      p.ScaledOffset,
		Important:   important,
	}
}

// Edge returns the CSS keyword positioning an image with alignment a in a
// sprite of orientation o.
func Edge(a layout.Alignment, o layout.Orientation) string {
	switch a.Fit(o) {
	case layout.Right:
		return "right"
	case layout.Bottom:
		return "bottom"
	case layout.Center:
		return "center"
	}
	if o == layout.Horizontal {
		return "top"
	}
	return "left"
}

// Position renders the background-position value, e.g. "left -20px" for a
// vertical sprite or "-20px top" for a horizontal one.
func (r Replacement) Position() string {
	off := "0"
	if r.Offset != 0 {
		off = strconv.Itoa(-r.Offset) + "px"
	}
	if r.Orientation == layout.Horizontal {
		return off + " " + r.Edge
	}
	return r.Edge + " " + off
}

// BackgroundSize returns the background-size value that renders s at its
// scale, or "" when s is not scaled.
func BackgroundSize(s *layout.Sprite) string {
	if s.Scale == 1 {
		return ""
	}
	w := int(math.Round(float64(s.Width()) / s.Scale))
	h := int(math.Round(float64(s.Height()) / s.Scale))
	return fmt.Sprintf("%dpx %dpx", w, h)
}
