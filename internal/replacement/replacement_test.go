package replacement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazendaz/smartsprites-sub000/internal/bitmap"
	"github.com/hazendaz/smartsprites-sub000/internal/layout"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

func TestEdge(t *testing.T) {
	tests := []struct {
		a    layout.Alignment
		o    layout.Orientation
		want string
	}{
		{layout.Left, layout.Vertical, "left"},
		{layout.Right, layout.Vertical, "right"},
		{layout.Center, layout.Vertical, "center"},
		{layout.Repeat, layout.Vertical, "left"},
		{layout.Bottom, layout.Vertical, "left"},
		{layout.Top, layout.Horizontal, "top"},
		{layout.Bottom, layout.Horizontal, "bottom"},
		{layout.Center, layout.Horizontal, "center"},
		{layout.Repeat, layout.Horizontal, "top"},
		{layout.Right, layout.Horizontal, "top"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Edge(tt.a, tt.o), "Edge(%v, %v)", tt.a, tt.o)
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		r    Replacement
		want string
	}{
		{Replacement{Orientation: layout.Vertical, Edge: "left"}, "left 0"},
		{Replacement{Orientation: layout.Vertical, Edge: "right", Offset: 20}, "right -20px"},
		{Replacement{Orientation: layout.Horizontal, Edge: "bottom", Offset: 7}, "-7px bottom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.r.Position())
	}
}

func TestBuild_ScaledSprite(t *testing.T) {
	icon := bitmap.New(4, 6)
	for i := range icon.Pix {
		icon.Pix[i] = 0xff000000
	}
	other := icon.Clone()
	other.Pix[0] = 0xffffffff
	odd := bitmap.New(4, 3)
	odd.Pix[0] = 0xff00ff00

	images := []layout.Image{
		{ID: "a", Bitmap: icon, Alignment: layout.Right},
		{ID: "b", Bitmap: other},
		{ID: "c", Bitmap: odd},
		{ID: "d", Bitmap: odd},
	}
	mem := &message.Memory{}
	log := message.New(mem)
	s, err := layout.Layout("icons", images, layout.Vertical, 2, log)
	require.NoError(t, err)

	r := Build(s, 1, images[1], true, "icons", log)
	assert.Equal(t, "left -3px", r.Position())
	assert.True(t, r.Important)
	assert.Equal(t, "right 0", Build(s, 0, images[0], false, "icons", log).Position())
	assert.Equal(t, "2px 8px", BackgroundSize(s))
	assert.False(t, mem.Has(message.FractionalOffsetValue), "offsets 0 and 6 are whole at scale 2")
}

func TestBuild_FractionalOffset(t *testing.T) {
	odd := bitmap.New(2, 3)
	odd.Pix[0] = 0xff000000
	second := bitmap.New(2, 2)
	second.Pix[1] = 0xff000000
	images := []layout.Image{{ID: "odd", Bitmap: odd}, {ID: "second", Bitmap: second}}

	mem := &message.Memory{}
	log := message.New(mem)
	s, err := layout.Layout("s", images, layout.Vertical, 2, log)
	require.NoError(t, err)

	r := Build(s, 1, images[1], false, "s", log)
	assert.Equal(t, 2, r.Offset, "round(3/2)")
	assert.True(t, mem.Has(message.FractionalOffsetValue))
}

func TestBackgroundSize_Unscaled(t *testing.T) {
	s := &layout.Sprite{Canvas: bitmap.New(3, 3), Scale: 1}
	assert.Empty(t, BackgroundSize(s))
}
