package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazendaz/smartsprites-sub000/internal/bitmap"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

func fill(w, h int, p uint32) *bitmap.Buffer {
	b := bitmap.New(w, h)
	for i := range b.Pix {
		b.Pix[i] = p
	}
	return b
}

func TestLeastCommonMultiple(t *testing.T) {
	images := []Image{
		{Bitmap: fill(15, 17, 0xffff0000), Alignment: Repeat},
		{Bitmap: fill(17, 16, 0xff00ff00), Alignment: Repeat},
		{Bitmap: fill(40, 4, 0xff0000ff), Alignment: Left},
	}
	assert.Equal(t, 255, LeastCommonMultiple(images, Vertical))
	assert.Equal(t, 272, LeastCommonMultiple(images, Horizontal))
	assert.Equal(t, 1, LeastCommonMultiple(images[2:], Vertical))
}

func TestLayout_HorizontalSprite(t *testing.T) {
	images := []Image{
		{ID: "a", Bitmap: fill(17, 47, 0xffff0000), Alignment: Left},
		{ID: "b", Bitmap: fill(15, 47, 0xff00ff00), Alignment: Left},
		{ID: "c", Bitmap: fill(48, 47, 0xff0000ff), Alignment: Left},
	}
	s, err := Layout("h", images, Horizontal, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 17+15+48, s.Width())
	assert.Equal(t, 47, s.Height())

	offsets := []int{s.Placed[0].Offset, s.Placed[1].Offset, s.Placed[2].Offset}
	assert.Equal(t, []int{0, 17, 32}, offsets)
	assert.Equal(t, uint32(0xff00ff00), s.Canvas.At(17, 0))
	assert.Equal(t, uint32(0xff0000ff), s.Canvas.At(79, 46))
}

func TestLayout_VerticalRepeat(t *testing.T) {
	images := []Image{
		{ID: "a", Bitmap: fill(15, 17, 0xffff0000), Alignment: Repeat},
		{ID: "b", Bitmap: fill(17, 16, 0xff00ff00), Alignment: Repeat},
	}
	s, err := Layout("v", images, Vertical, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 15*17, s.Width())
	assert.Equal(t, 17+16, s.Height())
	for x := 0; x < s.Width(); x++ {
		require.Equal(t, uint32(0xffff0000), s.Canvas.At(x, 0), "x=%d", x)
		require.Equal(t, uint32(0xff00ff00), s.Canvas.At(x, 17), "x=%d", x)
	}
}

func TestLayout_HorizontalRepeat(t *testing.T) {
	images := []Image{
		{ID: "a", Bitmap: fill(17, 16, 0xffff0000), Alignment: Repeat},
		{ID: "b", Bitmap: fill(15, 17, 0xff00ff00), Alignment: Repeat},
	}
	s, err := Layout("h", images, Horizontal, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 17+15, s.Width())
	assert.Equal(t, 16*17, s.Height())
}

func TestLayout_ExtentRoundsUpToMultiple(t *testing.T) {
	images := []Image{
		{ID: "tile", Bitmap: fill(10, 2, 0xffff0000), Alignment: Repeat},
		{ID: "wide", Bitmap: fill(23, 2, 0xff00ff00), Alignment: Left},
	}
	s, err := Layout("v", images, Vertical, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, s.Width())
}

func TestLayout_Alignments(t *testing.T) {
	icon := fill(4, 2, 0xff112233)
	images := []Image{
		{ID: "wide", Bitmap: fill(20, 1, 0xff000000), Alignment: Left},
		{ID: "left", Bitmap: icon, Alignment: Left, Margins: Margins{Left: 3, Top: 1}},
		{ID: "right", Bitmap: icon, Alignment: Right, Margins: Margins{Right: 2}},
		{ID: "center", Bitmap: icon, Alignment: Center},
	}
	s, err := Layout("v", images, Vertical, 1, nil)
	require.NoError(t, err)
	require.Equal(t, 20, s.Width())

	left := s.Placed[1]
	assert.Equal(t, 1, left.Offset)
	assert.Equal(t, 3, left.Rendered.H)
	assert.Equal(t, uint32(0xff112233), s.Canvas.At(3, left.Offset+1))
	assert.Equal(t, uint32(0), s.Canvas.At(2, left.Offset+1))

	right := s.Placed[2]
	assert.Equal(t, uint32(0xff112233), s.Canvas.At(20-2-4, right.Offset))
	assert.Equal(t, uint32(0), s.Canvas.At(20-2, right.Offset))

	center := s.Placed[3]
	assert.Equal(t, uint32(0xff112233), s.Canvas.At(8, center.Offset))
	assert.Equal(t, uint32(0), s.Canvas.At(7, center.Offset))
}

func TestLayout_Dedup(t *testing.T) {
	a := fill(8, 8, 0xff445566)
	b := a.Clone()
	b.Pix[0] = 0x00ffffff // transparent in both after rendering
	a.Pix[0] = 0x00000000
	images := []Image{
		{ID: "a", Bitmap: a},
		{ID: "other", Bitmap: fill(8, 8, 0xff000000)},
		{ID: "b", Bitmap: b},
	}
	s, err := Layout("v", images, Vertical, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, s.Placed[0].Offset, s.Placed[2].Offset)
	assert.True(t, s.Placed[2].Shared)
	assert.Equal(t, 16, s.Height(), "duplicate drawn only once")
}

func TestLayout_Empty(t *testing.T) {
	_, err := Layout("none", nil, Vertical, 1, nil)
	assert.ErrorIs(t, err, ErrEmptySprite)

	_, err = Layout("zero", []Image{{ID: "z", Bitmap: bitmap.New(0, 0)}}, Vertical, 1, nil)
	assert.ErrorIs(t, err, ErrEmptySprite)
}

func TestLayout_FractionalScale(t *testing.T) {
	mem := &message.Memory{}
	images := []Image{
		{ID: "even", Bitmap: fill(4, 4, 0xff000000)},
		{ID: "odd", Bitmap: fill(4, 3, 0xffffffff)},
	}
	s, err := Layout("retina", images, Vertical, 2, message.New(mem))
	require.NoError(t, err)

	assert.False(t, s.Placed[0].Fractional)
	assert.True(t, s.Placed[1].Fractional)
	assert.Equal(t, 2, s.Placed[1].ScaledOffset)
	assert.True(t, s.Fractional, "7px tall canvas at scale 2")
	assert.Equal(t, []message.Kind{message.ImageFractionalScaleValue, message.FractionalScaleValue}, mem.Kinds())
}

func TestLayout_NormalizesInputs(t *testing.T) {
	mem := &message.Memory{}
	images := []Image{
		{ID: "neg", Bitmap: fill(2, 2, 0xff000000), Alignment: Bottom, Margins: Margins{Left: -4, Top: 1}},
	}
	s, err := Layout("v", images, Vertical, 0, message.New(mem))
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Scale)
	assert.Equal(t, 2, s.Width())
	assert.Equal(t, 3, s.Height())
	assert.Equal(t, []message.Kind{message.InvalidScale, message.IgnoringNegativeMarginValue}, mem.Kinds())
	assert.Equal(t, -4, images[0].Margins.Left, "caller's images are left untouched")
}

func TestAlignmentFit(t *testing.T) {
	assert.Equal(t, Left, Top.Fit(Vertical))
	assert.Equal(t, Top, Right.Fit(Horizontal))
	assert.Equal(t, Repeat, Repeat.Fit(Horizontal))
	assert.Equal(t, Top, Default(Horizontal))
}
