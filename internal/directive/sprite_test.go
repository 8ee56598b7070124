package directive

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazendaz/smartsprites-sub000/internal/encoder"
	"github.com/hazendaz/smartsprites-sub000/internal/layout"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

func parse(t *testing.T, text string) (*SpriteImage, *message.Memory) {
	t.Helper()
	mem := &message.Memory{}
	return ParseSpriteImage(text, message.New(mem)), mem
}

func TestParseSpriteImage_Full(t *testing.T) {
	d, mem := parse(t, "sprite: icons; sprite-image: url('../img/${sprite}.png?${sha512}'); "+
		"sprite-layout: horizontal; sprite-matte-color: #00ff00; sprite-ie6-mode: none; sprite-scale: 2; "+
		"sprite-alignment: bottom; sprite-margin-left: 3px")
	require.NotNil(t, d)
	assert.Empty(t, mem.Kinds())

	assert.Equal(t, "icons", d.ID)
	assert.Equal(t, "../img/${sprite}.png?${sha512}", d.ImagePath)
	assert.Equal(t, layout.Horizontal, d.Orientation)
	assert.Equal(t, encoder.PNG, d.Format)
	assert.Equal(t, IE6None, d.IE6Mode)
	assert.Equal(t, &color.NRGBA{G: 0xff, A: 0xff}, d.Matte)
	assert.Equal(t, 2.0, d.Scale)
	assert.Equal(t, LayoutProperties{Alignment: layout.Bottom, Margins: layout.Margins{Left: 3}}, d.Properties)
}

func TestParseSpriteImage_Defaults(t *testing.T) {
	d, mem := parse(t, "sprite: s; sprite-image: url(s.gif)")
	require.NotNil(t, d)
	assert.Empty(t, mem.Kinds())
	assert.Equal(t, layout.Vertical, d.Orientation)
	assert.Equal(t, encoder.GIF, d.Format)
	assert.Equal(t, IE6Auto, d.IE6Mode)
	assert.Nil(t, d.Matte)
	assert.Equal(t, 1.0, d.Scale)
	assert.Equal(t, UIDNone, d.UID)
	assert.Equal(t, DefaultLayoutProperties(layout.Vertical), d.Properties)
}

func TestParseSpriteImage_Required(t *testing.T) {
	d, mem := parse(t, "sprite-image: url(a.png)")
	assert.Nil(t, d)
	assert.Equal(t, []message.Kind{message.SpriteIDNotFound}, mem.Kinds())

	d, mem = parse(t, "sprite: a")
	assert.Nil(t, d)
	assert.Equal(t, []message.Kind{message.SpriteImageURLNotFound}, mem.Kinds())

	d, mem = parse(t, "sprite: a; sprite-image: a.png")
	assert.Nil(t, d)
	assert.Equal(t, []message.Kind{message.MalformedURL}, mem.Kinds())
}

func TestParseSpriteImage_Warnings(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []message.Kind
	}{
		{"unknown property", "sprite: a; sprite-image: url(a.png); colour: red",
			[]message.Kind{message.UnsupportedPropertiesFound}},
		{"no extension", "sprite: a; sprite-image: url(sprites/a)",
			[]message.Kind{message.CannotDetermineImageFormat}},
		{"unknown format", "sprite: a; sprite-image: url(a.tga?x=1)",
			[]message.Kind{message.UnsupportedSpriteImageFormat}},
		{"unknown variable", "sprite: a; sprite-image: url(a-${md5}.png)",
			[]message.Kind{message.UnsupportedVariableInSpriteImagePath}},
		{"malformed path", "sprite: a; sprite-image: url(a-${sprite.png)",
			[]message.Kind{message.MalformedSpriteImagePath}},
		{"unknown layout", "sprite: a; sprite-image: url(a.png); sprite-layout: diagonal",
			[]message.Kind{message.UnsupportedLayout}},
		{"ie6 mode on gif", "sprite: a; sprite-image: url(a.gif); sprite-ie6-mode: auto",
			[]message.Kind{message.IgnoringIe6Mode}},
		{"bad matte", "sprite: a; sprite-image: url(a.png); sprite-matte-color: white",
			[]message.Kind{message.MalformedColor}},
		{"bad scale", "sprite: a; sprite-image: url(a.png); sprite-scale: big",
			[]message.Kind{message.UnsupportedValue}},
		{"uid", "sprite: a; sprite-image: url(a.png); sprite-image-uid: date",
			[]message.Kind{message.DeprecatedSpriteImageUID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mem := parse(t, tt.text)
			require.NotNil(t, d)
			assert.Equal(t, tt.want, mem.Kinds())
		})
	}
}

func TestParseSpriteImage_UnknownFormatFallsBackToPNG(t *testing.T) {
	d, _ := parse(t, "sprite: a; sprite-image: url(a.tga)")
	require.NotNil(t, d)
	assert.Equal(t, encoder.PNG, d.Format)

	d, _ = parse(t, "sprite: a; sprite-image: url(a.jpeg?v=2)")
	require.NotNil(t, d)
	assert.Equal(t, encoder.JPG, d.Format)
}

func TestParseSpriteImage_UIDLevel(t *testing.T) {
	d, mem := parse(t, "sprite: a; sprite-image: url(a.png); sprite-image-uid: sha512")
	require.NotNil(t, d)
	assert.Equal(t, UIDSHA512, d.UID)
	require.Len(t, mem.Messages(), 1)
	assert.Equal(t, message.Deprecation, mem.Messages()[0].Level)
}
