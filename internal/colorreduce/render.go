package colorreduce

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/hazendaz/smartsprites-sub000/internal/bitmap"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

// Depth is the requested color depth of a sprite.
type Depth int

const (
	// Auto uses indexed color only when no quality is lost.
	Auto Depth = iota
	Direct
	Indexed
)

var depthNames = [...]string{"AUTO", "DIRECT", "INDEXED"}

func (d Depth) String() string {
	if d < 0 || int(d) >= len(depthNames) {
		return fmt.Sprintf("Depth(%d)", int(d))
	}
	return depthNames[d]
}

// ParseDepth accepts AUTO, DIRECT and INDEXED in any case.
func ParseDepth(s string) (Depth, error) {
	for i, n := range depthNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Depth(i), nil
		}
	}
	return Auto, fmt.Errorf("unknown color depth %q", s)
}

// Request configures Render for one sprite.
type Request struct {
	SpriteID string
	Depth    Depth
	// DirectOnly is set for formats without an indexed mode.
	DirectOnly bool
	// Legacy asks for an additional matted, indexed variant when the
	// sprite is kept in direct color but has transparency.
	Legacy bool
	// Matte is the configured matte color, nil when none was given.
	Matte     *color.NRGBA
	Quantizer Quantizer
	// NodeLimit caps the octree size; zero means octree.MaxNodes.
	NodeLimit int
}

// Result holds the rendered sprite and its optional legacy variant.
type Result struct {
	Image  image.Image
	Legacy *image.Paletted
	Info   Info
	// Lossy is set when the primary image went through quantization.
	Lossy bool
}

// Render picks the color representation of b and produces it. Quality
// loss is reported through log, never as an error.
func Render(b *bitmap.Buffer, req Request, log *message.Log) Result {
	info := Evaluate(b)
	res := Result{Info: info}

	if req.DirectOnly || req.Depth == Direct || (req.Depth == Auto && !info.Lossless()) {
		res.Image = b.Image()
		if req.Legacy && info.Transparency {
			res.Legacy = quantizeReported(b, req, info, message.LegacyNotice, log)
		} else if req.Matte != nil {
			log.Warning(message.IgnoringMatteColorNoSupport, req.SpriteID)
		}
		return res
	}

	if info.Lossless() {
		if req.Matte != nil {
			log.Warning(message.IgnoringMatteColorNoPartialTransparency, req.SpriteID)
		}
		p, err := Reduce(b)
		if err == nil {
			res.Image = p
			return res
		}
	}

	res.Image = quantizeReported(b, req, info, message.Warning, log)
	res.Lossy = true
	return res
}

func quantizeReported(b *bitmap.Buffer, req Request, info Info, level message.Level, log *message.Log) *image.Paletted {
	if info.PartialTransparency {
		log.Log(level, message.AlphaChannelLossInIndexedColor, req.SpriteID)
	}
	if info.DistinctColors > MaxIndexedColors {
		log.Log(level, message.TooManyColorsForIndexedColor, req.SpriteID, info.DistinctColors, MaxIndexedColors)
	}
	matte := White
	if req.Matte != nil {
		matte = *req.Matte
	} else if info.PartialTransparency {
		log.Log(level, message.UsingWhiteMatteColorAsDefault, req.SpriteID)
	}

	p, st := quantizeLimit(b, matte, MaxIndexedColors, req.Quantizer, req.NodeLimit)
	if st.ForcedPrunes > 0 {
		log.Log(level, message.OctreeNodeLimitPruning, st.ForcedPrunes, req.SpriteID)
	}
	return p
}
