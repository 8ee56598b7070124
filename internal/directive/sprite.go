package directive

import (
	"image/color"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hazendaz/smartsprites-sub000/internal/encoder"
	"github.com/hazendaz/smartsprites-sub000/internal/layout"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

const (
	propSprite     = "sprite"
	propImage      = "sprite-image"
	propLayout     = "sprite-layout"
	propUID        = "sprite-image-uid"
	propMatteColor = "sprite-matte-color"
	propIE6Mode    = "sprite-ie6-mode"
	propScale      = "sprite-scale"
)

var spriteImageProperties = []string{propSprite, propImage, propLayout, propUID, propMatteColor, propIE6Mode, propScale}

// Variables that may appear in a sprite image path as ${name}.
const (
	VarSprite = "sprite"
	VarDate   = "date"
	VarSHA512 = "sha512"
	VarHash   = "hash"
)

var (
	imagePathPattern     = regexp.MustCompile(`^(?:[^${}]*|\$\{[^}]*\})*$`)
	imagePathVarPattern  = regexp.MustCompile(`\$\{([a-z0-9]*)\}`)
	allowedPathVariables = map[string]bool{VarSprite: true, VarDate: true, VarSHA512: true, VarHash: true}
)

// UIDType is the deprecated sprite-image-uid cache buster.
type UIDType int

const (
	UIDNone UIDType = iota
	UIDDate
	UIDSHA512
)

func (u UIDType) String() string {
	switch u {
	case UIDDate:
		return VarDate
	case UIDSHA512:
		return VarSHA512
	}
	return "none"
}

// IE6Mode controls whether a legacy indexed-alpha variant may be written
// next to a png sprite.
type IE6Mode int

const (
	IE6Auto IE6Mode = iota
	IE6None
)

func (m IE6Mode) String() string {
	if m == IE6None {
		return "none"
	}
	return "auto"
}

// SpriteImage is a parsed sprite image directive.
type SpriteImage struct {
	ID string
	// ImagePath is the sprite file path as written, variables unresolved.
	ImagePath   string
	UID         UIDType
	Orientation layout.Orientation
	Format      encoder.Format
	IE6Mode     IE6Mode
	// Matte is nil unless sprite-matte-color is set and well formed.
	Matte *color.NRGBA
	Scale float64
	// Properties are the layout defaults for references to this sprite.
	Properties LayoutProperties
}

// ParseSpriteImage parses the body of a sprite image directive, e.g.
// "sprite: icons; sprite-image: url(icons.png)". It returns nil when the
// sprite id or image path is missing.
func ParseSpriteImage(text string, log *message.Log) *SpriteImage {
	props := propertyMap(ExtractProperties(text, log))
	warnUnsupported(props, log, spriteImageProperties, layoutProperties)

	id := value(props, propSprite)
	if id == "" {
		log.Warning(message.SpriteIDNotFound)
		return nil
	}
	rawPath := value(props, propImage)
	if rawPath == "" {
		log.Warning(message.SpriteImageURLNotFound)
		return nil
	}
	path, ok := UnpackURL(rawPath)
	if !ok {
		log.Warning(message.MalformedURL, rawPath)
		return nil
	}

	d := &SpriteImage{ID: id, ImagePath: path, Scale: 1}

	switch v := strings.ToLower(value(props, propUID)); v {
	case "", "none":
	case VarDate:
		d.UID = UIDDate
	case VarSHA512:
		d.UID = UIDSHA512
	default:
		log.Warning(message.UnsupportedValue, v, propUID, "none")
	}
	if d.UID != UIDNone {
		log.Log(message.Deprecation, message.DeprecatedSpriteImageUID, d.UID)
	}

	if imagePathPattern.MatchString(path) {
		for _, m := range imagePathVarPattern.FindAllStringSubmatch(path, -1) {
			if !allowedPathVariables[m[1]] {
				log.Warning(message.UnsupportedVariableInSpriteImagePath, m[1])
			}
		}
	} else {
		log.Warning(message.MalformedSpriteImagePath, path)
	}

	if v := value(props, propLayout); v != "" {
		o, err := layout.ParseOrientation(v)
		if err != nil {
			log.Warning(message.UnsupportedLayout, v)
		}
		d.Orientation = o
	}

	d.Format = formatOf(path, log)

	ie6 := value(props, propIE6Mode)
	switch strings.ToLower(ie6) {
	case "", "auto":
	case "none":
		d.IE6Mode = IE6None
	default:
		log.Warning(message.UnsupportedValue, ie6, propIE6Mode, "auto")
	}
	if ie6 != "" && d.Format != encoder.PNG {
		log.Notice(message.IgnoringIe6Mode, d.Format)
	}

	if v := value(props, propMatteColor); v != "" {
		if c, ok := ParseColor(v); ok {
			d.Matte = &c
		} else {
			log.Warning(message.MalformedColor, v)
		}
	}

	if v := value(props, propScale); v != "" {
		s, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Warning(message.UnsupportedValue, v, propScale, "1")
		} else {
			d.Scale = s
		}
	}

	d.Properties = ParseLayoutProperties(text, d.Orientation, DefaultLayoutProperties(d.Orientation), log)
	return d
}

// formatOf infers the sprite format from the extension of path, ignoring
// any query string. It falls back to png.
func formatOf(path string, log *message.Log) encoder.Format {
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 || dot == len(path)-1 {
		log.Warning(message.CannotDetermineImageFormat, path)
		return encoder.PNG
	}
	ext := path[dot+1:]
	if q := strings.IndexByte(ext, '?'); q >= 0 {
		ext = ext[:q]
	}
	f, err := encoder.ParseFormat(ext)
	if err != nil {
		log.Warning(message.UnsupportedSpriteImageFormat, ext)
	}
	return f
}

func warnUnsupported(props map[string]Property, log *message.Log, allowed ...[]string) {
	known := make(map[string]bool)
	for _, names := range allowed {
		for _, n := range names {
			known[n] = true
		}
	}
	var unknown []string
	for name := range props {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		log.Warning(message.UnsupportedPropertiesFound, strings.Join(unknown, ", "))
	}
}
