package directive

import (
	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

const propSpriteRef = "sprite-ref"

// SpriteReference is a parsed sprite reference directive.
type SpriteReference struct {
	SpriteRef  string
	Properties LayoutProperties
}

// ParseSpriteReference parses the body of a sprite reference directive.
// Layout properties default to those of the referenced sprite. It returns
// nil when sprite-ref is missing or names an unknown sprite.
func ParseSpriteReference(text string, sprites map[string]*SpriteImage, log *message.Log) *SpriteReference {
	props := propertyMap(ExtractProperties(text, log))
	warnUnsupported(props, log, []string{propSpriteRef}, layoutProperties)

	ref := value(props, propSpriteRef)
	if ref == "" {
		log.Warning(message.SpriteRefNotFound)
		return nil
	}
	sprite, ok := sprites[ref]
	if !ok {
		log.Warning(message.ReferencedSpriteNotFound, ref)
		return nil
	}
	return &SpriteReference{
		SpriteRef:  ref,
		Properties: ParseLayoutProperties(text, sprite.Orientation, sprite.Properties, log),
	}
}
