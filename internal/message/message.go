// Package message carries structured build diagnostics. Producers report a
// Kind plus its arguments; sinks decide how (and whether) to render them.
package message

import (
	"fmt"
	"strings"
)

// Level orders diagnostics by severity.
type Level int

const (
	Info Level = iota
	// LegacyNotice reports degradations that only affect the legacy
	// (indexed-alpha) sprite variant.
	LegacyNotice
	Notice
	Deprecation
	Warning
	Error
	// Status is used for the end-of-run summary and is always shown.
	Status
)

var levelNames = [...]string{"INFO", "IE6NOTICE", "NOTICE", "DEPRECATION", "WARN", "ERROR", "STATUS"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts level names case-insensitively.
func ParseLevel(s string) (Level, error) {
	for i, n := range levelNames {
		if strings.EqualFold(s, n) {
			return Level(i), nil
		}
	}
	if strings.EqualFold(s, "warning") {
		return Warning, nil
	}
	return Info, fmt.Errorf("unknown log level %q", s)
}

// Kind identifies a diagnostic. Its text template lives in templates.
type Kind int

const (
	CannotLoadImage Kind = iota
	UnsupportedIndividualImageFormat
	IgnoringNegativeMarginValue
	CannotParseMarginValue
	OnlyLeftOrRightAlignmentAllowed
	OnlyTopOrBottomAlignmentAllowed
	UnsupportedAlignment
	UnsupportedValue
	MalformedColor
	MalformedURL
	MalformedSpriteImagePath
	MalformedCSSRule
	SpriteIDNotFound
	SpriteImageURLNotFound
	SpriteRefNotFound
	UnsupportedSpriteImageFormat
	DeprecatedSpriteImageUID
	UnsupportedLayout
	UnsupportedPropertiesFound
	IgnoringSpriteImageRedefinition
	ReferencedSpriteNotFound
	NoBackgroundImageRuleNextToSpriteReference
	MoreThanOneRuleNextToSpriteReference
	CannotDetermineImageFormat
	UnsupportedVariableInSpriteImagePath
	IgnoringIe6Mode
	AbsolutePathAndNoDocumentRoot
	OverridingPropertyFound
	InvalidScale
	FractionalScaleValue
	ImageFractionalScaleValue
	FractionalOffsetValue
	EmptySprite
	OctreeNodeLimitPruning
	AlphaChannelLossInIndexedColor
	TooManyColorsForIndexedColor
	UsingWhiteMatteColorAsDefault
	IgnoringMatteColorNoSupport
	IgnoringMatteColorNoPartialTransparency
	CannotWriteSpriteImage
	CannotWriteCSSFile
	CannotReadCSSFile
	ReadingCSS
	ReadingSpriteImageDirectives
	ReadingSpriteReferenceDirectives
	ProcessingSpriteImage
	UsingLegacyVariant
	WritingSpriteImage
	WritingCSS
	ProcessingCompleted
	ProcessingCompletedWithWarnings
)

var templates = map[Kind]string{
	CannotLoadImage:                            "Cannot load image: %s due to: %s",
	UnsupportedIndividualImageFormat:           "Unsupported format of image loaded from: %s",
	IgnoringNegativeMarginValue:                "Ignoring negative margin value: %s",
	CannotParseMarginValue:                     "Cannot parse margin value: %s. Only 'px' units are supported.",
	OnlyLeftOrRightAlignmentAllowed:            "Only 'left', 'right', 'center' or 'repeat' alignment allowed on vertical sprites, found: %s. Using 'left'.",
	OnlyTopOrBottomAlignmentAllowed:            "Only 'top', 'bottom', 'center' or 'repeat' alignment allowed on horizontal sprites, found: %s. Using 'top'.",
	UnsupportedAlignment:                       "Unsupported alignment: %s. Using the default.",
	UnsupportedValue:                           "Unsupported value '%s' of property %s, using %s",
	MalformedColor:                             "Malformed color: %s",
	MalformedURL:                               "Malformed URL: %s",
	MalformedSpriteImagePath:                   "Malformed sprite image path: %s",
	MalformedCSSRule:                           "Malformed CSS rule: %s",
	SpriteIDNotFound:                           "'sprite' property not found in sprite image directive",
	SpriteImageURLNotFound:                     "'sprite-image' property not found in sprite image directive",
	SpriteRefNotFound:                          "'sprite-ref' property not found in sprite reference directive",
	UnsupportedSpriteImageFormat:               "Unsupported sprite image format: %s, using png",
	DeprecatedSpriteImageUID:                   "sprite-image-uid: %s is deprecated, use ${date} or ${sha512} in the sprite image path instead",
	UnsupportedLayout:                          "Unsupported sprite layout: %s, using vertical",
	UnsupportedPropertiesFound:                 "Ignoring unsupported properties: %s",
	IgnoringSpriteImageRedefinition:            "Ignoring redefinition of sprite image '%s'",
	ReferencedSpriteNotFound:                   "Referenced sprite: %s not found",
	NoBackgroundImageRuleNextToSpriteReference: "No 'background-image' rule next to sprite reference comment: %s",
	MoreThanOneRuleNextToSpriteReference:       "Found more than one rule next to sprite reference comment: %s",
	CannotDetermineImageFormat:                 "Cannot determine image format from file name: %s, using png",
	UnsupportedVariableInSpriteImagePath:       "Unsupported variable in sprite image path: %s",
	IgnoringIe6Mode:                            "Ignoring sprite-ie6-mode for %s sprite image format",
	AbsolutePathAndNoDocumentRoot:              "Found image path %s relative to the document root, but no document root is configured",
	OverridingPropertyFound:                    "Found a %s property after sprite-ref comment in the same rule; it will override the generated one",
	InvalidScale:                               "Invalid scale %v for sprite '%s', using 1",
	FractionalScaleValue:                       "Sprite '%s' size %dx%d is not a whole number of pixels at scale %v",
	ImageFractionalScaleValue:                  "Image '%s' in sprite '%s' size %dx%d is not a whole number of pixels at scale %v",
	FractionalOffsetValue:                      "Offset %d of image '%s' in sprite '%s' is not a whole number of pixels at scale %v",
	EmptySprite:                                "Sprite '%s' has no drawable images, skipping",
	OctreeNodeLimitPruning:                     "Color tree node limit reached %d time(s) while quantizing sprite '%s', reducing precision",
	AlphaChannelLossInIndexedColor:             "Alpha channel of sprite image '%s' will be lost in indexed color",
	TooManyColorsForIndexedColor:               "Sprite image '%s' has %d colors, more than the %d supported in indexed color, quantizing",
	UsingWhiteMatteColorAsDefault:              "Using white as the default matte color for sprite image '%s'",
	IgnoringMatteColorNoSupport:                "Ignoring sprite-matte-color of '%s': the sprite is saved in direct color",
	IgnoringMatteColorNoPartialTransparency:    "Ignoring sprite-matte-color of '%s': the sprite has no partial transparency",
	CannotWriteSpriteImage:                     "Cannot write sprite image %s due to: %s",
	CannotWriteCSSFile:                         "Cannot write CSS file %s due to: %s",
	CannotReadCSSFile:                          "Cannot read CSS file %s due to: %s",
	ReadingCSS:                                 "Reading CSS: %s",
	ReadingSpriteImageDirectives:               "Reading sprite image directives from %s",
	ReadingSpriteReferenceDirectives:           "Reading sprite reference directives from %s",
	ProcessingSpriteImage:                      "Building sprite image '%s' from %d image(s)",
	UsingLegacyVariant:                         "Writing indexed-alpha variant of sprite image '%s' to %s",
	WritingSpriteImage:                         "Writing sprite image %dx%d to %s",
	WritingCSS:                                 "Writing CSS: %s",
	ProcessingCompleted:                        "Processing completed in %d ms",
	ProcessingCompletedWithWarnings:            "Processing completed in %d ms with %d warning(s)",
}

// Text renders k with args.
func (k Kind) Text(args ...any) string {
	t, ok := templates[k]
	if !ok {
		return fmt.Sprintf("Kind(%d) %v", int(k), args)
	}
	return fmt.Sprintf(t, args...)
}

// Message is one diagnostic. Line is zero-based and only meaningful when
// File is set.
type Message struct {
	Level Level
	Kind  Kind
	Args  []any
	File  string
	Line  int
}

// Text returns the rendered message body.
func (m Message) Text() string { return m.Kind.Text(m.Args...) }

func (m Message) String() string {
	var sb strings.Builder
	sb.WriteString(m.Level.String())
	sb.WriteString(": ")
	if m.File != "" {
		fmt.Fprintf(&sb, "%s:%d: ", m.File, m.Line+1)
	}
	sb.WriteString(m.Text())
	return sb.String()
}
