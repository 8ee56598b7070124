package directive

import (
	"strconv"
	"strings"

	"github.com/hazendaz/smartsprites-sub000/internal/layout"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

const (
	propAlignment    = "sprite-alignment"
	propMarginLeft   = "sprite-margin-left"
	propMarginRight  = "sprite-margin-right"
	propMarginTop    = "sprite-margin-top"
	propMarginBottom = "sprite-margin-bottom"
)

var layoutProperties = []string{propAlignment, propMarginLeft, propMarginRight, propMarginTop, propMarginBottom}

// LayoutProperties position one image within its sprite. A sprite image
// directive may carry them as defaults for all of its references.
type LayoutProperties struct {
	Alignment layout.Alignment
	Margins   layout.Margins
}

// DefaultLayoutProperties returns leading-edge alignment and no margins.
func DefaultLayoutProperties(o layout.Orientation) LayoutProperties {
	return LayoutProperties{Alignment: layout.Default(o)}
}

// ParseLayoutProperties reads the sprite-alignment and sprite-margin-*
// properties of a directive. Properties that are absent keep their value
// from defaults.
func ParseLayoutProperties(text string, o layout.Orientation, defaults LayoutProperties, log *message.Log) LayoutProperties {
	props := propertyMap(ExtractProperties(text, nil))

	lp := defaults
	if v := value(props, propAlignment); v != "" {
		lp.Alignment = parseAlignment(v, o, log)
	}
	lp.Margins.Left = margin(props, propMarginLeft, defaults.Margins.Left, log)
	lp.Margins.Right = margin(props, propMarginRight, defaults.Margins.Right, log)
	lp.Margins.Top = margin(props, propMarginTop, defaults.Margins.Top, log)
	lp.Margins.Bottom = margin(props, propMarginBottom, defaults.Margins.Bottom, log)
	return lp
}

func parseAlignment(v string, o layout.Orientation, log *message.Log) layout.Alignment {
	a, err := layout.ParseAlignment(v)
	if err != nil {
		log.Warning(message.UnsupportedAlignment, v)
		return layout.Default(o)
	}
	if fit := a.Fit(o); fit != a {
		if o == layout.Horizontal {
			log.Warning(message.OnlyTopOrBottomAlignmentAllowed, a)
		} else {
			log.Warning(message.OnlyLeftOrRightAlignmentAllowed, a)
		}
		return fit
	}
	return a
}

func margin(props map[string]Property, name string, def int, log *message.Log) int {
	raw := value(props, name)
	if raw == "" {
		return def
	}
	v := raw
	if strings.HasSuffix(strings.ToLower(v), "px") {
		v = v[:len(v)-2]
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warning(message.CannotParseMarginValue, raw)
		return 0
	}
	if n < 0 {
		log.Warning(message.IgnoringNegativeMarginValue, name)
		return 0
	}
	return n
}
