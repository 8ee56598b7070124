// Package directive reads the sprite directives embedded in CSS comments.
//
// A sprite image directive declares a sprite:
//
//	/** sprite: icons; sprite-image: url('../img/icons.png'); sprite-layout: vertical */
//
// and a sprite reference directive places the background image declared on
// the same line into it:
//
//	background-image: url(../img/home.png); /** sprite-ref: icons; sprite-margin-bottom: 4px */
package directive

import (
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

// RE2 has no backreferences, so each quoting style gets its own group.
var (
	urlPattern       = regexp.MustCompile(`^[uU][rR][lL]\((?:'([^'"]*)'|"([^'"]*)"|([^'"]*))\)$`)
	colorPattern     = regexp.MustCompile(`^#([0-9a-fA-F]{6})$`)
	importantPattern = regexp.MustCompile(`!\s*important`)
)

// Property is one "name: value" declaration.
type Property struct {
	Name      string
	Value     string
	Important bool
}

// ExtractProperties splits a declaration list such as "a: 1; b: 2
// !important" into properties. Names are lower-cased and values trimmed;
// an "!important" marker is removed from the value and recorded. Chunks
// without a colon are reported as malformed when log is non-nil.
func ExtractProperties(text string, log *message.Log) []Property {
	var props []Property
	for _, chunk := range strings.Split(text, ";") {
		name, value, ok := strings.Cut(chunk, ":")
		if !ok {
			if strings.TrimSpace(chunk) != "" {
				log.Warning(message.MalformedCSSRule, strings.TrimSpace(chunk))
			}
			continue
		}
		value = strings.TrimSpace(value)
		important := false
		if importantPattern.MatchString(value) {
			important = true
			value = importantPattern.ReplaceAllString(value, "")
		}
		props = append(props, Property{
			Name:      strings.ToLower(strings.TrimSpace(name)),
			Value:     strings.TrimSpace(value),
			Important: important,
		})
	}
	return props
}

// propertyMap indexes props by name. Later declarations win.
func propertyMap(props []Property) map[string]Property {
	m := make(map[string]Property, len(props))
	for _, p := range props {
		m[p.Name] = p
	}
	return m
}

// value returns the trimmed value of name, or "" when it is absent.
func value(m map[string]Property, name string) string {
	return strings.TrimSpace(m[name].Value)
}

// UnpackURL extracts the address from a CSS url() value. Quotes must be
// balanced. ok is false when v is not a url() value.
func UnpackURL(v string) (url string, ok bool) {
	m := urlPattern.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1] + m[2] + m[3]), true
}

// ParseColor parses a "#rrggbb" color. The result is opaque.
func ParseColor(v string) (color.NRGBA, bool) {
	m := colorPattern.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return color.NRGBA{}, false
	}
	n, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, true
}
