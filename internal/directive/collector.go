package directive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

var (
	imageDirectivePattern     = regexp.MustCompile(`/\*+\s+(sprite:[^*]*)\*+/`)
	referenceDirectivePattern = regexp.MustCompile(`/\*+\s+(sprite-ref:[^*]*)\*+/`)
)

// maxLine bounds a single CSS line; minified stylesheets can be long.
const maxLine = 16 << 20

// ImageOccurrence is a sprite image directive found in a CSS file.
type ImageOccurrence struct {
	Directive *SpriteImage
	File      string
	// Line is zero-based.
	Line int
}

// ReferenceOccurrence is a sprite reference directive found in a CSS file
// together with the background image declared next to it.
type ReferenceOccurrence struct {
	Directive *SpriteReference
	// ImageURL is the unpacked url() of the background-image property.
	ImageURL  string
	Important bool
	File      string
	Line      int
}

// Collection is everything read from a set of CSS files.
type Collection struct {
	// Sprites holds the first definition of each sprite id.
	Sprites map[string]ImageOccurrence
	// SpriteOrder lists sprite ids in definition order.
	SpriteOrder []string
	// Images lists every sprite image directive read, redefinitions
	// included, in file order.
	Images []ImageOccurrence
	// ImageFiles lists the files with at least one sprite image directive.
	ImageFiles []string
	// References groups reference occurrences by sprite id, in file order.
	References map[string][]ReferenceOccurrence
	// ReferencesByFile groups reference occurrences by CSS file.
	ReferencesByFile map[string][]ReferenceOccurrence
}

// Directives returns the merged sprite image directives by id.
func (c *Collection) Directives() map[string]*SpriteImage {
	m := make(map[string]*SpriteImage, len(c.Sprites))
	for id, occ := range c.Sprites {
		m[id] = occ.Directive
	}
	return m
}

// ImageDirective extracts the body of a sprite image directive from a CSS
// line.
func ImageDirective(line string) (string, bool) {
	m := imageDirectivePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ReferenceDirective extracts the body of a sprite reference directive
// from a CSS line.
func ReferenceDirective(line string) (string, bool) {
	m := referenceDirectivePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Collect reads files in order. Sprite image directives are read from all
// files first so that references may point at sprites declared in a later
// file.
func Collect(files []string, log *message.Log) (*Collection, error) {
	c := &Collection{
		Sprites:          make(map[string]ImageOccurrence),
		References:       make(map[string][]ReferenceOccurrence),
		ReferencesByFile: make(map[string][]ReferenceOccurrence),
	}

	for _, file := range files {
		log.Info(message.ReadingSpriteImageDirectives, file)
		occs, err := readFile(file, func(r io.Reader) ([]ImageOccurrence, error) {
			return ReadImages(file, r, log)
		})
		if err != nil {
			return nil, err
		}
		if len(occs) > 0 {
			c.ImageFiles = append(c.ImageFiles, file)
			c.Images = append(c.Images, occs...)
		}
		c.merge(occs, log)
	}

	sprites := c.Directives()
	for _, file := range files {
		log.Info(message.ReadingSpriteReferenceDirectives, file)
		refs, err := readFile(file, func(r io.Reader) ([]ReferenceOccurrence, error) {
			return ReadReferences(file, r, sprites, log)
		})
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			id := ref.Directive.SpriteRef
			c.References[id] = append(c.References[id], ref)
		}
		if len(refs) > 0 {
			c.ReferencesByFile[file] = refs
		}
	}
	return c, nil
}

func readFile[T any](file string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open css: %w", err)
	}
	defer f.Close()
	return read(f)
}

func (c *Collection) merge(occs []ImageOccurrence, log *message.Log) {
	for _, occ := range occs {
		id := occ.Directive.ID
		if _, dup := c.Sprites[id]; dup {
			log.At(occ.File, occ.Line).Warning(message.IgnoringSpriteImageRedefinition, id)
			continue
		}
		c.Sprites[id] = occ
		c.SpriteOrder = append(c.SpriteOrder, id)
	}
}

// ReadImages returns the sprite image directives in r, which holds the
// contents of file.
func ReadImages(file string, r io.Reader, log *message.Log) ([]ImageOccurrence, error) {
	var occs []ImageOccurrence
	err := eachLine(r, func(n int, line string) {
		body, ok := ImageDirective(line)
		if !ok {
			return
		}
		if d := ParseSpriteImage(body, log.At(file, n)); d != nil {
			occs = append(occs, ImageOccurrence{Directive: d, File: file, Line: n})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return occs, nil
}

// ReadReferences returns the sprite reference directives in r that point
// at one of sprites.
func ReadReferences(file string, r io.Reader, sprites map[string]*SpriteImage, log *message.Log) ([]ReferenceOccurrence, error) {
	var refs []ReferenceOccurrence
	err := eachLine(r, func(n int, line string) {
		body, ok := ReferenceDirective(line)
		if !ok {
			return
		}
		at := log.At(file, n)
		bg, ok := backgroundImage(line, at)
		if !ok {
			return
		}
		url, ok := UnpackURL(bg.Value)
		if !ok {
			at.Warning(message.MalformedURL, bg.Value)
			return
		}
		d := ParseSpriteReference(body, sprites, at)
		if d == nil {
			return
		}
		refs = append(refs, ReferenceOccurrence{
			Directive: d,
			ImageURL:  url,
			Important: bg.Important,
			File:      file,
			Line:      n,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return refs, nil
}

// backgroundImage returns the single background-image property that must
// accompany a sprite reference directive on its line.
func backgroundImage(line string, log *message.Log) (Property, bool) {
	rest := strings.TrimSpace(referenceDirectivePattern.ReplaceAllString(line, ""))
	props := ExtractProperties(rest, nil)
	switch {
	case len(props) == 0:
		log.Warning(message.NoBackgroundImageRuleNextToSpriteReference, line)
		return Property{}, false
	case len(props) > 1:
		log.Warning(message.MoreThanOneRuleNextToSpriteReference, line)
		return Property{}, false
	case props[0].Name != "background-image":
		log.Warning(message.NoBackgroundImageRuleNextToSpriteReference, line)
		return Property{}, false
	}
	return props[0], true
}

func eachLine(r io.Reader, fn func(n int, line string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for n := 0; sc.Scan(); n++ {
		fn(n, sc.Text())
	}
	return sc.Err()
}
