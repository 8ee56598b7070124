package pipeline

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hazendaz/smartsprites-sub000/internal/bitmap"
	"github.com/hazendaz/smartsprites-sub000/internal/colorreduce"
	"github.com/hazendaz/smartsprites-sub000/internal/directive"
	"github.com/hazendaz/smartsprites-sub000/internal/encoder"
	"github.com/hazendaz/smartsprites-sub000/internal/hasher"
	"github.com/hazendaz/smartsprites-sub000/internal/layout"
	"github.com/hazendaz/smartsprites-sub000/internal/manifest"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
	"github.com/hazendaz/smartsprites-sub000/internal/profile"
	"github.com/hazendaz/smartsprites-sub000/internal/replacement"
)

// builtSprite is a sprite written to disk, as seen from the stylesheets.
type builtSprite struct {
	id string
	// cssFile declares the sprite; url and legacyURL are relative to it.
	cssFile   string
	url       string
	legacyURL string
	size      string // background-size value, "" when unscaled
}

// placement is the rewrite of one sprite reference line.
type placement struct {
	sprite *builtSprite
	repl   replacement.Replacement
}

type lineKey struct {
	file string
	line int
}

// processResult holds the result of building a single sprite.
type processResult struct {
	id         string
	sprite     manifest.Sprite
	placements map[lineKey]placement
	built      bool
	err        error
}

// loaded is a decoded individual image and the reference that named it.
type loaded struct {
	ref  directive.ReferenceOccurrence
	path string
	size int64
	img  *bitmap.Buffer
}

// processSprite builds one sprite: load, lay out, reduce colors, encode,
// write. Problems with individual images are reported and skipped; only
// failures to write output are returned as errors.
func processSprite(occ directive.ImageOccurrence, refs []directive.ReferenceOccurrence, cfg Config, registry *encoder.Registry) processResult {
	d := occ.Directive
	result := processResult{id: d.ID}
	log := cfg.Log.At(occ.File, occ.Line)

	images := loadImages(refs, cfg)
	log.Info(message.ProcessingSpriteImage, d.ID, len(images))

	inputs := make([]layout.Image, len(images))
	for i, l := range images {
		props := l.ref.Directive.Properties
		inputs[i] = layout.Image{ID: l.ref.ImageURL, Bitmap: l.img, Alignment: props.Alignment, Margins: props.Margins}
	}
	s, err := layout.Layout(d.ID, inputs, d.Orientation, d.Scale, log)
	if errors.Is(err, layout.ErrEmptySprite) {
		log.Warning(message.EmptySprite, d.ID)
		return result
	}
	if err != nil {
		result.err = fmt.Errorf("layout %s: %w", d.ID, err)
		return result
	}

	enc := registry.Get(d.Format)
	if enc == nil {
		result.err = fmt.Errorf("sprite %s: no encoder for %s", d.ID, d.Format)
		return result
	}
	res := colorreduce.Render(s.Canvas, renderRequest(d, enc, cfg.Profile), log)

	data, err := enc.Encode(res.Image)
	if err != nil {
		log.Warning(message.CannotWriteSpriteImage, d.ImagePath, err)
		result.err = fmt.Errorf("encode %s: %w", d.ID, err)
		return result
	}

	url := resolveImagePath(d, data, cfg.now())
	file, ok := spriteFile(occ.File, url, cfg, log)
	if !ok {
		result.err = fmt.Errorf("sprite %s: cannot resolve %s", d.ID, url)
		return result
	}
	if err := writeFile(file, data); err != nil {
		log.Warning(message.CannotWriteSpriteImage, file, err)
		result.err = err
		return result
	}
	log.Info(message.WritingSpriteImage, s.Width(), s.Height(), file)

	built := &builtSprite{id: d.ID, cssFile: occ.File, url: url, size: replacement.BackgroundSize(s)}
	result.sprite = manifest.Sprite{
		Path:    cfg.manifestPath(file),
		Width:   s.Width(),
		Height:  s.Height(),
		Scale:   s.Scale,
		Format:  string(d.Format),
		Layout:  d.Orientation.String(),
		Indexed: isPaletted(res.Image),
		Lossy:   res.Lossy,
		Size:    int64(len(data)),
		Hash:    hasher.ContentHash(data, 16),
	}

	if res.Legacy != nil {
		if v, ok := writeLegacy(res.Legacy, url, occ.File, cfg, log); ok {
			built.legacyURL = legacyName(url)
			log.Log(message.LegacyNotice, message.UsingLegacyVariant, d.ID, v.Path)
			result.sprite.Legacy = v
		}
	}

	result.placements = make(map[lineKey]placement, len(images))
	for i, l := range images {
		at := cfg.Log.At(l.ref.File, l.ref.Line)
		r := replacement.Build(s, i, inputs[i], l.ref.Important, d.ID, at)
		result.placements[lineKey{l.ref.File, l.ref.Line}] = placement{sprite: built, repl: r}

		p := s.Placed[i]
		result.sprite.Images = append(result.sprite.Images, manifest.Image{
			Path:     l.ref.ImageURL,
			CSS:      cfg.sourcePath(l.ref.File),
			Line:     l.ref.Line + 1,
			Width:    l.img.W,
			Height:   l.img.H,
			Size:     l.size,
			Offset:   p.Offset,
			Position: r.Position(),
			Shared:   p.Shared,
		})
	}
	result.built = true
	return result
}

// loadImages decodes the image of every reference. A file referenced
// more than once is decoded once.
func loadImages(refs []directive.ReferenceOccurrence, cfg Config) []loaded {
	cache := make(map[string]loaded)
	var out []loaded
	for _, ref := range refs {
		at := cfg.Log.At(ref.File, ref.Line)
		p := cfg.resourcePath(ref.File, stripQuery(ref.ImageURL), at)
		if p == "" {
			continue
		}
		l, ok := cache[p]
		if !ok {
			img, size, err := decodeFile(p)
			switch {
			case errors.Is(err, image.ErrFormat):
				at.Warning(message.UnsupportedIndividualImageFormat, p)
				continue
			case err != nil:
				at.Warning(message.CannotLoadImage, p, err)
				continue
			}
			l = loaded{path: p, size: size, img: img}
			cache[p] = l
		}
		l.ref = ref
		out = append(out, l)
	}
	return out
}

func decodeFile(path string) (*bitmap.Buffer, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, err
	}
	return bitmap.FromImage(img), fi.Size(), nil
}

// renderRequest derives the color policy for d. The configured png depth
// only applies to png sprites: gif is always indexed, jpg and webp are
// always direct.
func renderRequest(d *directive.SpriteImage, enc encoder.Encoder, p profile.Profile) colorreduce.Request {
	req := colorreduce.Request{
		SpriteID:   d.ID,
		DirectOnly: enc.DirectOnly(),
		Matte:      d.Matte,
		Quantizer:  p.Quantizer,
	}
	switch d.Format {
	case encoder.PNG:
		req.Depth = p.PNGDepth
		req.Legacy = p.Legacy && d.IE6Mode != directive.IE6None
	case encoder.GIF:
		req.Depth = colorreduce.Indexed
	default:
		req.Depth = colorreduce.Direct
	}
	return req
}

// resolveImagePath substitutes the path variables of the sprite image
// path. A deprecated sprite-image-uid without a matching variable in the
// path becomes a query string.
func resolveImagePath(d *directive.SpriteImage, data []byte, now time.Time) string {
	p := d.ImagePath
	if d.UID != directive.UIDNone && !strings.Contains(p, variable(directive.VarSHA512)) && !strings.Contains(p, variable(directive.VarDate)) {
		p += "?" + variable(d.UID.String())
	}
	if v := variable(directive.VarSHA512); strings.Contains(p, v) {
		sum := sha512.Sum512(data)
		p = strings.ReplaceAll(p, v, hex.EncodeToString(sum[:]))
	}
	if v := variable(directive.VarHash); strings.Contains(p, v) {
		p = strings.ReplaceAll(p, v, hasher.ContentHash(data, 16))
	}
	p = strings.ReplaceAll(p, variable(directive.VarDate), strconv.FormatInt(now.UnixMilli(), 10))
	return strings.ReplaceAll(p, variable(directive.VarSprite), d.ID)
}

func variable(name string) string { return "${" + name + "}" }

func stripQuery(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		return p[:i]
	}
	return p
}

// legacyName inserts "-ie6" before the extension of the file part of a
// sprite URL, keeping any query string.
func legacyName(url string) string {
	file, query := url, ""
	if i := strings.IndexByte(url, '?'); i >= 0 {
		file, query = url[:i], url[i:]
	}
	ext := path.Ext(file)
	return strings.TrimSuffix(file, ext) + "-ie6" + ext + query
}

// spriteFile returns where the sprite with the given URL, declared in
// cssFile, is written.
func spriteFile(cssFile, url string, cfg Config, log *message.Log) (string, bool) {
	p := stripQuery(url)
	file := cfg.resourcePath(cssFile, p, log)
	if file == "" {
		return "", false
	}
	if !strings.HasPrefix(p, "/") {
		file = cfg.reroot(file)
	}
	return file, true
}

func writeLegacy(img *image.Paletted, url, cssFile string, cfg Config, log *message.Log) (*manifest.Variant, bool) {
	data, err := (&encoder.PNGEncoder{}).Encode(img)
	if err != nil {
		log.Warning(message.CannotWriteSpriteImage, legacyName(url), err)
		return nil, false
	}
	file, ok := spriteFile(cssFile, legacyName(url), cfg, log)
	if !ok {
		return nil, false
	}
	if err := writeFile(file, data); err != nil {
		log.Warning(message.CannotWriteSpriteImage, file, err)
		return nil, false
	}
	return &manifest.Variant{
		Path: cfg.manifestPath(file),
		Size: int64(len(data)),
		Hash: hasher.ContentHash(data, 16),
	}, true
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func isPaletted(img image.Image) bool {
	_, ok := img.(*image.Paletted)
	return ok
}
