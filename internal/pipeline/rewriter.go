package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hazendaz/smartsprites-sub000/internal/message"
)

// Properties that, set later in the same rule, override the generated
// declarations.
var overridingProperties = []string{"background-position", "background-image"}

const spriteMark = " /** sprite:sprite */"

// rewriteCSS writes the processed copy of cssFile and returns its path.
// Sprite image directive lines are dropped and every sprite reference
// line in placements is replaced with declarations pointing into the
// sprite. Everything else is copied unchanged.
func rewriteCSS(cssFile string, directiveLines map[int]bool, placements map[int]placement, cfg Config) (string, error) {
	out := cfg.cssOutputPath(cssFile)
	cfg.Log.Info(message.ReadingCSS, cssFile)

	in, err := os.Open(cssFile)
	if err != nil {
		cfg.Log.Error(message.CannotReadCSSFile, cssFile, err)
		return "", fmt.Errorf("open %s: %w", cssFile, err)
	}
	defer in.Close()

	var sb strings.Builder
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	lastReplaced := -1
	for n := 0; sc.Scan(); n++ {
		line := sc.Text()
		if strings.Contains(line, "}") {
			lastReplaced = -1
		}
		if directiveLines[n] {
			continue
		}
		if pl, ok := placements[n]; ok {
			lastReplaced = n
			writePlacement(&sb, cssFile, pl, cfg.MarkSpriteImages)
			continue
		}
		if lastReplaced >= 0 {
			for _, prop := range overridingProperties {
				if strings.Contains(line, prop) {
					cfg.Log.At(cssFile, n).Warning(message.OverridingPropertyFound, prop)
				}
			}
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		cfg.Log.Error(message.CannotReadCSSFile, cssFile, err)
		return "", fmt.Errorf("read %s: %w", cssFile, err)
	}

	cfg.Log.Info(message.WritingCSS, out)
	if err := writeFile(out, []byte(sb.String())); err != nil {
		cfg.Log.Error(message.CannotWriteCSSFile, out, err)
		return "", err
	}
	return out, nil
}

func writePlacement(sb *strings.Builder, cssFile string, pl placement, mark bool) {
	important := ""
	if pl.repl.Important {
		important = " !important"
	}
	marker := ""
	if mark {
		marker = spriteMark
	}

	fmt.Fprintf(sb, "  background-image: url('%s')%s;%s\n", relativeURL(cssFile, pl.sprite.cssFile, pl.sprite.url), important, marker)
	if pl.sprite.legacyURL != "" {
		fmt.Fprintf(sb, "  -background-image: url('%s')%s;%s\n", relativeURL(cssFile, pl.sprite.cssFile, pl.sprite.legacyURL), important, marker)
	}
	fmt.Fprintf(sb, "  background-position: %s%s;\n", pl.repl.Position(), important)
	if pl.sprite.size != "" {
		fmt.Fprintf(sb, "  background-size: %s;\n", pl.sprite.size)
	}
}

// relativeURL rewrites url, which is relative to declaringCSS, to be
// relative to cssFile. Absolute URLs are returned unchanged.
func relativeURL(cssFile, declaringCSS, url string) string {
	if strings.HasPrefix(url, "/") || strings.Contains(url, "://") {
		return url
	}
	rel, err := filepath.Rel(filepath.Dir(cssFile), filepath.Dir(declaringCSS))
	if err != nil {
		return url
	}
	file, query := url, ""
	if i := strings.IndexByte(url, '?'); i >= 0 {
		file, query = url[:i], url[i:]
	}
	return path.Join(filepath.ToSlash(rel), file) + query
}
