package pipeline

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazendaz/smartsprites-sub000/internal/directive"
	"github.com/hazendaz/smartsprites-sub000/internal/manifest"
	"github.com/hazendaz/smartsprites-sub000/internal/message"
	"github.com/hazendaz/smartsprites-sub000/internal/profile"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeFileT(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFileT(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// fixture lays out:
//
//	root/css/style.css    declares sprite "icons" and references two images
//	root/css/more.css     references "icons" from another file
//	root/img/{red,blue}.png
func fixture(t *testing.T) string {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "img", "red.png"), 4, 4, color.NRGBA{R: 0xff, A: 0xff})
	writePNG(t, filepath.Join(root, "img", "blue.png"), 4, 6, color.NRGBA{B: 0xff, A: 0xff})
	writeFileT(t, filepath.Join(root, "css", "style.css"), strings.Join([]string{
		"/** sprite: icons; sprite-image: url('../img/${sprite}.png'); sprite-layout: vertical */",
		".red {",
		"  background-image: url(../img/red.png); /** sprite-ref: icons; */",
		"  color: red;",
		"}",
		".blue {",
		"  background-image: url(../img/blue.png) !important; /** sprite-ref: icons; sprite-margin-top: 2px */",
		"  background-position: 0 0;",
		"}",
	}, "\n"))
	writeFileT(t, filepath.Join(root, "css", "sub", "more.css"), strings.Join([]string{
		".again {",
		"  background-image: url(../../img/red.png); /** sprite-ref: icons; */",
		"}",
	}, "\n"))
	return root
}

func TestRun_BuildsSpriteAndRewritesCSS(t *testing.T) {
	root := fixture(t)
	mem := &message.Memory{}
	p := New(Config{
		RootDir: root,
		Profile: profile.Get("default"),
		Workers: 2,
		Log:     message.New(mem),
	})

	m, err := p.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	sprite, ok := m.Sprites["icons"]
	if !ok {
		t.Fatalf("sprite icons missing from manifest: %+v", m.Sprites)
	}
	if sprite.Width != 4 || sprite.Height != 4+2+6 {
		t.Errorf("sprite size: got %dx%d, want 4x12", sprite.Width, sprite.Height)
	}
	if sprite.Path != "img/icons.png" {
		t.Errorf("sprite path: got %q", sprite.Path)
	}
	if !sprite.Indexed {
		t.Error("two opaque colors should be written indexed")
	}
	if len(sprite.Images) != 3 || !sprite.Images[2].Shared {
		t.Errorf("images: got %+v", sprite.Images)
	}

	f, err := os.Open(filepath.Join(root, "img", "icons.png"))
	if err != nil {
		t.Fatalf("open sprite: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode sprite: %v", err)
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r>>8 != 0xff {
		t.Error("red image should be at the top")
	}
	if _, _, b, _ := img.At(0, 6).RGBA(); b>>8 != 0xff {
		t.Error("blue image should start below its top margin")
	}

	css := readFileT(t, filepath.Join(root, "css", "style-sprite.css"))
	want := strings.Join([]string{
		".red {",
		"  background-image: url('../img/icons.png');",
		"  background-position: left 0;",
		"  color: red;",
		"}",
		".blue {",
		"  background-image: url('../img/icons.png') !important;",
		"  background-position: left -4px !important;",
		"  background-position: 0 0;",
		"}",
		"",
	}, "\n")
	if css != want {
		t.Errorf("rewritten css:\n%s\nwant:\n%s", css, want)
	}

	more := readFileT(t, filepath.Join(root, "css", "sub", "more-sprite.css"))
	if !strings.Contains(more, "url('../../img/icons.png')") {
		t.Errorf("sprite url not relative to more.css:\n%s", more)
	}

	var overriding []message.Message
	for _, msg := range mem.Messages() {
		if msg.Kind == message.OverridingPropertyFound {
			overriding = append(overriding, msg)
		}
	}
	if len(overriding) != 1 || overriding[0].Line != 7 {
		t.Errorf("expected one overriding warning on line 7, got %+v", overriding)
	}
	if !mem.Has(message.ProcessingCompletedWithWarnings) {
		t.Error("expected completion status with warnings")
	}
	if len(m.CSS) != 2 {
		t.Errorf("manifest css: got %v", m.CSS)
	}
	if m.BuildInfo == nil || m.BuildInfo.Warnings != 1 {
		t.Errorf("build info: got %+v", m.BuildInfo)
	}
}

func TestRun_OutputDirAndLegacy(t *testing.T) {
	root := fixture(t)
	writePNG(t, filepath.Join(root, "img", "glass.png"), 3, 3, color.NRGBA{G: 0xff, A: 0x80})
	writeFileT(t, filepath.Join(root, "css", "glass.css"), strings.Join([]string{
		"/** sprite: glass; sprite-image: url(../img/glass-${hash}.png); sprite-matte-color: #000000 */",
		"  background-image: url(../img/glass.png); /** sprite-ref: glass; */",
		"  background-image: url(../img/red.png); /** sprite-ref: glass; */",
	}, "\n"))

	out := filepath.Join(t.TempDir(), "out")
	mem := &message.Memory{}
	p := New(Config{
		RootDir:          root,
		OutputDir:        out,
		Profile:          profile.Get("legacy-ie6"),
		MarkSpriteImages: true,
		Log:              message.New(mem),
	})
	m, err := p.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	glass, ok := m.Sprites["glass"]
	if !ok {
		t.Fatal("sprite glass missing")
	}
	if glass.Indexed {
		t.Error("partial transparency must stay in direct color")
	}
	if glass.Legacy == nil {
		t.Fatal("expected a legacy variant")
	}
	if !strings.HasSuffix(glass.Legacy.Path, "-ie6.png") {
		t.Errorf("legacy path: got %q", glass.Legacy.Path)
	}
	if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(glass.Path))); err != nil {
		t.Errorf("sprite not written under the output dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(glass.Path))); err == nil {
		t.Error("sprite must not be written into the root dir")
	}

	css := readFileT(t, filepath.Join(out, "css", "glass-sprite.css"))
	if !strings.Contains(css, "  -background-image: url('../img/glass-") || !strings.Contains(css, spriteMark) {
		t.Errorf("legacy declaration or mark missing:\n%s", css)
	}
	if strings.Contains(css, "${hash}") {
		t.Errorf("path variable not resolved:\n%s", css)
	}
	if !mem.Has(message.AlphaChannelLossInIndexedColor) {
		t.Error("legacy quantization should report alpha loss")
	}
}

func TestRun_ReportsBrokenReferences(t *testing.T) {
	root := t.TempDir()
	writeFileT(t, filepath.Join(root, "img", "broken.png"), "not a png")
	writePNG(t, filepath.Join(root, "img", "ok.png"), 2, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 0xff})
	writeFileT(t, filepath.Join(root, "a.css"), strings.Join([]string{
		"/** sprite: s; sprite-image: url(img/s.gif); */",
		"  background-image: url(img/missing.png); /** sprite-ref: s; */",
		"  background-image: url(img/broken.png); /** sprite-ref: s; */",
		"  background-image: url(/img/ok.png); /** sprite-ref: s; */",
		"  background-image: url(img/ok.png); /** sprite-ref: s; */",
	}, "\n"))

	mem := &message.Memory{}
	m, err := New(Config{RootDir: root, Profile: profile.Get("default"), Log: message.New(mem)}).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, k := range []message.Kind{
		message.CannotLoadImage,
		message.UnsupportedIndividualImageFormat,
		message.AbsolutePathAndNoDocumentRoot,
	} {
		if !mem.Has(k) {
			t.Errorf("missing warning of kind %d", k)
		}
	}
	s := m.Sprites["s"]
	if s.Format != "gif" || len(s.Images) != 1 {
		t.Errorf("sprite: got %+v", s)
	}

	css := readFileT(t, filepath.Join(root, "a-sprite.css"))
	if !strings.Contains(css, "url(img/missing.png)") {
		t.Errorf("unresolved references must be kept as is:\n%s", css)
	}
}

func TestRun_EmptyGroupDoesNotAbortOthers(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "img", "ok.png"), 3, 3, color.NRGBA{G: 0xff, A: 0xff})
	badLine := "  background-image: url(img/missing.png); /** sprite-ref: bad; */"
	writeFileT(t, filepath.Join(root, "a.css"), strings.Join([]string{
		"/** sprite: bad; sprite-image: url(img/bad.png); */",
		"/** sprite: good; sprite-image: url(img/good.png); */",
		".a {",
		badLine,
		"}",
		".b {",
		"  background-image: url(img/ok.png); /** sprite-ref: good; */",
		"}",
	}, "\n"))

	mem := &message.Memory{}
	m, err := New(Config{RootDir: root, Profile: profile.Get("default"), Log: message.New(mem)}).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !mem.Has(message.EmptySprite) {
		t.Errorf("expected an empty sprite warning, got %v", mem.Kinds())
	}
	if len(m.Sprites) != 1 {
		t.Fatalf("sprites: got %v, want only good", m.Sprites)
	}
	if _, ok := m.Sprites["good"]; !ok {
		t.Fatalf("sprite good missing: %v", m.Sprites)
	}
	if _, err := os.Stat(filepath.Join(root, "img", "bad.png")); err == nil {
		t.Error("empty sprite must not be written")
	}

	css := readFileT(t, filepath.Join(root, "a-sprite.css"))
	want := strings.Join([]string{
		".a {",
		badLine,
		"}",
		".b {",
		"  background-image: url('img/good.png');",
		"  background-position: left 0;",
		"}",
		"",
	}, "\n")
	if css != want {
		t.Errorf("rewritten css:\n%s\nwant:\n%s", css, want)
	}
}

func TestRun_NoCSS(t *testing.T) {
	_, err := New(Config{RootDir: t.TempDir(), Profile: profile.Get("default")}).Run()
	if err == nil {
		t.Fatal("expected an error for an empty root dir")
	}
}

func parseDirective(t *testing.T, text string) *directive.SpriteImage {
	t.Helper()
	d := directive.ParseSpriteImage(text, nil)
	if d == nil {
		t.Fatalf("cannot parse %q", text)
	}
	return d
}

func TestResolveImagePath(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	tests := []struct {
		text string
		want string
	}{
		{"sprite: s; sprite-image: url(img/${sprite}.png)", "img/s.png"},
		{"sprite: s; sprite-image: url(img/s.png?${date})", "img/s.png?1700000000000"},
		{"sprite: s; sprite-image: url(img/s.png); sprite-image-uid: date", "img/s.png?1700000000000"},
		{"sprite: s; sprite-image: url(img/s-${hash}.png)", "img/s-ef46db3751d8e999.png"},
	}
	for _, tt := range tests {
		d := parseDirective(t, tt.text)
		if got := resolveImagePath(d, nil, now); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.text, got, tt.want)
		}
	}

	d := parseDirective(t, "sprite: s; sprite-image: url(s.png?${sha512})")
	got := resolveImagePath(d, []byte("x"), now)
	if len(got) != len("s.png?")+128 {
		t.Errorf("sha512 not substituted: %q", got)
	}
}

func TestLegacyName(t *testing.T) {
	tests := map[string]string{
		"img/icons.png":       "img/icons-ie6.png",
		"img/icons.png?12345": "img/icons-ie6.png?12345",
		"../a.b/sprite":       "../a.b/sprite-ie6",
	}
	for in, want := range tests {
		if got := legacyName(in); got != want {
			t.Errorf("legacyName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRelativeURL(t *testing.T) {
	tests := []struct {
		css, declaring, url, want string
	}{
		{"css/a.css", "css/a.css", "../img/s.png", "../img/s.png"},
		{"css/sub/b.css", "css/a.css", "../img/s.png?v=1", "../../img/s.png?v=1"},
		{"b.css", "css/a.css", "../img/s.png", "img/s.png"},
		{"css/b.css", "other/a.css", "/img/s.png", "/img/s.png"},
	}
	for _, tt := range tests {
		if got := relativeURL(filepath.FromSlash(tt.css), filepath.FromSlash(tt.declaring), tt.url); got != tt.want {
			t.Errorf("relativeURL(%s, %s, %s) = %q, want %q", tt.css, tt.declaring, tt.url, got, tt.want)
		}
	}
}

func TestManifestWritable(t *testing.T) {
	root := fixture(t)
	m, err := New(Config{RootDir: root, Profile: profile.Get("indexed")}).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := manifest.WriteJSON(m, filepath.Join(root, manifest.FileName)); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if m.Stats.TotalSprites != 1 || m.Stats.SharedImages != 1 {
		t.Errorf("stats: got %+v", m.Stats)
	}
}
