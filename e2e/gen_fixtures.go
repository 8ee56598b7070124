//go:build ignore

// gen_fixtures creates a small stylesheet project for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
//
// The generated tree is meant to be built with
//
//	smartsprites build --root-dir <output_dir>/css --manifest
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

const styleCSS = `/** sprite: icons; sprite-image: url('../img/icons.png'); sprite-layout: vertical */
/** sprite: bars; sprite-image: url('../img/bars-${hash}.png'); sprite-layout: horizontal; sprite-margin-right: 2px */
/** sprite: photos; sprite-image: url('../img/photos.jpg'); sprite-matte-color: #ffffff */

.home {
  background-image: url(../img/home.png); /** sprite-ref: icons; */
}

.search {
  background-image: url('../img/search.png') !important; /** sprite-ref: icons; sprite-alignment: right; sprite-margin-top: 4px */
}

.fade {
  background-image: url(../img/fade.png); /** sprite-ref: icons; sprite-alignment: repeat */
}

.bar-a {
  background-image: url(../img/bar-a.gif); /** sprite-ref: bars; */
}

.bar-b {
  background-image: url(../img/bar-b.gif); /** sprite-ref: bars; sprite-alignment: bottom */
}

.banner {
  background-image: url(../img/banner.jpg); /** sprite-ref: photos; */
}

.broken {
  background-image: url(../img/missing.png); /** sprite-ref: icons; */
}
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	img := filepath.Join(dir, "img")
	css := filepath.Join(dir, "css")
	for _, d := range []string{img, css} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			panic(err)
		}
	}

	writePNG(filepath.Join(img, "home.png"), solidWithBorder(16, 16, 40))
	writePNG(filepath.Join(img, "search.png"), alphaGradient(12, 12))
	writePNG(filepath.Join(img, "fade.png"), gradient(5, 20))
	writeGIF(filepath.Join(img, "bar-a.gif"), solidWithBorder(8, 24, 120))
	writeGIF(filepath.Join(img, "bar-b.gif"), solidWithBorder(8, 12, 180))
	writeJPEG(filepath.Join(img, "banner.jpg"), gradient(120, 40))

	if err := os.WriteFile(filepath.Join(css, "style.css"), []byte(styleCSS), 0o644); err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 6 images and 1 stylesheet in %s\n", dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func solidWithBorder(w, h int, base uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: base, G: base + 40, B: base + 70, A: 255}
			if x < 2 || x >= w-2 || y < 2 || y >= h-2 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

func create(path string) *os.File {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	return f
}

func writePNG(path string, img image.Image) {
	f := create(path)
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeGIF(path string, img image.Image) {
	f := create(path)
	defer f.Close()
	if err := gif.Encode(f, img, nil); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img image.Image) {
	f := create(path)
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		panic(err)
	}
}
