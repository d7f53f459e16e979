//go:build ignore

// gen_fixtures creates a small wallpaper directory for manual smoke runs.
// Usage: go run gen_fixtures.go <wallpaper_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <wallpaper_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(filepath.Join(dir, "nature"), 0o755); err != nil {
		panic(err)
	}

	// 16:9 desktop wallpaper, fits the preview profile exactly.
	writeJPEG(filepath.Join(dir, "city.jpg"), sky(1920, 1080))
	// Portrait phone wallpaper.
	writePNG(filepath.Join(dir, "phone.png"), sky(1080, 1920))
	// Ultrawide with a translucent vignette; checks alpha survives.
	writePNG(filepath.Join(dir, "ultrawide.png"), vignette(3440, 1440))
	// Smaller than every profile bound; must not be upscaled.
	writePNG(filepath.Join(dir, "tiny.png"), sky(100, 50))
	// One level down, picked up by the default scan depth.
	writePNG(filepath.Join(dir, "nature", "forest.png"), stripes(2560, 1440))

	// Must be reported as a failure without affecting the others.
	must(os.WriteFile(filepath.Join(dir, "broken.png"), []byte("\x89PNG\r\n\x1a\ntruncated"), 0o644))
	// Ignored by the extension filter.
	must(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a wallpaper\n"), 0o644))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 5 wallpapers, 1 broken image and 1 text file in %s\n", dir)
}

func sky(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(40 + y*120/h),
				G: uint8(90 + x*100/w),
				B: 200,
				A: 255,
			})
		}
	}
	return img
}

func stripes(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 30, G: 110, B: 50, A: 255}
			if (x/64)%2 == 0 {
				c = color.NRGBA{R: 20, G: 80, B: 35, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func vignette(w, h int) *image.NRGBA {
	img := sky(w, h)
	cx, cy := w/2, h/2
	maxD := cx*cx + cy*cy
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-cx, y-cy
			c := img.NRGBAAt(x, y)
			c.A = uint8(255 - (dx*dx+dy*dy)*200/maxD)
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	must(err)
	defer f.Close()
	must(png.Encode(f, img))
}

func writeJPEG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	must(err)
	defer f.Close()
	must(jpeg.Encode(f, img, &jpeg.Options{Quality: 85}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
