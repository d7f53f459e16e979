package encoder

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"sync"
)

// tool locates an external encoder binary once.
type tool struct {
	name string
	once sync.Once
	path string
}

func (t *tool) lookup() string {
	t.once.Do(func() {
		if p, err := exec.LookPath(t.name); err == nil {
			t.path = p
		}
	})
	return t.path
}

// runTool writes img as a lossless PNG temp file, runs the tool built by
// args(src, dst) and returns the bytes it wrote to dst.
func runTool(bin string, img image.Image, ext string, args func(src, dst string) []string) ([]byte, error) {
	srcFile, err := os.CreateTemp("", "wallthumb_src_*.png")
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath := srcFile.Name()
	defer os.Remove(srcPath)

	if err := png.Encode(srcFile, img); err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("encode temp png: %w", err)
	}
	if err := srcFile.Close(); err != nil {
		return nil, fmt.Errorf("close temp png: %w", err)
	}

	dstFile, err := os.CreateTemp("", "wallthumb_dst_*."+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dstFile.Name()
	dstFile.Close()
	defer os.Remove(dstPath)

	cmd := exec.Command(bin, args(srcPath, dstPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", bin, err, string(out))
	}
	return os.ReadFile(dstPath)
}

// WebPEncoder encodes images to WebP by shelling out to cwebp, keeping
// the alpha channel. Install: brew install webp / apt install webp
type WebPEncoder struct {
	cwebp tool
}

func NewWebPEncoder() *WebPEncoder {
	return &WebPEncoder{cwebp: tool{name: "cwebp"}}
}

func (e *WebPEncoder) Format() string      { return "webp" }
func (e *WebPEncoder) Extension() string   { return "webp" }
func (e *WebPEncoder) SupportsAlpha() bool { return true }
func (e *WebPEncoder) Available() bool     { return e.cwebp.lookup() != "" }

func (e *WebPEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	bin := e.cwebp.lookup()
	if bin == "" {
		return nil, fmt.Errorf("cwebp not found in PATH; install with: brew install webp")
	}
	if quality <= 0 || quality > 100 {
		quality = 82
	}
	return runTool(bin, img, "webp", func(src, dst string) []string {
		return []string{
			"-q", strconv.Itoa(quality),
			"-m", "4",
			"-alpha_q", "100",
			"-quiet",
			src,
			"-o", dst,
		}
	})
}

// AVIFEncoder encodes images to AVIF by shelling out to avifenc.
// Install: brew install libavif / apt install libavif-bin
type AVIFEncoder struct {
	avifenc tool
}

func NewAVIFEncoder() *AVIFEncoder {
	return &AVIFEncoder{avifenc: tool{name: "avifenc"}}
}

func (e *AVIFEncoder) Format() string      { return "avif" }
func (e *AVIFEncoder) Extension() string   { return "avif" }
func (e *AVIFEncoder) SupportsAlpha() bool { return true }
func (e *AVIFEncoder) Available() bool     { return e.avifenc.lookup() != "" }

func (e *AVIFEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	bin := e.avifenc.lookup()
	if bin == "" {
		return nil, fmt.Errorf("avifenc not found in PATH; install with: brew install libavif")
	}
	if quality <= 0 || quality > 100 {
		quality = 82
	}
	// avifenc quantizer: 0 best .. 63 worst.
	q := strconv.Itoa(63 - (quality * 63 / 100))
	return runTool(bin, img, "avif", func(src, dst string) []string {
		return []string{
			"--min", q,
			"--max", q,
			"--speed", "8",
			"-j", "1",
			src,
			dst,
		}
	})
}
