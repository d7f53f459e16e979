// Package thumbnail derives a preview image from a source wallpaper:
// decode, aspect-preserving downscale, encode.
package thumbnail

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/AnyUserName/wallthumb/internal/encoder"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDecode marks a source that could not be decoded.
	ErrDecode = errors.New("decode failed")
	// ErrEncode marks a thumbnail that could not be encoded.
	ErrEncode = errors.New("encode failed")
	// ErrInvalidBounds rejects non-positive maximum dimensions.
	ErrInvalidBounds = errors.New("invalid thumbnail bounds")
)

// DecodeError reports a malformed or unsupported source image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Path, e.Err) }

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// EncodeError reports a failure to encode the resized image.
type EncodeError struct {
	Path   string
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s as %s: %v", e.Path, e.Format, e.Err)
}

func (e *EncodeError) Unwrap() []error { return []error{ErrEncode, e.Err} }

// PhaseObserver receives the duration of each generation phase
// ("decode", "resize", "encode").
type PhaseObserver interface {
	ObservePhase(phase string, seconds float64)
}

// Generator produces encoded thumbnails with a fixed filter and encoder.
type Generator struct {
	Encoder encoder.Encoder
	Filter  imaging.ResampleFilter
	Quality int
	// Phases is optional.
	Phases PhaseObserver
}

// Generate decodes sourcePath, fits it within maxWidth x maxHeight using
// TargetSize and returns the encoded bytes.
func (g *Generator) Generate(sourcePath string, maxWidth, maxHeight int) ([]byte, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidBounds, maxWidth, maxHeight)
	}

	start := time.Now()
	img, err := decode(sourcePath)
	if err != nil {
		return nil, err
	}
	g.observe("decode", start)

	start = time.Now()
	b := img.Bounds()
	w, h := TargetSize(b.Dx(), b.Dy(), maxWidth, maxHeight)
	thumb := imaging.Resize(img, w, h, g.Filter)
	g.observe("resize", start)

	start = time.Now()
	data, err := g.Encoder.Encode(thumb, g.Quality)
	if err != nil {
		return nil, &EncodeError{Path: sourcePath, Format: g.Encoder.Format(), Err: err}
	}
	g.observe("encode", start)
	return data, nil
}

func (g *Generator) observe(phase string, start time.Time) {
	if g.Phases != nil {
		g.Phases.ObservePhase(phase, time.Since(start).Seconds())
	}
}

// Generate is the one-shot form of Generator.Generate.
func Generate(sourcePath string, maxWidth, maxHeight int, filter imaging.ResampleFilter, enc encoder.Encoder) ([]byte, error) {
	g := &Generator{Encoder: enc, Filter: filter}
	return g.Generate(sourcePath, maxWidth, maxHeight)
}

// decode opens and decodes a source image, applying EXIF orientation.
func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())}
	}
	return img, nil
}

// TargetSize computes the thumbnail size for an origW x origH source.
// The longer original side is capped by its bound (never upscaled) and the
// other side is derived from the aspect ratio, then capped by its own bound.
// Both results are at least 1.
func TargetSize(origW, origH, maxW, maxH int) (int, int) {
	if origW <= 0 || origH <= 0 {
		return 1, 1
	}
	ratio := float64(origW) / float64(origH)

	var w, h int
	if origW >= origH {
		w = min(maxW, origW)
		h = min(maxH, int(float64(w)/ratio))
	} else {
		h = min(maxH, origH)
		w = min(maxW, int(float64(h)*ratio))
	}
	return max(w, 1), max(h, 1)
}

var filters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"hermite":    imaging.Hermite,
	"mitchell":   imaging.MitchellNetravali,
	"catmullrom": imaging.CatmullRom,
	"bspline":    imaging.BSpline,
	"gaussian":   imaging.Gaussian,
	"lanczos":    imaging.Lanczos,
}

// ParseFilter resolves a resampling filter by name.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter %q", name)
	}
	return f, nil
}
