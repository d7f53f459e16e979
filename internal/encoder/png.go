package encoder

import (
	"bytes"
	"image"
	"image/png"
)

// PNGEncoder encodes images to PNG using Go's standard library. It is the
// default thumbnail format: lossless, alpha-capable and always available.
type PNGEncoder struct {
	// Level trades encode speed for size. The zero value is png.DefaultCompression.
	Level png.CompressionLevel
}

func (e *PNGEncoder) Format() string      { return "png" }
func (e *PNGEncoder) Extension() string   { return "png" }
func (e *PNGEncoder) Available() bool     { return true }
func (e *PNGEncoder) SupportsAlpha() bool { return true }

func (e *PNGEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(64 * 1024) // a 320x180 RGBA preview rarely exceeds this

	enc := &png.Encoder{CompressionLevel: e.Level}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
