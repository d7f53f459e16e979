// Package encoder turns a resized thumbnail into bytes for the cache.
package encoder

import (
	"image"
)

// Encoder encodes an image to a specific format.
type Encoder interface {
	// Format returns the output format name (e.g. "png", "webp", "avif").
	Format() string

	// Encode converts the image to bytes at the given quality (1-100).
	// Lossless encoders ignore quality.
	Encode(img image.Image, quality int) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp, avifenc) may not be installed.
	Available() bool

	// SupportsAlpha reports whether the output keeps the alpha channel.
	// Thumbnails are always RGBA, so only alpha-capable encoders are used.
	SupportsAlpha() bool

	// Extension returns the file extension without dot.
	Extension() string
}
