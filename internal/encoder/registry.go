package encoder

import (
	"fmt"
	"strings"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = "png"

// priority is the order formats are listed in.
var priority = []string{"png", "webp", "avif"}

// Registry holds all available encoders keyed by format.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry, probing all encoders for availability.
func NewRegistry() *Registry {
	return newRegistry(&PNGEncoder{}, NewWebPEncoder(), NewAVIFEncoder())
}

func newRegistry(all ...Encoder) *Registry {
	r := &Registry{encoders: make(map[string]Encoder)}
	for _, enc := range all {
		if enc.Available() {
			r.encoders[enc.Format()] = enc
		}
	}
	return r
}

// Get returns an encoder for the given format, or nil if unavailable.
func (r *Registry) Get(format string) Encoder {
	return r.encoders[strings.ToLower(format)]
}

// Available returns all available format names.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range priority {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// Resolve returns the encoder for format. Thumbnails are RGBA, so formats
// that drop alpha are refused. An empty format selects DefaultFormat.
func (r *Registry) Resolve(format string) (Encoder, error) {
	if format == "" {
		format = DefaultFormat
	}
	format = strings.ToLower(format)
	if format == "jpg" || format == "jpeg" {
		return nil, fmt.Errorf("format %q cannot store an alpha channel", format)
	}
	enc := r.encoders[format]
	if enc == nil {
		return nil, fmt.Errorf("format %q unavailable (%s)", format, r.String())
	}
	if !enc.SupportsAlpha() {
		return nil, fmt.Errorf("format %q cannot store an alpha channel", format)
	}
	return enc, nil
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	return fmt.Sprintf("encoders: %s", strings.Join(avail, ", "))
}
