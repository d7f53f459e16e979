// Package profile holds the named thumbnail policies. A run uses exactly
// one profile; there is no per-image transformation pipeline.
package profile

import "fmt"

// Profile defines the resize and encode policy for cache entries.
type Profile struct {
	Name      string
	MaxWidth  int
	MaxHeight int
	Filter    string // resampling filter name, see thumbnail.ParseFilter
	Format    string // output encoder format
	Quality   int    // encoding quality 1-100, ignored by lossless formats
}

// DefaultName is the profile used when none is requested.
const DefaultName = "preview"

// Built-in profiles.
var profiles = map[string]Profile{
	// Fast previews for the wallpaper picker grid.
	"preview": {
		Name:      "preview",
		MaxWidth:  320,
		MaxHeight: 180,
		Filter:    "nearest",
		Format:    "png",
		Quality:   82,
	},
	"preview-hq": {
		Name:      "preview-hq",
		MaxWidth:  640,
		MaxHeight: 360,
		Filter:    "lanczos",
		Format:    "png",
		Quality:   90,
	},
	"minimal": {
		Name:      "minimal",
		MaxWidth:  160,
		MaxHeight: 90,
		Filter:    "nearest",
		Format:    "png",
		Quality:   75,
	},
}

// Get returns a profile by name. Falls back to preview if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[DefaultName]
	if name != "" {
		p.Name = name // preserve requested name
	}
	return p
}

// Known reports whether name is a built-in profile.
func Known(name string) bool {
	_, ok := profiles[name]
	return ok
}

// Override applies non-zero fields on top of p.
func (p Profile) Override(width, height int, filter, format string) Profile {
	if width > 0 {
		p.MaxWidth = width
	}
	if height > 0 {
		p.MaxHeight = height
	}
	if filter != "" {
		p.Filter = filter
	}
	if format != "" {
		p.Format = format
	}
	return p
}

// Validate checks that the bounds are usable.
func (p Profile) Validate() error {
	if p.MaxWidth <= 0 || p.MaxHeight <= 0 {
		return fmt.Errorf("profile %s: bounds must be positive, got %dx%d", p.Name, p.MaxWidth, p.MaxHeight)
	}
	return nil
}

func (p Profile) String() string {
	return fmt.Sprintf("%s (%dx%d, %s, %s)", p.Name, p.MaxWidth, p.MaxHeight, p.Filter, p.Format)
}
