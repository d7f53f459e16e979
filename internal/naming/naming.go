// Package naming maps source image paths to cache keys.
//
// Keys depend only on the file name (and, for PathHash, the path relative
// to the source root), never on absolute paths or timestamps, so they are
// stable across runs and machines.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/wallthumb/internal/hasher"
)

// Prefix marks files in the cache directory that wallthumb manages.
const Prefix = "thumb_"

// Scheme derives the cache key for a source path.
type Scheme interface {
	Name(sourcePath string) string
}

// CanonicalName returns "thumb_<stem>.<ext>" for sourcePath. A missing
// stem or extension becomes the empty string.
func CanonicalName(sourcePath string) string {
	stem, ext := split(sourcePath)
	return Prefix + stem + "." + ext
}

// Stem is the default scheme. Sources with the same stem and extension in
// different subdirectories share one key.
type Stem struct{}

func (Stem) Name(sourcePath string) string { return CanonicalName(sourcePath) }

// PathHash appends a hash of the root-relative path to the stem, so nested
// sources with equal names get distinct keys.
type PathHash struct {
	Root string
}

func (p PathHash) Name(sourcePath string) string {
	rel, err := filepath.Rel(p.Root, sourcePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(sourcePath)
	}
	stem, ext := split(sourcePath)
	return Prefix + stem + "-" + hasher.PathHash(filepath.ToSlash(rel), 16) + "." + ext
}

// ByName resolves a scheme from its configuration name.
func ByName(name, root string) (Scheme, error) {
	switch strings.ToLower(name) {
	case "", "stem":
		return Stem{}, nil
	case "path-hash":
		return PathHash{Root: root}, nil
	default:
		return nil, fmt.Errorf("unknown naming scheme %q (want stem or path-hash)", name)
	}
}

// split returns the file stem and extension of path's base name. A name
// that only starts with a dot (".hidden") has no extension.
func split(path string) (stem, ext string) {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return "", ""
	}
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 {
		return base, ""
	}
	return base[:idx], base[idx+1:]
}
