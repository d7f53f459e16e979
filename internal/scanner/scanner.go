// Package scanner enumerates files below a root directory.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrFilesystem marks every traversal failure returned by Scan.
var ErrFilesystem = errors.New("filesystem error")

// Error describes a traversal failure at a specific path.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrFilesystem, e.Err}
}

// Unlimited disables the depth limit.
const Unlimited = -1

// Options controls a scan.
type Options struct {
	// MaxDepth is the deepest level yielded. Depth 0 is the root's direct
	// children. Use Unlimited for a full walk.
	MaxDepth int
	// Extensions restricts results to files whose extension matches one of
	// these, case-insensitively. A leading dot is optional. Empty means no filter.
	Extensions []string
}

// ImageExtensions lists the source formats the thumbnail decoder understands.
var ImageExtensions = []string{"png", "jpg", "jpeg", "webp", "gif", "bmp", "tif", "tiff"}

// Scan walks root and returns the regular files it finds. Hidden files and
// directories (leading dot) below root are skipped, as are symbolic links. Any I/O failure aborts the
// walk and no partial result is returned.
func Scan(root string, opts Options) ([]string, error) {
	walkRoot, err := resolveRoot(root)
	if err != nil {
		return nil, &Error{Path: root, Err: err}
	}

	exts := normalizeExtensions(opts.Extensions)

	var files []string
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &Error{Path: path, Err: err}
		}
		if path == walkRoot {
			return nil
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return &Error{Path: path, Err: err}
		}
		depth := strings.Count(rel, string(filepath.Separator))

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if opts.MaxDepth >= 0 && depth >= opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if opts.MaxDepth >= 0 && depth > opts.MaxDepth {
			return nil
		}
		if exts != nil && !matchExtension(path, exts) {
			return nil
		}

		files = append(files, filepath.Join(root, rel))
		return nil
	})
	if err != nil {
		var scanErr *Error
		if errors.As(err, &scanErr) {
			return nil, scanErr
		}
		return nil, &Error{Path: root, Err: err}
	}
	return files, nil
}

// resolveRoot follows a symlinked root once so that a linked wallpaper
// directory can still be scanned. Links below the root are not followed.
func resolveRoot(root string) (string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return "", err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(root)
		if err != nil {
			return "", err
		}
		info, err = os.Stat(target)
		if err != nil {
			return "", err
		}
		root = target
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory")
	}
	return root, nil
}

func normalizeExtensions(exts []string) map[string]bool {
	if len(exts) == 0 {
		return nil
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(e, "."))
		if e != "" {
			set[e] = true
		}
	}
	return set
}

// matchExtension reports whether path has an extension in exts. Files
// without an extension never match; a leading dot alone (".hidden") is
// not an extension.
func matchExtension(path string, exts map[string]bool) bool {
	base := filepath.Base(path)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 || idx == len(base)-1 {
		return false
	}
	return exts[strings.ToLower(base[idx+1:])]
}

// Matches reports whether a single path would pass the extension filter of
// a scan with the given extensions.
func Matches(path string, extensions []string) bool {
	exts := normalizeExtensions(extensions)
	return exts == nil || matchExtension(path, exts)
}
