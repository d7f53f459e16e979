// Package store is a flat, filesystem-backed key/value store for encoded
// thumbnails. A key is a file name inside the store directory.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrAlreadyExists is returned by WriteIfAbsent when the key is present.
	// Callers treat it as a successful no-op.
	ErrAlreadyExists = errors.New("cache entry already exists")
	// ErrNotFound is returned by Delete when the key is absent.
	ErrNotFound = errors.New("cache entry not found")
	// ErrInvalidKey rejects keys that would escape the store directory.
	ErrInvalidKey = errors.New("invalid cache key")
)

// tempPattern names in-flight writes. The leading dot keeps them out of
// every managed prefix listing.
const tempPattern = ".wallthumb-*.tmp"

// Store owns all I/O inside one cache directory.
type Store struct {
	dir string
}

// Usage summarizes the entries matching a prefix.
type Usage struct {
	Entries int
	Bytes   int64
}

// New opens a store over an existing directory.
func New(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open cache dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open cache dir: %s is not a directory", dir)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Path returns where key lives on disk. It does not check existence.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key)
}

// Exists reports whether key is present as a regular file.
func (s *Store) Exists(key string) bool {
	if validateKey(key) != nil {
		return false
	}
	info, err := os.Lstat(s.Path(key))
	return err == nil && info.Mode().IsRegular()
}

// WriteIfAbsent stores data under key unless the key already exists. The
// bytes are written to a temp file first and only published once complete,
// so a failed write never leaves a partial entry behind. On ErrAlreadyExists
// the returned path is still valid.
func (s *Store) WriteIfAbsent(key string, data []byte) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	dst := s.Path(key)
	if s.Exists(key) {
		return dst, ErrAlreadyExists
	}

	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return "", fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", key, err)
	}

	if err := publish(tmpPath, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return dst, ErrAlreadyExists
		}
		return "", fmt.Errorf("publish %s: %w", key, err)
	}
	return dst, nil
}

// publish moves a finished temp file to dst without replacing an existing
// dst. A hard link fails atomically when dst exists; filesystems without
// link support fall back to a checked rename.
func publish(tmpPath, dst string) error {
	err := os.Link(tmpPath, dst)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return err
	}
	if _, statErr := os.Lstat(dst); statErr == nil {
		return fs.ErrExist
	}
	return os.Rename(tmpPath, dst)
}

// Delete removes key.
func (s *Store) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	err := os.Remove(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// List returns the sorted names of regular files whose name starts with
// prefix.
func (s *Store) List(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		keys = append(keys, e.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

// Usage counts entries matching prefix and their total size.
func (s *Store) Usage(prefix string) (Usage, error) {
	keys, err := s.List(prefix)
	if err != nil {
		return Usage{}, err
	}
	var u Usage
	for _, k := range keys {
		info, err := os.Lstat(s.Path(k))
		if err != nil {
			// Removed between listing and stat.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Usage{}, fmt.Errorf("stat %s: %w", k, err)
		}
		u.Entries++
		u.Bytes += info.Size()
	}
	return u, nil
}

func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
