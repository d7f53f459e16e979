// Package watch keeps the cache in step with the source directory while
// wallthumb runs. Events are handled one at a time, so population and
// reclamation never overlap.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/wallthumb/internal/metrics"
	"github.com/AnyUserName/wallthumb/internal/report"
	"github.com/AnyUserName/wallthumb/internal/scanner"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Manager is the part of cache.Manager the watcher drives.
type Manager interface {
	EnsureThumbnail(sourcePath string) (string, error)
	ReclaimOrphans() (*report.Reclaim, error)
}

// Options mirror the scan settings of the manager being driven.
type Options struct {
	Extensions []string
	MaxDepth   int
	Logger     *zerolog.Logger
}

// Watcher turns filesystem events below root into cache operations.
type Watcher struct {
	root string
	mgr  Manager
	opts Options
	log  zerolog.Logger
	fsw  *fsnotify.Watcher
}

// New starts watching root and every subdirectory within MaxDepth.
func New(root string, mgr Manager, opts Options) (*Watcher, error) {
	if len(opts.Extensions) == 0 {
		opts.Extensions = scanner.ImageExtensions
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		root: root,
		mgr:  mgr,
		opts: opts,
		log:  log.With().Str("component", "watch").Logger(),
		fsw:  fsw,
	}
	if err := fsw.Add(root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	w.addTree(root)
	return w, nil
}

// Watched returns the directories currently watched.
func (w *Watcher) Watched() []string { return w.fsw.WatchList() }

// Close stops watching. Run returns once its event channel drains.
func (w *Watcher) Close() error { return w.fsw.Close() }

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.log.Info().Str("root", w.root).Int("dirs", len(w.fsw.WatchList())).Msg("watching source directory")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

// handle dispatches a single event.
func (w *Watcher) handle(ev fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return
	}
	kind := eventType(ev.Op)
	if kind == "" {
		return
	}
	metrics.WatchEventsTotal.WithLabelValues(kind).Inc()
	w.log.Debug().Str("event", kind).Str("path", ev.Name).Msg("source event")

	switch kind {
	case "create", "write":
		info, err := os.Lstat(ev.Name)
		if err != nil {
			// Gone again before we looked; a remove event follows.
			return
		}
		if info.IsDir() {
			if kind == "create" && w.dirWithinDepth(ev.Name) {
				w.addDir(ev.Name)
			}
			return
		}
		if info.Mode().IsRegular() {
			w.ensure(ev.Name)
		}
	case "remove", "rename":
		w.reclaim()
	}
}

func (w *Watcher) ensure(path string) {
	if !w.fileWithinDepth(path) || !scanner.Matches(path, w.opts.Extensions) {
		return
	}
	cached, err := w.mgr.EnsureThumbnail(path)
	if err != nil {
		w.log.Warn().Err(err).Str("source", path).Msg("thumbnail failed")
		return
	}
	w.log.Info().Str("source", path).Str("thumbnail", cached).Msg("thumbnail ready")
}

func (w *Watcher) reclaim() {
	rep, err := w.mgr.ReclaimOrphans()
	if err != nil {
		w.log.Error().Err(err).Msg("reclaim failed")
		return
	}
	if n := len(rep.Deleted()); n > 0 {
		w.log.Info().Int("deleted", n).Msg("orphaned thumbnails removed")
	}
}

// addDir watches a directory that appeared after startup and ensures
// thumbnails for images it already holds.
func (w *Watcher) addDir(dir string) {
	if err := w.fsw.Add(dir); err != nil {
		w.log.Warn().Err(err).Str("dir", dir).Msg("could not watch directory")
		return
	}
	w.addTree(dir)

	files, err := scanner.Scan(dir, scanner.Options{
		MaxDepth:   w.remainingDepth(dir),
		Extensions: w.opts.Extensions,
	})
	if err != nil {
		w.log.Warn().Err(err).Str("dir", dir).Msg("could not scan new directory")
		return
	}
	for _, f := range files {
		w.ensure(f)
	}
}

// addTree watches the subdirectories of dir that are within depth.
func (w *Watcher) addTree(dir string) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir || !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !w.dirWithinDepth(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn().Err(err).Str("dir", path).Msg("could not watch directory")
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		w.log.Warn().Err(err).Str("dir", dir).Msg("could not walk directory")
	}
}

// level is the scanner depth of path: 0 for the root's direct children.
func (w *Watcher) level(path string) int {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return -1
	}
	return strings.Count(rel, string(filepath.Separator))
}

func (w *Watcher) fileWithinDepth(path string) bool {
	l := w.level(path)
	return l >= 0 && (w.opts.MaxDepth < 0 || l <= w.opts.MaxDepth)
}

// dirWithinDepth reports whether the children of dir can hold sources.
func (w *Watcher) dirWithinDepth(dir string) bool {
	l := w.level(dir)
	return l >= 0 && (w.opts.MaxDepth < 0 || l+1 <= w.opts.MaxDepth)
}

func (w *Watcher) remainingDepth(dir string) int {
	if w.opts.MaxDepth < 0 {
		return scanner.Unlimited
	}
	return w.opts.MaxDepth - w.level(dir) - 1
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	default:
		return ""
	}
}
