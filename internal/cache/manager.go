// Package cache keeps a thumbnail cache consistent with a directory of
// source wallpapers.
//
// The Manager is the only owner of cache entry lifecycles: PopulateAll
// creates missing entries (absent -> present) and ReclaimOrphans deletes
// entries whose source is gone (present -> absent). Both compare against a
// fresh scan; nothing besides the cache directory itself is persisted.
//
// Callers must not run PopulateAll and ReclaimOrphans concurrently with
// each other: a reclamation computed from a stale scan could delete an
// entry population just wrote.
package cache

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/AnyUserName/wallthumb/internal/naming"
	"github.com/AnyUserName/wallthumb/internal/report"
	"github.com/AnyUserName/wallthumb/internal/scanner"
	"github.com/AnyUserName/wallthumb/internal/store"
	"github.com/AnyUserName/wallthumb/internal/workers"
	"github.com/rs/zerolog"
)

// DefaultMaxDepth is the source scan depth used by the CLI: only the
// files directly inside the source directory. The stem naming scheme
// assumes this flat layout; deeper scans should use naming.PathHash.
const DefaultMaxDepth = 0

// maxAutoWorkers caps the pool when Workers is not set.
const maxAutoWorkers = 16

// Generator produces the encoded thumbnail for one source image.
type Generator interface {
	Generate(sourcePath string, maxWidth, maxHeight int) ([]byte, error)
}

// Observer receives run events, typically for metrics. Implementations
// must be safe for concurrent use.
type Observer interface {
	ObserveItem(outcome report.Outcome, seconds float64)
	ObserveReclaim(deleted, failed int)
	ObservePopulate()
}

// Config holds all parameters for a Manager.
type Config struct {
	SourceDir string
	Store     *store.Store
	Generator Generator
	// Naming defaults to naming.Stem.
	Naming    naming.Scheme
	MaxWidth  int
	MaxHeight int
	// Workers bounds population concurrency. 0 sizes the pool from GOMAXPROCS.
	Workers int
	// Extensions defaults to scanner.ImageExtensions.
	Extensions []string
	// MaxDepth is passed to the scanner as is; 0 scans only the direct
	// children of SourceDir.
	MaxDepth int
	Observer Observer
	Logger   *zerolog.Logger
	Profile  string // recorded in reports only
}

// Manager orchestrates scanner, naming, store and generator.
type Manager struct {
	cfg    Config
	log    zerolog.Logger
	remove func(key string) error
}

// New validates cfg and creates a Manager.
func New(cfg Config) (*Manager, error) {
	if cfg.SourceDir == "" {
		return nil, errors.New("cache: source dir is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("cache: store is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("cache: generator is required")
	}
	if cfg.MaxWidth <= 0 || cfg.MaxHeight <= 0 {
		return nil, fmt.Errorf("cache: invalid bounds %dx%d", cfg.MaxWidth, cfg.MaxHeight)
	}
	if cfg.Naming == nil {
		cfg.Naming = naming.Stem{}
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = scanner.ImageExtensions
	}
	cfg.Workers = workers.Resolve(cfg.Workers, maxAutoWorkers)

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Manager{
		cfg:    cfg,
		log:    log.With().Str("component", "cache").Logger(),
		remove: cfg.Store.Delete,
	}, nil
}

// Workers returns the resolved pool size.
func (m *Manager) Workers() int { return m.cfg.Workers }

// CacheKeyFor returns the cache key for sourcePath.
func (m *Manager) CacheKeyFor(sourcePath string) string {
	return m.cfg.Naming.Name(sourcePath)
}

// CachePathFor returns where the thumbnail for sourcePath lives, whether or
// not it exists yet.
func (m *Manager) CachePathFor(sourcePath string) string {
	return m.cfg.Store.Path(m.CacheKeyFor(sourcePath))
}

func (m *Manager) scan() ([]string, error) {
	return scanner.Scan(m.cfg.SourceDir, scanner.Options{
		MaxDepth:   m.cfg.MaxDepth,
		Extensions: m.cfg.Extensions,
	})
}

// expectedKeys maps every key derived from the current sources to its
// source path.
func (m *Manager) expectedKeys(sources []string) map[string]string {
	keys := make(map[string]string, len(sources))
	for _, src := range sources {
		keys[m.CacheKeyFor(src)] = src
	}
	return keys
}

// PopulateAll generates a thumbnail for every source without a cache
// entry. Sources are processed in parallel; a failing source is recorded
// in the report and never affects the others. The returned error is only
// set when the source directory cannot be scanned.
func (m *Manager) PopulateAll() (*report.Populate, error) {
	sources, err := m.scan()
	if err != nil {
		return nil, fmt.Errorf("scan sources: %w", err)
	}

	m.log.Info().Int("sources", len(sources)).Int("workers", m.cfg.Workers).Msg("populating thumbnails")

	items := make([]report.Item, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, m.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			items[idx] = m.populateOne(path)
		}(i, src)
	}
	wg.Wait()

	rep := report.NewPopulate(m.cfg.SourceDir, m.cfg.Store.Dir(), m.cfg.Workers)
	rep.Profile = m.cfg.Profile
	rep.Items = items
	rep.ComputeStats()

	if rep.Stats.Failed > 0 {
		m.log.Warn().Int("failed", rep.Stats.Failed).Int("sources", rep.Stats.Sources).Msg("some thumbnails could not be generated")
	}
	m.log.Info().
		Int("generated", rep.Stats.Generated).
		Int("cached", rep.Stats.Cached).
		Int("failed", rep.Stats.Failed).
		Msg("population complete")

	if m.cfg.Observer != nil {
		m.cfg.Observer.ObservePopulate()
	}
	return rep, nil
}

// populateOne handles a single source: skip on hit, otherwise generate and
// store.
func (m *Manager) populateOne(src string) report.Item {
	start := time.Now()
	key := m.CacheKeyFor(src)
	item := report.Item{Source: src, Key: key}

	if m.cfg.Store.Exists(key) {
		item.Outcome = report.Cached
	} else {
		n, err := m.generate(src, key)
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			item.Outcome = report.Cached
		case err != nil:
			item.Outcome = report.Failed
			item.Err = err
			item.Error = err.Error()
			m.log.Warn().Err(err).Str("source", src).Msg("thumbnail failed")
		default:
			item.Outcome = report.Generated
			item.Bytes = n
			m.log.Debug().Str("source", src).Str("key", key).Int64("bytes", n).Msg("thumbnail created")
		}
	}

	if m.cfg.Observer != nil {
		m.cfg.Observer.ObserveItem(item.Outcome, time.Since(start).Seconds())
	}
	return item
}

func (m *Manager) generate(src, key string) (int64, error) {
	data, err := m.cfg.Generator.Generate(src, m.cfg.MaxWidth, m.cfg.MaxHeight)
	if err != nil {
		return 0, err
	}
	if _, err := m.cfg.Store.WriteIfAbsent(key, data); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// EnsureThumbnail returns the cache path for sourcePath, generating the
// entry first if it is missing.
func (m *Manager) EnsureThumbnail(sourcePath string) (string, error) {
	key := m.CacheKeyFor(sourcePath)
	path := m.cfg.Store.Path(key)
	if m.cfg.Store.Exists(key) {
		return path, nil
	}
	_, err := m.generate(sourcePath, key)
	if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return "", fmt.Errorf("ensure thumbnail for %s: %w", filepath.Base(sourcePath), err)
	}
	return path, nil
}

// PlanReclaim lists the managed entries that ReclaimOrphans would delete,
// without deleting anything.
func (m *Manager) PlanReclaim() (*report.Reclaim, error) {
	return m.reclaim(true)
}

// ReclaimOrphans deletes every managed cache entry whose source no longer
// exists. Scan or listing failures abort the pass before anything is
// deleted. Individual delete failures are logged and recorded, and the
// pass continues.
func (m *Manager) ReclaimOrphans() (*report.Reclaim, error) {
	return m.reclaim(false)
}

func (m *Manager) reclaim(dryRun bool) (*report.Reclaim, error) {
	sources, err := m.scan()
	if err != nil {
		return nil, fmt.Errorf("scan sources: %w", err)
	}
	expected := m.expectedKeys(sources)

	entries, err := m.cfg.Store.List(naming.Prefix)
	if err != nil {
		return nil, err
	}

	rep := report.NewReclaim(m.cfg.SourceDir, m.cfg.Store.Dir(), dryRun)
	rep.Sources = len(sources)
	rep.Entries = len(entries)

	var deleted, failed int
	for _, key := range entries {
		if _, ok := expected[key]; ok {
			continue
		}
		if dryRun {
			rep.Items = append(rep.Items, report.Item{Key: key, Outcome: report.Orphaned})
			continue
		}

		err := m.remove(key)
		switch {
		case err == nil, errors.Is(err, store.ErrNotFound):
			m.log.Info().Str("key", key).Msg("removed orphaned thumbnail")
			rep.Items = append(rep.Items, report.Item{Key: key, Outcome: report.Deleted})
			deleted++
		default:
			m.log.Warn().Err(err).Str("key", key).Msg("could not remove orphaned thumbnail")
			rep.Items = append(rep.Items, report.Item{Key: key, Outcome: report.Failed, Err: err, Error: err.Error()})
			failed++
		}
	}

	if !dryRun && m.cfg.Observer != nil {
		m.cfg.Observer.ObserveReclaim(deleted, failed)
	}
	return rep, nil
}

// Status reports which sources are cached, which are missing and which
// managed entries are orphaned. It changes nothing.
func (m *Manager) Status() (*report.Status, error) {
	sources, err := m.scan()
	if err != nil {
		return nil, fmt.Errorf("scan sources: %w", err)
	}
	entries, err := m.cfg.Store.List(naming.Prefix)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(entries))
	for _, k := range entries {
		present[k] = true
	}

	st := report.NewStatus(m.cfg.SourceDir, m.cfg.Store.Dir())
	for _, src := range sources {
		key := m.CacheKeyFor(src)
		if present[key] {
			st.Cached = append(st.Cached, report.Item{Source: src, Key: key, Outcome: report.Cached})
		} else {
			st.Missing = append(st.Missing, report.Item{Source: src, Key: key, Outcome: report.Missing})
		}
	}
	expected := m.expectedKeys(sources)
	for _, k := range entries {
		if _, ok := expected[k]; !ok {
			st.Orphaned = append(st.Orphaned, k)
		}
	}
	return st, nil
}
