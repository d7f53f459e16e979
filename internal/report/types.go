// Package report describes the outcome of cache runs. Reports are printed
// (text or JSON) and never written to the cache directory.
package report

// Outcome is the result for a single source or cache entry.
type Outcome string

const (
	Generated Outcome = "generated" // thumbnail created in this run
	Cached    Outcome = "cached"    // entry already present, no work done
	Failed    Outcome = "failed"
	Deleted   Outcome = "deleted" // orphan removed
	Orphaned  Outcome = "orphaned"
	Missing   Outcome = "missing" // source without an entry
)

// Item is one unit of work in a run.
type Item struct {
	Source  string  `json:"source,omitempty"`
	Key     string  `json:"key"`
	Outcome Outcome `json:"outcome"`
	Bytes   int64   `json:"bytes,omitempty"` // encoded size for generated entries
	Error   string  `json:"error,omitempty"`
	Err     error   `json:"-"`
}

// Populate is the result of a population run.
type Populate struct {
	Version     int           `json:"version"`
	GeneratedAt string        `json:"generated_at"`
	Profile     string        `json:"profile,omitempty"`
	SourceDir   string        `json:"source_dir"`
	CacheDir    string        `json:"cache_dir"`
	Workers     int           `json:"workers"`
	Items       []Item        `json:"items"`
	Stats       PopulateStats `json:"stats"`
}

// PopulateStats aggregates a population run.
type PopulateStats struct {
	Sources      int   `json:"sources"`
	Generated    int   `json:"generated"`
	Cached       int   `json:"cached"`
	Failed       int   `json:"failed"`
	BytesWritten int64 `json:"bytes_written"`
}

// Reclaim is the result of an orphan reclamation pass.
type Reclaim struct {
	Version     int    `json:"version"`
	GeneratedAt string `json:"generated_at"`
	SourceDir   string `json:"source_dir"`
	CacheDir    string `json:"cache_dir"`
	DryRun      bool   `json:"dry_run,omitempty"`
	Sources     int    `json:"sources"` // expected keys from the live scan
	Entries     int    `json:"entries"` // managed entries found in the cache
	Items       []Item `json:"items"`   // one per orphan
}

// Status compares the source directory with the cache without changing it.
type Status struct {
	Version     int      `json:"version"`
	GeneratedAt string   `json:"generated_at"`
	SourceDir   string   `json:"source_dir"`
	CacheDir    string   `json:"cache_dir"`
	Cached      []Item   `json:"cached"`
	Missing     []Item   `json:"missing"`
	Orphaned    []string `json:"orphaned"`
}

// SupportedReportVersion is the current schema version.
const SupportedReportVersion = 1
