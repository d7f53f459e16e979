package report

import (
	"encoding/json"
	"io"
	"time"
)

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// NewPopulate creates an empty population report.
func NewPopulate(sourceDir, cacheDir string, workers int) *Populate {
	return &Populate{
		Version:     SupportedReportVersion,
		GeneratedAt: now(),
		SourceDir:   sourceDir,
		CacheDir:    cacheDir,
		Workers:     workers,
		Items:       []Item{},
	}
}

// NewReclaim creates an empty reclamation report.
func NewReclaim(sourceDir, cacheDir string, dryRun bool) *Reclaim {
	return &Reclaim{
		Version:     SupportedReportVersion,
		GeneratedAt: now(),
		SourceDir:   sourceDir,
		CacheDir:    cacheDir,
		DryRun:      dryRun,
		Items:       []Item{},
	}
}

// NewStatus creates an empty status report.
func NewStatus(sourceDir, cacheDir string) *Status {
	return &Status{
		Version:     SupportedReportVersion,
		GeneratedAt: now(),
		SourceDir:   sourceDir,
		CacheDir:    cacheDir,
		Cached:      []Item{},
		Missing:     []Item{},
		Orphaned:    []string{},
	}
}

// ComputeStats recalculates aggregate statistics from items.
func (p *Populate) ComputeStats() {
	s := PopulateStats{Sources: len(p.Items)}
	for _, it := range p.Items {
		switch it.Outcome {
		case Generated:
			s.Generated++
			s.BytesWritten += it.Bytes
		case Cached:
			s.Cached++
		case Failed:
			s.Failed++
		}
	}
	p.Stats = s
}

// Failures returns the failed items.
func (p *Populate) Failures() []Item {
	return filter(p.Items, Failed)
}

// Deleted returns the keys removed by the pass.
func (r *Reclaim) Deleted() []string {
	var keys []string
	for _, it := range filter(r.Items, Deleted) {
		keys = append(keys, it.Key)
	}
	return keys
}

// Failures returns orphans that could not be deleted.
func (r *Reclaim) Failures() []Item {
	return filter(r.Items, Failed)
}

func filter(items []Item, o Outcome) []Item {
	var out []Item
	for _, it := range items {
		if it.Outcome == o {
			out = append(out, it)
		}
	}
	return out
}

// WriteJSON serializes a report as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	if p, ok := v.(*Populate); ok {
		p.ComputeStats()
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
