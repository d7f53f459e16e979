// Package workers sizes the thumbnail worker pool.
//
// Counts are derived from runtime.GOMAXPROCS rather than runtime.NumCPU so
// that container CPU limits are respected (Go 1.19+ sets GOMAXPROCS from
// the cgroup quota).
package workers

import "runtime"

// Count returns max(1, GOMAXPROCS*multiplier), capped at limit when limit > 0.
func Count(multiplier float64, limit int) int {
	n := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if n < 1 {
		n = 1
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForMixed returns worker count for mixed tasks (1.5 per CPU). Thumbnail
// generation reads a file, resizes and writes, so it uses this.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}

// Resolve returns requested when positive, otherwise ForMixed(limit).
func Resolve(requested, limit int) int {
	if requested > 0 {
		return requested
	}
	return ForMixed(limit)
}
