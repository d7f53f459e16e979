package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/AnyUserName/wallthumb/internal/report"
)

func printPopulateReport(w io.Writer, rep *report.Populate, elapsed time.Duration) {
	s := rep.Stats
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Sources:     %d\n", s.Sources)
	fmt.Fprintf(w, "  Generated:   %d (%s)\n", s.Generated, formatBytes(s.BytesWritten))
	fmt.Fprintf(w, "  Cached:      %d\n", s.Cached)
	if s.Failed > 0 {
		fmt.Fprintf(w, "  Failed:      %d\n", s.Failed)
	}
	fmt.Fprintf(w, "  Workers:     %d\n", rep.Workers)
	fmt.Fprintf(w, "  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintln(w)

	if fails := rep.Failures(); len(fails) > 0 {
		sort.Slice(fails, func(i, j int) bool { return fails[i].Source < fails[j].Source })
		fmt.Fprintf(w, "  Failures (%d):\n", len(fails))
		for _, f := range fails {
			fmt.Fprintf(w, "    ✗ %-32s %s\n", truncKey(filepath.Base(f.Source), 32), f.Error)
		}
		fmt.Fprintln(w)
	}
}

func printReclaimReport(w io.Writer, rep *report.Reclaim) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Sources:     %d\n", rep.Sources)
	fmt.Fprintf(w, "  Entries:     %d\n", rep.Entries)
	if rep.DryRun {
		fmt.Fprintf(w, "  Orphaned:    %d (dry run, nothing deleted)\n", len(rep.Items))
	} else {
		fmt.Fprintf(w, "  Deleted:     %d\n", len(rep.Deleted()))
	}
	fmt.Fprintln(w)

	for _, it := range rep.Items {
		switch it.Outcome {
		case report.Failed:
			fmt.Fprintf(w, "    ✗ %s: %s\n", it.Key, it.Error)
		default:
			fmt.Fprintf(w, "    - %s\n", it.Key)
		}
	}
	if len(rep.Items) > 0 {
		fmt.Fprintln(w)
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
