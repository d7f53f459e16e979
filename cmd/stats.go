package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AnyUserName/wallthumb/internal/hasher"
	"github.com/AnyUserName/wallthumb/internal/naming"
	"github.com/AnyUserName/wallthumb/internal/report"
	"github.com/AnyUserName/wallthumb/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display statistics for the thumbnail cache",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// cacheStats summarizes the cache directory.
type cacheStats struct {
	Entries    int                 `json:"entries"`
	Bytes      int64               `json:"bytes"`
	Unmanaged  int                 `json:"unmanaged"`
	Extensions map[string]int      `json:"extensions"`
	Largest    string              `json:"largest,omitempty"`
	LargestB   int64               `json:"largest_bytes,omitempty"`
	Duplicates map[string][]string `json:"duplicates,omitempty"` // content hash -> keys
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	s, err := collectStats(a.store)
	if err != nil {
		return err
	}

	if flagJSON {
		if err := report.WriteJSON(cmd.OutOrStdout(), s); err != nil {
			return err
		}
	} else {
		printStats(cmd.OutOrStdout(), a.store.Dir(), s)
	}
	return a.writeMetrics()
}

func collectStats(st *store.Store) (*cacheStats, error) {
	u, err := st.Usage(naming.Prefix)
	if err != nil {
		return nil, err
	}
	keys, err := st.List(naming.Prefix)
	if err != nil {
		return nil, err
	}
	all, err := st.List("")
	if err != nil {
		return nil, err
	}

	s := &cacheStats{
		Entries:    u.Entries,
		Bytes:      u.Bytes,
		Unmanaged:  len(all) - len(keys),
		Extensions: map[string]int{},
		Duplicates: map[string][]string{},
	}

	byHash := map[string][]string{}
	for _, k := range keys {
		ext := strings.TrimPrefix(filepath.Ext(k), ".")
		if ext == "" {
			ext = "(none)"
		}
		s.Extensions[ext]++

		info, err := os.Stat(st.Path(k))
		if err != nil {
			continue
		}
		if info.Size() > s.LargestB {
			s.Largest, s.LargestB = k, info.Size()
		}

		sum, err := hashFile(st.Path(k))
		if err != nil {
			return nil, err
		}
		byHash[sum] = append(byHash[sum], k)
	}
	for sum, ks := range byHash {
		if len(ks) > 1 {
			s.Duplicates[sum] = ks
		}
	}
	return s, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	sum, err := hasher.ContentHashReader(f, 16)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", filepath.Base(path), err)
	}
	return sum, nil
}

func printStats(w io.Writer, dir string, s *cacheStats) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Cache dir:        %s\n", dir)
	fmt.Fprintf(w, "  Thumbnails:       %d\n", s.Entries)
	fmt.Fprintf(w, "  Total size:       %s\n", formatBytes(s.Bytes))
	if s.Entries > 0 {
		fmt.Fprintf(w, "  Average size:     %s\n", formatBytes(s.Bytes/int64(s.Entries)))
		fmt.Fprintf(w, "  Largest:          %s (%s)\n", s.Largest, formatBytes(s.LargestB))
	}
	if s.Unmanaged > 0 {
		fmt.Fprintf(w, "  Other files:      %d (not managed)\n", s.Unmanaged)
	}
	fmt.Fprintln(w)

	if len(s.Extensions) > 0 {
		var exts []string
		for e := range s.Extensions {
			exts = append(exts, e)
		}
		sort.Strings(exts)
		fmt.Fprintln(w, "  Key extension breakdown:")
		for _, e := range exts {
			fmt.Fprintf(w, "    %-6s  %4d entries\n", e, s.Extensions[e])
		}
		fmt.Fprintln(w)
	}

	if len(s.Duplicates) > 0 {
		var groups []string
		for _, ks := range s.Duplicates {
			groups = append(groups, strings.Join(ks, ", "))
		}
		sort.Strings(groups)
		fmt.Fprintf(w, "  Identical thumbnails (%d groups):\n", len(groups))
		for _, g := range groups {
			fmt.Fprintf(w, "    ⚠ %s\n", g)
		}
		fmt.Fprintln(w)
	}
}
