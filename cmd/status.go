package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/AnyUserName/wallthumb/internal/report"
	"github.com/spf13/cobra"
)

var statusTree bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cached, missing and orphaned thumbnails",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusTree, "tree", false, "render the source to thumbnail mapping as a tree")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	st, err := a.manager.Status()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case flagJSON:
		return report.WriteJSON(out, st)
	case statusTree:
		fmt.Fprint(out, st.Tree())
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Source:      %s\n", st.SourceDir)
	fmt.Fprintf(out, "  Cache:       %s\n", st.CacheDir)
	fmt.Fprintf(out, "  Profile:     %s\n", a.profile)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Cached:      %d\n", len(st.Cached))
	fmt.Fprintf(out, "  Missing:     %d\n", len(st.Missing))
	fmt.Fprintf(out, "  Orphaned:    %d\n", len(st.Orphaned))
	fmt.Fprintln(out)

	if len(st.Missing) > 0 {
		fmt.Fprintln(out, "  Missing thumbnails:")
		for _, it := range st.Missing {
			fmt.Fprintf(out, "    • %s\n", filepath.Base(it.Source))
		}
		fmt.Fprintln(out)
	}
	if len(st.Orphaned) > 0 {
		fmt.Fprintln(out, "  Orphaned entries:")
		for _, k := range st.Orphaned {
			fmt.Fprintf(out, "    • %s\n", k)
		}
		fmt.Fprintln(out)
	}
	return nil
}
