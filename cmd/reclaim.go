package cmd

import (
	"fmt"

	"github.com/AnyUserName/wallthumb/internal/report"
	"github.com/spf13/cobra"
)

var reclaimDryRun bool

var reclaimCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Delete thumbnails whose wallpaper no longer exists",
	Long: `Compares the thumb_* files in the cache directory with a fresh scan of
the source directory and deletes every entry without a matching wallpaper.
Files without the thumb_ prefix are never touched.`,
	Args: cobra.NoArgs,
	RunE: runReclaim,
}

func init() {
	reclaimCmd.Flags().BoolVarP(&reclaimDryRun, "dry-run", "n", false, "list orphans without deleting them")
	rootCmd.AddCommand(reclaimCmd)
}

func runReclaim(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	var rep *report.Reclaim
	if reclaimDryRun {
		rep, err = a.manager.PlanReclaim()
	} else {
		rep, err = a.manager.ReclaimOrphans()
	}
	if err != nil {
		return fmt.Errorf("reclaim: %w", err)
	}

	if flagJSON {
		if err := report.WriteJSON(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
	} else {
		printReclaimReport(cmd.OutOrStdout(), rep)
	}
	return a.writeMetrics()
}
