package cmd

import (
	"fmt"
	"time"

	"github.com/AnyUserName/wallthumb/internal/report"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Remove orphaned thumbnails, then generate missing ones",
	Long: `Runs reclaim followed by populate, the sequence a wallpaper picker
needs before it starts. A failed reclamation is logged and population still
runs.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

// syncReport is the JSON shape of a sync run.
type syncReport struct {
	Reclaim  *report.Reclaim  `json:"reclaim,omitempty"`
	Populate *report.Populate `json:"populate"`
}

func runSync(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	rec, err := a.manager.ReclaimOrphans()
	if err != nil {
		logger.Warn().Err(err).Msg("reclaim failed, populating anyway")
	}
	pop, err := a.manager.PopulateAll()
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		if err := report.WriteJSON(out, syncReport{Reclaim: rec, Populate: pop}); err != nil {
			return err
		}
	} else {
		if rec != nil {
			printReclaimReport(out, rec)
		}
		printPopulateReport(out, pop, time.Since(start))
	}
	return a.writeMetrics()
}
