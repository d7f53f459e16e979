package cmd

import (
	"fmt"
	"time"

	"github.com/AnyUserName/wallthumb/internal/report"
	"github.com/spf13/cobra"
)

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Generate thumbnails for wallpapers that have none",
	Long: `Scans the source directory and generates a thumbnail for every image
without a cache entry. Existing thumbnails are never rewritten, and a
wallpaper that fails to decode is reported without affecting the others.`,
	Args: cobra.NoArgs,
	RunE: runPopulate,
}

func init() {
	rootCmd.AddCommand(populateCmd)
}

func runPopulate(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	rep, err := a.manager.PopulateAll()
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}

	if flagJSON {
		if err := report.WriteJSON(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
	} else {
		printPopulateReport(cmd.OutOrStdout(), rep, time.Since(start))
	}
	return a.writeMetrics()
}
