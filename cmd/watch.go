package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AnyUserName/wallthumb/internal/scanner"
	"github.com/AnyUserName/wallthumb/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync once, then follow changes to the wallpaper directory",
	Long: `Runs a sync and then watches the source directory. New or rewritten
wallpapers get a thumbnail; removed or renamed wallpapers trigger a
reclamation pass. Events are handled one at a time. Stops on SIGINT or
SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if _, err := a.manager.ReclaimOrphans(); err != nil {
		logger.Warn().Err(err).Msg("initial reclaim failed")
	}
	if _, err := a.manager.PopulateAll(); err != nil {
		return fmt.Errorf("populate: %w", err)
	}

	w, err := watch.New(a.cfg.SourceDir, a.manager, watch.Options{
		Extensions: scanner.ImageExtensions,
		MaxDepth:   flagDepth,
		Logger:     &logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := w.Run(ctx); err != nil {
		return err
	}
	logger.Info().Msg("watch stopped")
	return a.writeMetrics()
}
