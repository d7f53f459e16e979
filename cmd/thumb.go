package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var thumbKeyOnly bool

var thumbCmd = &cobra.Command{
	Use:   "thumb <image>",
	Short: "Print the thumbnail path for one wallpaper, generating it if needed",
	Args:  cobra.ExactArgs(1),
	RunE:  runThumb,
}

func init() {
	thumbCmd.Flags().BoolVar(&thumbKeyOnly, "key-only", false, "print the cache key without generating anything")
	rootCmd.AddCommand(thumbCmd)
}

func runThumb(cmd *cobra.Command, args []string) error {
	src, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve image path: %w", err)
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if thumbKeyOnly {
		fmt.Fprintln(cmd.OutOrStdout(), a.manager.CacheKeyFor(src))
		return nil
	}
	path, err := a.manager.EnsureThumbnail(src)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return a.writeMetrics()
}
