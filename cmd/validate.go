package cmd

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/AnyUserName/wallthumb/internal/naming"
	"github.com/AnyUserName/wallthumb/internal/store"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every cached thumbnail decodes and fits the profile bounds",
	Long: `Decodes every thumb_* entry in the cache directory, checks it fits the
profile bounds and lists orphaned entries. Exits non-zero when any problem
is found.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	keys, err := a.store.List(naming.Prefix)
	if err != nil {
		return err
	}
	st, err := a.manager.Status()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	errs := validateEntries(a.store, keys, a.profile.MaxWidth, a.profile.MaxHeight)
	for _, k := range st.Orphaned {
		errs = append(errs, fmt.Sprintf("%s: orphaned (no matching wallpaper)", k))
	}

	out := cmd.OutOrStdout()
	if len(errs) == 0 {
		fmt.Fprintln(out, "  ✓ Cache is valid")
		fmt.Fprintf(out, "  ✓ %d thumbnails, all decodable within %dx%d\n", len(keys), a.profile.MaxWidth, a.profile.MaxHeight)
		if n := len(st.Missing); n > 0 {
			fmt.Fprintf(out, "  • %d wallpapers have no thumbnail yet (run populate)\n", n)
		}
		return nil
	}

	fmt.Fprintf(out, "  ✗ Cache has %d problem(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(out, "    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

// validateEntries decodes each entry and checks its size against the bounds.
func validateEntries(st *store.Store, keys []string, maxW, maxH int) []string {
	var errs []string
	for _, k := range keys {
		w, h, err := decodeEntry(st.Path(k))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", k, err))
			continue
		}
		if w <= 0 || h <= 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid dimensions %dx%d", k, w, h))
			continue
		}
		if w > maxW || h > maxH {
			errs = append(errs, fmt.Sprintf("%s: %dx%d exceeds %dx%d", k, w, h, maxW, maxH))
		}
	}
	return errs
}

func decodeEntry(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if errors.Is(err, image.ErrFormat) {
		return 0, 0, errors.New("unrecognized image format")
	}
	if err != nil {
		return 0, 0, fmt.Errorf("decode: %w", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}
