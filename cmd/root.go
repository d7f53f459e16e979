package cmd

import (
	"fmt"
	"runtime"

	"github.com/AnyUserName/wallthumb/internal/cache"
	"github.com/AnyUserName/wallthumb/internal/config"
	"github.com/AnyUserName/wallthumb/internal/encoder"
	"github.com/AnyUserName/wallthumb/internal/logging"
	"github.com/AnyUserName/wallthumb/internal/metrics"
	"github.com/AnyUserName/wallthumb/internal/naming"
	"github.com/AnyUserName/wallthumb/internal/profile"
	"github.com/AnyUserName/wallthumb/internal/scanner"
	"github.com/AnyUserName/wallthumb/internal/store"
	"github.com/AnyUserName/wallthumb/internal/thumbnail"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	flagSource      string
	flagCache       string
	flagProfile     string
	flagWidth       int
	flagHeight      int
	flagFilter      string
	flagFormat      string
	flagNaming      string
	flagDepth       int
	flagWorkers     int
	flagJSON        bool
	flagMetricsFile string
	flagLogLevel    string
	verbose         bool

	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "wallthumb",
	Short: "Keep a thumbnail cache in step with a wallpaper directory",
	Long: `wallthumb derives small preview images for every wallpaper in a
source directory and stores them as thumb_<name> files in a cache directory.

Population only creates missing thumbnails; reclamation only removes
thumbnails whose wallpaper is gone. Both compare against a fresh scan.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagSource, "source", "", "wallpaper directory (env "+config.EnvSourceDir+")")
	pf.StringVar(&flagCache, "cache", "", "thumbnail cache directory (env "+config.EnvCacheDir+")")
	pf.StringVarP(&flagProfile, "profile", "p", "", "thumbnail profile: preview, preview-hq, minimal (env "+config.EnvProfile+")")
	pf.IntVar(&flagWidth, "width", 0, "maximum thumbnail width (0 = profile default)")
	pf.IntVar(&flagHeight, "height", 0, "maximum thumbnail height (0 = profile default)")
	pf.StringVar(&flagFilter, "filter", "", "resampling filter (default from profile)")
	pf.StringVar(&flagFormat, "format", "", "output format: png, webp, avif (default from profile)")
	pf.StringVar(&flagNaming, "naming", "stem", "cache key scheme: stem or path-hash")
	pf.IntVar(&flagDepth, "depth", cache.DefaultMaxDepth, "source scan depth, 0 = top level only, -1 = unlimited (use --naming=path-hash when > 0)")
	pf.IntVarP(&flagWorkers, "workers", "w", 0, "parallel workers (0 = automatic, env "+config.EnvWorkers+")")
	pf.BoolVar(&flagJSON, "json", false, "print reports as JSON")
	pf.StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	pf.StringVar(&flagLogLevel, "log-level", "", "debug, info, warn, error (env "+config.EnvLogLevel+")")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level=debug)")

	metrics.InitializeMetrics()

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"wallthumb %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// setupLogger configures the package logger before any command runs.
func setupLogger(cmd *cobra.Command, _ []string) error {
	level := flagLogLevel
	if level == "" {
		level = config.LogLevel()
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	w := cmd.ErrOrStderr()
	logger = logging.New(w, lvl, logging.IsTerminal(w))
	return nil
}

// app is everything a command needs, resolved from env, flags and profile.
type app struct {
	cfg     *config.Config
	profile profile.Profile
	store   *store.Store
	manager *cache.Manager
}

// newApp layers flags over the environment, creates both directories and
// wires the cache manager.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagSource != "" {
		cfg.SourceDir = flagSource
	}
	if flagCache != "" {
		cfg.CacheDir = flagCache
	}
	if flagProfile != "" {
		cfg.Profile = flagProfile
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = flagWorkers
	}
	if err := cfg.Ensure(); err != nil {
		return nil, err
	}

	if !profile.Known(cfg.Profile) {
		return nil, fmt.Errorf("unknown profile %q", cfg.Profile)
	}
	prof := profile.Get(cfg.Profile).Override(flagWidth, flagHeight, flagFilter, flagFormat)
	if err := prof.Validate(); err != nil {
		return nil, err
	}

	filter, err := thumbnail.ParseFilter(prof.Filter)
	if err != nil {
		return nil, err
	}
	enc, err := encoder.NewRegistry().Resolve(prof.Format)
	if err != nil {
		return nil, err
	}
	scheme, err := naming.ByName(flagNaming, cfg.SourceDir)
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	obs := metrics.Observer{}
	mgr, err := cache.New(cache.Config{
		SourceDir: cfg.SourceDir,
		Store:     st,
		Generator: &thumbnail.Generator{
			Encoder: enc,
			Filter:  filter,
			Quality: prof.Quality,
			Phases:  obs,
		},
		Naming:     scheme,
		MaxWidth:   prof.MaxWidth,
		MaxHeight:  prof.MaxHeight,
		Workers:    cfg.Workers,
		Extensions: scanner.ImageExtensions,
		MaxDepth:   flagDepth,
		Observer:   obs,
		Logger:     &logger,
		Profile:    prof.Name,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("source", cfg.SourceDir).
		Str("cache", cfg.CacheDir).
		Str("profile", prof.String()).
		Str("encoder", enc.Format()).
		Int("workers", mgr.Workers()).
		Msg("configuration")

	return &app{cfg: cfg, profile: prof, store: st, manager: mgr}, nil
}

// writeMetrics dumps the metrics registry when --metrics-file is set.
func (a *app) writeMetrics() error {
	if flagMetricsFile == "" {
		return nil
	}
	u, err := a.store.Usage(naming.Prefix)
	if err != nil {
		return err
	}
	metrics.SetCacheUsage(u.Entries, u.Bytes)
	if err := metrics.WriteTextfile(flagMetricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	logger.Debug().Str("path", flagMetricsFile).Msg("metrics written")
	return nil
}
