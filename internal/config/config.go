// Package config resolves wallthumb's directories and run settings.
//
// Values come from the environment, falling back to per-user defaults:
//
//   - WALLTHUMB_SOURCE_DIR: wallpaper directory (default: <UserConfigDir>/wallthumb/wallpapers)
//   - WALLTHUMB_CACHE_DIR: thumbnail directory (default: <UserCacheDir>/wallthumb/thumbnails)
//   - WALLTHUMB_PROFILE: thumbnail profile name (default: preview)
//   - WALLTHUMB_WORKERS: population workers, 0 for automatic (default: 0)
//   - WALLTHUMB_LOG_LEVEL: debug, info, warn or error (default: info)
//
// Command-line flags are layered on top by the cmd package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AnyUserName/wallthumb/internal/profile"
)

// AppName names the per-user subdirectories.
const AppName = "wallthumb"

const (
	EnvSourceDir = "WALLTHUMB_SOURCE_DIR"
	EnvCacheDir  = "WALLTHUMB_CACHE_DIR"
	EnvProfile   = "WALLTHUMB_PROFILE"
	EnvWorkers   = "WALLTHUMB_WORKERS"
	EnvLogLevel  = "WALLTHUMB_LOG_LEVEL"
)

// Config holds the resolved settings.
type Config struct {
	SourceDir string
	CacheDir  string
	Profile   string
	Workers   int
}

// Load reads the environment over the defaults.
func Load() (*Config, error) {
	sourceDir := os.Getenv(EnvSourceDir)
	if sourceDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve default source dir: %w", err)
		}
		sourceDir = filepath.Join(base, AppName, "wallpapers")
	}

	cacheDir := os.Getenv(EnvCacheDir)
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve default cache dir: %w", err)
		}
		cacheDir = filepath.Join(base, AppName, "thumbnails")
	}

	workers := 0
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s %q: want a non-negative integer", EnvWorkers, v)
		}
		workers = n
	}

	return &Config{
		SourceDir: sourceDir,
		CacheDir:  cacheDir,
		Profile:   getEnv(EnvProfile, profile.DefaultName),
		Workers:   workers,
	}, nil
}

// LogLevel returns the configured log level name. It is read apart from
// Load so the logger exists before directory and worker settings are
// validated.
func LogLevel() string {
	return getEnv(EnvLogLevel, "info")
}

// Ensure makes both directories absolute and creates them if missing.
func (c *Config) Ensure() error {
	var err error
	if c.SourceDir, err = ensureDir(c.SourceDir, "source"); err != nil {
		return err
	}
	if c.CacheDir, err = ensureDir(c.CacheDir, "cache"); err != nil {
		return err
	}
	return nil
}

func ensureDir(path, name string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%s directory is not set", name)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s directory: %w", name, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("create %s directory: %w", name, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s directory: %w", name, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s directory %s is not a directory", name, abs)
	}
	return abs, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
