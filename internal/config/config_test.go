package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvSourceDir, EnvCacheDir, EnvProfile, EnvWorkers, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfgBase, _ := os.UserConfigDir()
	cacheBase, _ := os.UserCacheDir()
	if want := filepath.Join(cfgBase, "wallthumb", "wallpapers"); cfg.SourceDir != want {
		t.Errorf("source dir: got %q, want %q", cfg.SourceDir, want)
	}
	if want := filepath.Join(cacheBase, "wallthumb", "thumbnails"); cfg.CacheDir != want {
		t.Errorf("cache dir: got %q, want %q", cfg.CacheDir, want)
	}
	if cfg.Profile != "preview" {
		t.Errorf("profile: got %q, want preview", cfg.Profile)
	}
	if cfg.Workers != 0 {
		t.Errorf("workers: got %d, want 0", cfg.Workers)
	}
	if got := LogLevel(); got != "info" {
		t.Errorf("log level: got %q, want info", got)
	}
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSourceDir, "/srv/walls")
	t.Setenv(EnvCacheDir, "/srv/thumbs")
	t.Setenv(EnvProfile, "minimal")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SourceDir != "/srv/walls" || cfg.CacheDir != "/srv/thumbs" {
		t.Errorf("dirs: got %q, %q", cfg.SourceDir, cfg.CacheDir)
	}
	if cfg.Profile != "minimal" {
		t.Errorf("profile: got %q, want minimal", cfg.Profile)
	}
	if cfg.Workers != 3 {
		t.Errorf("workers: got %d, want 3", cfg.Workers)
	}
	if got := LogLevel(); got != "debug" {
		t.Errorf("log level: got %q, want debug", got)
	}
}

func TestLoad_InvalidWorkers(t *testing.T) {
	for _, v := range []string{"many", "-2"} {
		clearEnv(t)
		t.Setenv(EnvSourceDir, "/a")
		t.Setenv(EnvCacheDir, "/b")
		t.Setenv(EnvWorkers, v)
		if _, err := Load(); err == nil {
			t.Errorf("%s=%q: expected error", EnvWorkers, v)
		}
	}
}

func TestEnsure(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{
		SourceDir: filepath.Join(root, "walls", "nested"),
		CacheDir:  filepath.Join(root, "thumbs"),
	}
	if err := cfg.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for _, d := range []string{cfg.SourceDir, cfg.CacheDir} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Errorf("%s: not created (%v)", d, err)
		}
		if !filepath.IsAbs(d) {
			t.Errorf("%s: not absolute", d)
		}
	}
	// Second call is a no-op.
	if err := cfg.Ensure(); err != nil {
		t.Errorf("second ensure: %v", err)
	}
}

func TestEnsure_RejectsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "occupied")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{SourceDir: root, CacheDir: file}
	if err := cfg.Ensure(); err == nil {
		t.Error("expected error when cache dir is a file")
	}
	if err := (&Config{CacheDir: root}).Ensure(); err == nil {
		t.Error("expected error for empty source dir")
	}
}
