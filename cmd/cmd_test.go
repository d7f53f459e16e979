package cmd

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/wallthumb/internal/config"
	"github.com/AnyUserName/wallthumb/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type dirs struct {
	src, cache string
}

func newDirs(t *testing.T) dirs {
	t.Helper()
	for _, k := range []string{config.EnvSourceDir, config.EnvCacheDir, config.EnvProfile, config.EnvWorkers, config.EnvLogLevel} {
		t.Setenv(k, "")
	}
	root := t.TempDir()
	return dirs{src: filepath.Join(root, "wallpapers"), cache: filepath.Join(root, "thumbnails")}
}

func (d dirs) args(extra ...string) []string {
	return append([]string{"--source", d.src, "--cache", d.cache}, extra...)
}

func writeWallpaper(t *testing.T, path string, w, h int, shade uint8) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: shade, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func entries(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, de := range des {
		names = append(names, de.Name())
	}
	return names
}

func TestSync(t *testing.T) {
	d := newDirs(t)
	writeWallpaper(t, filepath.Join(d.src, "forest.png"), 640, 360, 10)
	writeWallpaper(t, filepath.Join(d.src, "sunset.png"), 400, 800, 20)
	if err := os.MkdirAll(d.cache, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(d.cache, "thumb_deleted.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, d.args("sync")...)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !strings.Contains(out, "Generated:   2") {
		t.Errorf("output missing generated count:\n%s", out)
	}
	got := strings.Join(entries(t, d.cache), ",")
	if got != "thumb_forest.png,thumb_sunset.png" {
		t.Errorf("cache: got %s", got)
	}
}

func TestPopulate_JSON(t *testing.T) {
	d := newDirs(t)
	writeWallpaper(t, filepath.Join(d.src, "a.png"), 320, 180, 1)
	if err := os.MkdirAll(d.src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(d.src, "broken.png"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, d.args("populate", "--json", "--workers", "2")...)
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	var rep report.Populate
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("parse: %v\n%s", err, out)
	}
	if rep.Stats.Generated != 1 || rep.Stats.Failed != 1 {
		t.Errorf("stats: got %+v, want 1 generated, 1 failed", rep.Stats)
	}
	if rep.Workers != 2 {
		t.Errorf("workers: got %d, want 2", rep.Workers)
	}
	if rep.Profile != "preview" {
		t.Errorf("profile: got %q, want preview", rep.Profile)
	}
}

func TestReclaim_DryRun(t *testing.T) {
	d := newDirs(t)
	if err := os.MkdirAll(d.cache, 0o755); err != nil {
		t.Fatal(err)
	}
	orphan := filepath.Join(d.cache, "thumb_gone.png")
	if err := os.WriteFile(orphan, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, d.args("reclaim", "--dry-run")...)
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if !strings.Contains(out, "thumb_gone.png") || !strings.Contains(out, "dry run") {
		t.Errorf("output:\n%s", out)
	}
	if _, err := os.Stat(orphan); err != nil {
		t.Errorf("dry run removed the orphan: %v", err)
	}

	if _, err := run(t, d.args("reclaim")...); err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Errorf("orphan still present: %v", err)
	}
}

func TestThumb(t *testing.T) {
	d := newDirs(t)
	src := filepath.Join(d.src, "forest.png")
	writeWallpaper(t, src, 1920, 1080, 5)

	out, err := run(t, d.args("thumb", "--key-only", src)...)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "thumb_forest.png" {
		t.Errorf("key: got %q, want thumb_forest.png", out)
	}
	if len(entries(t, d.cache)) != 0 {
		t.Error("--key-only generated a thumbnail")
	}

	out, err = run(t, d.args("thumb", src)...)
	if err != nil {
		t.Fatal(err)
	}
	path := strings.TrimSpace(out)
	if path != filepath.Join(d.cache, "thumb_forest.png") {
		t.Errorf("path: got %q", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 320 || cfg.Height != 180 {
		t.Errorf("size: got %dx%d, want 320x180", cfg.Width, cfg.Height)
	}
}

func TestThumb_WidthHeightOverride(t *testing.T) {
	d := newDirs(t)
	src := filepath.Join(d.src, "wide.png")
	writeWallpaper(t, src, 800, 400, 5)

	out, err := run(t, d.args("--width", "100", "--height", "100", "thumb", src)...)
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(strings.TrimSpace(out))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("size: got %dx%d, want 100x50", cfg.Width, cfg.Height)
	}
}

func TestStatus(t *testing.T) {
	d := newDirs(t)
	writeWallpaper(t, filepath.Join(d.src, "cached.png"), 64, 36, 1)
	writeWallpaper(t, filepath.Join(d.src, "nature", "new.png"), 64, 36, 2)
	if _, err := run(t, d.args("thumb", filepath.Join(d.src, "cached.png"))...); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, d.args("status")...)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Missing:     0") {
		t.Errorf("default depth should ignore nature/:\n%s", out)
	}

	out, err = run(t, d.args("--depth", "1", "status")...)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Cached:      1", "Missing:     1", "new.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, d.args("--depth", "1", "status", "--tree")...)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"cached.png -> thumb_cached.png", "nature", "new.png (missing)"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
}

func TestValidate(t *testing.T) {
	d := newDirs(t)
	writeWallpaper(t, filepath.Join(d.src, "a.png"), 640, 360, 1)
	if _, err := run(t, d.args("populate")...); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, d.args("validate")...)
	if err != nil {
		t.Fatalf("validate clean cache: %v\n%s", err, out)
	}

	if err := os.WriteFile(filepath.Join(d.cache, "thumb_junk.png"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, d.args("validate")...)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(out, "thumb_junk.png") || !strings.Contains(out, "orphaned") {
		t.Errorf("output:\n%s", out)
	}

	// Entries generated under a larger profile exceed the preview bounds.
	d2 := newDirs(t)
	writeWallpaper(t, filepath.Join(d2.src, "big.png"), 1280, 720, 1)
	if _, err := run(t, d2.args("--profile", "preview-hq", "populate")...); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, d2.args("validate")...)
	if err == nil || !strings.Contains(out, "exceeds 320x180") {
		t.Errorf("oversized entry not reported: %v\n%s", err, out)
	}
}

func TestStats_Duplicates(t *testing.T) {
	d := newDirs(t)
	writeWallpaper(t, filepath.Join(d.src, "one.png"), 640, 360, 7)
	writeWallpaper(t, filepath.Join(d.src, "copy.png"), 640, 360, 7)
	writeWallpaper(t, filepath.Join(d.src, "other.png"), 640, 360, 99)
	if _, err := run(t, d.args("populate")...); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, d.args("stats", "--json")...)
	if err != nil {
		t.Fatal(err)
	}
	var s cacheStats
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("parse: %v\n%s", err, out)
	}
	if s.Entries != 3 {
		t.Errorf("entries: got %d, want 3", s.Entries)
	}
	if s.Extensions["png"] != 3 {
		t.Errorf("png entries: got %d, want 3", s.Extensions["png"])
	}
	if len(s.Duplicates) != 1 {
		t.Fatalf("duplicate groups: got %d, want 1", len(s.Duplicates))
	}
	for _, keys := range s.Duplicates {
		if strings.Join(keys, ",") != "thumb_copy.png,thumb_one.png" {
			t.Errorf("duplicates: got %v", keys)
		}
	}
}

func TestMetricsFile(t *testing.T) {
	d := newDirs(t)
	writeWallpaper(t, filepath.Join(d.src, "a.png"), 64, 36, 1)
	path := filepath.Join(t.TempDir(), "wallthumb.prom")

	if _, err := run(t, d.args("sync", "--metrics-file", path)...); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	for _, want := range []string{"wallthumb_thumbnails_total", "wallthumb_cache_entries 1", "wallthumb_last_run_timestamp_seconds"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestConfigErrors(t *testing.T) {
	d := newDirs(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown profile", d.args("--profile", "huge", "populate"), "unknown profile"},
		{"jpeg output", d.args("--format", "jpeg", "populate"), "alpha"},
		{"bad filter", d.args("--filter", "sharpest", "populate"), "unknown resample filter"},
		{"bad naming", d.args("--naming", "random", "populate"), "unknown naming scheme"},
		{"bad log level", d.args("--log-level", "loud", "populate"), "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestLogLevelFromEnv(t *testing.T) {
	d := newDirs(t)
	t.Setenv(config.EnvLogLevel, "loud")
	_, err := run(t, d.args("populate")...)
	if err == nil || !strings.Contains(err.Error(), "unknown log level") {
		t.Errorf("got %v, want unknown log level", err)
	}

	if _, err := run(t, d.args("--log-level", "warn", "populate")...); err != nil {
		t.Errorf("flag should override env: %v", err)
	}
}

func TestSourceFromEnv(t *testing.T) {
	d := newDirs(t)
	writeWallpaper(t, filepath.Join(d.src, "env.png"), 64, 36, 1)
	t.Setenv(config.EnvSourceDir, d.src)
	t.Setenv(config.EnvCacheDir, d.cache)

	if _, err := run(t, "populate"); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(entries(t, d.cache), ","); got != "thumb_env.png" {
		t.Errorf("cache: got %s, want thumb_env.png", got)
	}
}
