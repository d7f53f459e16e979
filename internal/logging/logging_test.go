package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"info", zerolog.InfoLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("%q: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel, false)
	log.Debug().Msg("hidden")
	log.Info().Str("key", "thumb_a.png").Msg("created")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines: got %d, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["message"] != "created" || rec["key"] != "thumb_a.png" || rec["level"] != "info" {
		t.Errorf("record: got %v", rec)
	}
	if _, ok := rec["time"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.DebugLevel, true)
	log.Debug().Str("source", "forest.png").Msg("thumbnail created")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Errorf("console output looks like JSON: %q", out)
	}
	for _, want := range []string{"thumbnail created", "source=forest.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("color codes written to a non-terminal")
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("buffer reported as terminal")
	}
}
