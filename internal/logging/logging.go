// Package logging builds the zerolog logger shared by all commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// ParseLevel accepts debug, info, warn (or warning), error and disabled.
// An empty string means info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a logger writing to w. With console set, records are rendered
// for humans; otherwise one JSON object per line.
func New(w io.Writer, level zerolog.Level, console bool) zerolog.Logger {
	out := w
	if console {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.TimeOnly,
			NoColor:    !IsTerminal(w),
		}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
