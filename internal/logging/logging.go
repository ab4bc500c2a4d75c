// Package logging adapts zerolog to the diagnostic hook used by the HTTP
// exchange pipeline.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wesleyorama2/rawlunge/internal/http"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// Logger forwards exchange diagnostics to a zerolog.Logger.
type Logger struct {
	Logger zerolog.Logger
}

// New creates a Logger writing human-readable lines to w at the given
// level. An empty level means DefaultLevel.
func New(w io.Writer, level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05.000"}
	zl := zerolog.New(out).Level(lvl).With().Timestamp().Str("component", "http").Logger()
	return &Logger{Logger: zl}, nil
}

// NewStderr is New on os.Stderr.
func NewStderr(level string) (*Logger, error) {
	return New(os.Stderr, level)
}

// ParseLevel accepts debug, info, warn, error and disabled.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = DefaultLevel
	}
	switch level {
	case "debug", "info", "warn", "error", "disabled":
		return zerolog.ParseLevel(level)
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// Logf implements http.Logger.
func (l *Logger) Logf(level http.Level, format string, args ...interface{}) {
	var ev *zerolog.Event
	switch level {
	case http.LevelDebug:
		ev = l.Logger.Debug()
	case http.LevelInfo:
		ev = l.Logger.Info()
	case http.LevelWarn:
		ev = l.Logger.Warn()
	default:
		ev = l.Logger.Error()
	}
	ev.Msgf(format, args...)
}
