package http

// Level is the severity of a diagnostic message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger receives diagnostics from the exchange pipeline: request built,
// status line read, headers received, header lines skipped, body decoded.
type Logger interface {
	Logf(level Level, format string, args ...interface{})
}

// NopLogger discards all diagnostics.
type NopLogger struct{}

func (NopLogger) Logf(level Level, format string, args ...interface{}) {}
