package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the root logger. Production writes JSON lines; other environments get the
// console writer. An empty or unknown level falls back to debug outside production and
// info in production.
func New(environment, level string) zerolog.Logger {
	return newLogger(os.Stdout, environment, level)
}

func newLogger(out io.Writer, environment, level string) zerolog.Logger {
	production := environment == "production"

	if !production {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.SetGlobalLevel(resolveLevel(production, level))

	return zerolog.New(out).With().
		Timestamp().
		Str("env", environment).
		Logger()
}

func resolveLevel(production bool, level string) zerolog.Level {
	if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
		return parsed
	}
	if production {
		return zerolog.InfoLevel
	}
	return zerolog.DebugLevel
}

// WithComponent tags every event from a subsystem, e.g. the mail worker or the scheduler.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
