package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TimeFormat used by the console writer
const TimeFormat = "2006-01-02 15:04:05"

// Init configures the global logger to write human-readable lines to w
// (stderr when nil). Unknown levels fall back to info.
func Init(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: TimeFormat, NoColor: w != os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, defaulting to info")
	}
	return log.Logger
}

// WithComponent returns a child of the global logger tagged with name
func WithComponent(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
