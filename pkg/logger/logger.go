// backend-go/pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger

	out io.Writer = os.Stdout
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	Log = newLogger(consoleWriter(out), zerolog.InfoLevel)
	log.Logger = Log
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// SetLevel sets the log level. Gin modes ("debug", "release", "test") are
// accepted too so the server mode can drive verbosity.
func SetLevel(levelStr string) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "release":
		levelStr = "info"
	case "test":
		levelStr = "warn"
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
	log.Logger = Log
}

// SetFormat switches between human readable console output and JSON lines.
func SetFormat(format string) {
	level := Log.GetLevel()
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		Log = newLogger(out, level)
	default:
		Log = newLogger(consoleWriter(out), level)
	}
	log.Logger = Log
}

// SetOutput redirects the global logger, keeping the current level.
func SetOutput(w io.Writer) {
	out = w
	Log = Log.Output(w)
	log.Logger = Log
}
