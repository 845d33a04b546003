// backend-go/pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// Default to console output with color
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	Log = newLogger(output, zerolog.InfoLevel)
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// modeLevels maps gin server modes onto log levels.
var modeLevels = map[string]zerolog.Level{
	"release": zerolog.InfoLevel,
	"test":    zerolog.WarnLevel,
}

// SetLevel sets the log level. Gin modes ("debug", "release", "test") are
// accepted next to zerolog level names.
func SetLevel(levelStr string) {
	levelStr = strings.ToLower(strings.TrimSpace(levelStr))
	level, ok := modeLevels[levelStr]
	if !ok {
		var err error
		level, err = zerolog.ParseLevel(levelStr)
		if err != nil {
			Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
			level = zerolog.InfoLevel
		}
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
}

// UseJSON switches the global logger to structured JSON written to w.
func UseJSON(w io.Writer) {
	Log = newLogger(w, Log.GetLevel())
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return Log.With().Str("component", name).Logger()
}
