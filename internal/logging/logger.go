package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	LevelEnv  = "STORY_LOG_LEVEL"
	FormatEnv = "STORY_LOG_FORMAT"
)

// Init initializes the global logger with configuration from environment variables.
// STORY_LOG_LEVEL controls the log level: debug, info, warn, error (default: info).
// STORY_LOG_FORMAT=json keeps raw JSON lines instead of console output.
func Init() {
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv(LevelEnv)))
	log.Logger = zerolog.New(writer(os.Stderr, os.Getenv(FormatEnv))).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func writer(out io.Writer, format string) io.Writer {
	if strings.EqualFold(format, "json") {
		return out
	}
	return zerolog.ConsoleWriter{Out: out}
}
