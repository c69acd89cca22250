package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnv names the environment variable that selects the log level.
const LevelEnv = "THUMBNAILER_LOG_LEVEL"

// Init initializes the global logger with configuration from environment variables.
// THUMBNAILER_LOG_LEVEL controls the log level: debug, info, warn, error (default: info).
// Logs go to stderr so stdout only carries the run report.
func Init() {
	InitWithWriter(os.Stderr, os.Getenv(LevelEnv))
}

// InitWithWriter configures the global logger to write console output to w at
// the given level name.
func InitWithWriter(w io.Writer, level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
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
