// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	Logger zerolog.Logger
)

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

func init() {
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Configure sets the global level and output. Dev mode writes colored console lines.
func Configure(level LogLevel, isDev bool) {
	ConfigureWriter(level, isDev, os.Stderr)
}

// ConfigureWriter is Configure with an explicit destination, used when stderr
// belongs to a terminal UI or an MCP stdio transport.
func ConfigureWriter(level LogLevel, isDev bool, out io.Writer) {
	zerolog.SetGlobalLevel(parseLevel(level))

	writer := out
	if isDev {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	Logger = zerolog.New(writer).With().Timestamp().Logger()
	log.Logger = Logger
}

func parseLevel(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetLogLevelFromEnv picks the level from DEBUG, falling back to configured.
func GetLogLevelFromEnv(configured LogLevel) LogLevel {
	switch strings.ToLower(os.Getenv("DEBUG")) {
	case "true", "1":
		return LevelDebug
	case "false", "0":
		return LevelInfo
	}
	if configured == "" {
		return LevelInfo
	}
	return configured
}

// With returns a child logger tagged with a component name.
func With(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

func Debugf(format string, args ...interface{}) {
	Logger.Debug().Msgf(format, args...)
}

func Infof(format string, args ...interface{}) {
	Logger.Info().Msgf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logger.Warn().Msgf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	Logger.Error().Msgf(format, args...)
}
