// Package logging builds the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LogLevel represents logging levels
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration
type Config struct {
	Level  LogLevel  // minimum level (default: info)
	Pretty bool      // human readable console output instead of JSON
	Out    io.Writer // default: os.Stderr
	App    string    // value of the "app" field on every entry
}

// ParseLevel maps a LOG_LEVEL value onto a LogLevel. Empty means info.
func ParseLevel(raw string) (LogLevel, error) {
	switch level := LogLevel(strings.ToLower(strings.TrimSpace(raw))); level {
	case "":
		return LevelInfo, nil
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return level, nil
	default:
		return "", fmt.Errorf("unknown log level %q", raw)
	}
}

// New creates the root logger. Components derive their own with
// logger.With().Str("component", ...).
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	level := zerolog.InfoLevel
	switch cfg.Level {
	case LevelDebug:
		level = zerolog.DebugLevel
	case LevelWarn:
		level = zerolog.WarnLevel
	case LevelError:
		level = zerolog.ErrorLevel
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.App != "" {
		ctx = ctx.Str("app", cfg.App)
	}
	return ctx.Logger()
}
