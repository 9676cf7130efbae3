// Package logging builds the structured loggers used by the binaries.
//
// Logs always go to a writer the caller picks (stderr for the MCP server,
// whose stdout carries protocol traffic).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "FLAGCHECK_LOG_LEVEL"

// ParseLevel maps debug|info|warn|error (any case) to a slog level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a tinted text logger writing to w.
func New(w io.Writer, level slog.Level, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !color,
	}))
}

// FromEnv builds a logger for w using FLAGCHECK_LOG_LEVEL. Colour is disabled
// when NO_COLOR is set.
func FromEnv(w io.Writer) *slog.Logger {
	_, noColor := os.LookupEnv("NO_COLOR")
	return New(w, ParseLevel(os.Getenv(EnvLevel)), !noColor)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
