// Package logging configures the global slog logger for the ghostkey daemon,
// the CLI and the embeddable library.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Environment variables read by SetupFromEnv. The library has no flags, so
// this is the only way a host can turn on its logs.
const (
	EnvFormat = "GHOSTKEY_LOG_FORMAT"
	EnvLevel  = "GHOSTKEY_LOG_LEVEL"
)

// ParseFormat converts a string to a Format, returning FormatAuto for unknown values.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel converts a string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// NewHandler returns a tinted handler for terminals and a JSON handler
// otherwise.
func NewHandler(w io.Writer, format Format, level slog.Level) slog.Handler {
	if format == FormatText || (format == FormatAuto && IsTTY(w)) {
		return tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// Setup configures the global slog logger. Call once after flag/viper parsing.
func Setup(format Format, level slog.Level) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, format, level)))
}

// SetupFromEnv configures the global logger from GHOSTKEY_LOG_FORMAT and
// GHOSTKEY_LOG_LEVEL. Without GHOSTKEY_LOG_LEVEL only warnings and errors
// are logged, so a host process's stderr stays quiet.
func SetupFromEnv() {
	level := slog.LevelWarn
	if s := os.Getenv(EnvLevel); s != "" {
		level = ParseLevel(s)
	}
	Setup(ParseFormat(os.Getenv(EnvFormat)), level)
}
