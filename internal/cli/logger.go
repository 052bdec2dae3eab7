package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ResolveLogLevel maps a level name to a slog level.
func ResolveLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

// NewLogger returns a text logger on w at the named level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	logLevel, err := ResolveLogLevel(level)
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler), nil
}
