// internal/util/logger.go
package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var logger *slog.Logger

// InitLogger initializes the global structured logger.
// It sets up a JSON handler on stdout at the given level (debug, info, warn or error).
func InitLogger(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	logger = NewLogger(os.Stdout, lvl)
	slog.SetDefault(logger) // Set as default logger for convenience
	return nil
}

// NewLogger builds a JSON logger writing to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true, // Add file and line number to logs
		Level:     level,
	})
	return slog.New(handler)
}

// ParseLevel maps a level name onto slog's levels. The empty string means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidArgument, level)
}

// GetLogger returns the initialized global logger.
func GetLogger() *slog.Logger {
	if logger == nil {
		logger = NewLogger(os.Stdout, slog.LevelInfo) // Should be initialized explicitly at app start
	}
	return logger
}
