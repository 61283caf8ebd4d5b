// File: internal/logger/logger.go
package logger

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger logs to stderr so that object bodies and query results on stdout stay pipeable
func NewLogger(debug bool) *slog.Logger {
	return newLogger(os.Stderr, debug)
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)

	slog.SetDefault(logger)
	return logger
}
