package logger

import (
	"io"
	"log/slog"
)

func NewTestHandler(level slog.Level) slog.Handler {
	return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(NewTestHandler(slog.LevelDebug))
}
