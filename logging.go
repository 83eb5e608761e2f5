package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	slogmulti "github.com/samber/slog-multi"
)

// NewLogger builds the run logger: text on w, and JSON lines appended to
// logFile when set. Every record carries the run id. The returned closer
// releases the log file.
func NewLogger(w io.Writer, logFile string, verbose bool) (*slog.Logger, io.Closer, error) {
	// one level shared by both handlers
	level := new(slog.LevelVar)
	if verbose {
		level.Set(slog.LevelDebug)
	}
	opts := &slog.HandlerOptions{Level: level}
	handlers := []slog.Handler{slog.NewTextHandler(w, opts)}

	var closer io.Closer = nopCloser{}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
		closer = f
	}

	logger := slog.New(slogmulti.Fanout(handlers...)).With("run", uuid.NewString())
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// discardLogger is used when no logger is supplied.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
