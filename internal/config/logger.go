package config

import (
	"io"
	"log/slog"
	"os"
)

// InitLogger installs a JSON slog handler on stdout as the process default.
func InitLogger(level slog.Level) *slog.Logger {
	return InitLoggerTo(os.Stdout, level)
}

// InitLoggerTo is InitLogger for an arbitrary writer; the CLI logs to stderr
// so its stdout stays parseable.
func InitLoggerTo(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	l := slog.New(h)
	slog.SetDefault(l)
	return l
}
