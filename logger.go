package meshgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with meshgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithDataset adds a dataset field to the logger.
func (l *Logger) WithDataset(dataset string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", dataset),
	}
}

// WithPiece adds a piece field to the logger (useful for tagging piece workers).
func (l *Logger) WithPiece(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("piece", name),
	}
}

// LogLoad logs a completed load operation.
func (l *Logger) LogLoad(ctx context.Context, name string, vertices, cells int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"name", name,
			"vertices", vertices,
			"cells", cells,
		)
	}
}

// LogPiece logs the outcome of a single piece read.
func (l *Logger) LogPiece(ctx context.Context, name string, vertices, cells int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "piece read failed",
			"piece", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "piece read completed",
			"piece", name,
			"vertices", vertices,
			"cells", cells,
		)
	}
}

// LogWeld logs a vertex welding pass.
func (l *Logger) LogWeld(ctx context.Context, raw, unique int, tolerance float32) {
	l.DebugContext(ctx, "weld completed",
		"raw_vertices", raw,
		"unique_vertices", unique,
		"duplicates", raw-unique,
		"tolerance", tolerance,
	)
}

// LogPrefetch logs a piece prefetch request.
func (l *Logger) LogPrefetch(ctx context.Context, count int, err error) {
	if err != nil {
		l.WarnContext(ctx, "prefetch failed",
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "prefetch completed",
			"count", count,
		)
	}
}

// LogCatalog logs a catalog manifest update.
func (l *Logger) LogCatalog(ctx context.Context, dataset string, version uint64, err error) {
	if err != nil {
		l.WarnContext(ctx, "catalog update failed",
			"dataset", dataset,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "catalog updated",
			"dataset", dataset,
			"version", version,
		)
	}
}
