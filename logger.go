package membench

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Logger wraps slog.Logger with membench-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithArena adds an arena field to the logger.
func (l *Logger) WithArena(kind string) *Logger {
	return &Logger{
		Logger: l.Logger.With("arena", kind),
	}
}

// WithSize adds a human-readable size field to the logger.
func (l *Logger) WithSize(size int) *Logger {
	return &Logger{
		Logger: l.Logger.With("size", ibytes(size)),
	}
}

// LogArenaInit logs the one-time mapping of an arena. The arena kind is
// expected on the logger via WithArena. A refused huge page hint logs at Warn.
func (l *Logger) LogArenaInit(ctx context.Context, capacity int, adviceErr error, d time.Duration, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "arena allocation failed",
			"capacity", ibytes(capacity),
			"error", err,
		)
	case adviceErr != nil:
		l.WarnContext(ctx, "arena mapped without huge page advice",
			"capacity", ibytes(capacity),
			"duration", d,
			"error", adviceErr,
		)
	default:
		l.DebugContext(ctx, "arena mapped",
			"capacity", ibytes(capacity),
			"duration", d,
		)
	}
}

// LogRegionBuild logs a shuffled region build.
func (l *Logger) LogRegionBuild(ctx context.Context, size, offset int, seed uint64, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "region build failed",
			"size", ibytes(size),
			"offset", offset,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "region built",
			"size", ibytes(size),
			"lines", size/LineSize,
			"offset", offset,
			"seed", seed,
			"duration", d,
		)
	}
}

// LogPointerRequest logs a failed aligned or misaligned pointer request.
// Successful requests are too frequent to log. The requested size is
// expected on the logger via WithSize.
func (l *Logger) LogPointerRequest(ctx context.Context, alignment, offset int, err error) {
	if err == nil {
		return
	}
	l.DebugContext(ctx, "pointer request rejected",
		"alignment", alignment,
		"offset", offset,
		"error", err,
	)
}

// LogPlatform logs the platform report. Degraded capabilities log at Warn.
func (l *Logger) LogPlatform(ctx context.Context, p PlatformInfo) {
	l.InfoContext(ctx, "platform",
		"cpu", p.CPU,
		"os", p.OS,
		"arch", p.Arch,
		"line_size", p.LineSize,
		"cache_control", p.CacheControl,
		"thp", p.THPMode,
		"memory", humanize.IBytes(p.TotalMemory),
	)
	if p.LineSizeErr != nil {
		l.WarnContext(ctx, "cache line size mismatch", "error", p.LineSizeErr)
	}
	if p.CacheControl == "generic" {
		l.WarnContext(ctx, "cache flush unavailable; regions are not evicted after build")
	}
}

func ibytes(n int) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}
