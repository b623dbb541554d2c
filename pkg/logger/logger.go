package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config สำหรับ logger
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     string // stdout, file, both
	FilePath   string // logs/app.log
	MaxSize    int    // MB
	MaxBackups int    // จำนวน backup files
	MaxAge     int    // วัน
	Compress   bool   // บีบอัด backup
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	boardAttrKey contextKey = "board_attrs"
)

var defaultLogger *slog.Logger

// Init สร้าง logger จาก config
func Init(cfg Config) error {
	writers := []io.Writer{}

	if cfg.Output == "stdout" || cfg.Output == "both" {
		writers = append(writers, os.Stdout)
	}

	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return err
		}
		// rotation ผ่าน lumberjack
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	defaultLogger = slog.New(newHandler(writer, cfg))
	slog.SetDefault(defaultLogger)
	return nil
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.Level == "debug",
	}
	if cfg.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func base() *slog.Logger {
	if defaultLogger == nil {
		return slog.Default()
	}
	return defaultLogger
}

// ═══════════════════════════════════════════════════════════════════════════════
// Context attributes
// ═══════════════════════════════════════════════════════════════════════════════

// ContextWithRequestID ใส่ request ID ลงใน context
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithTask tags every *Context log written under ctx with the task and the
// acting principal, so board services don't repeat them per call
func WithTask(ctx context.Context, taskID, actorID uuid.UUID) context.Context {
	return withAttrs(ctx, slog.String("task_id", taskID.String()), slog.String("actor_id", actorID.String()))
}

// WithActor same as WithTask for operations that have no task yet (create)
func WithActor(ctx context.Context, actorID uuid.UUID) context.Context {
	return withAttrs(ctx, slog.String("actor_id", actorID.String()))
}

// withAttrs appends attrs; a later key replaces an earlier one
func withAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev, _ := ctx.Value(boardAttrKey).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	for _, a := range prev {
		replaced := false
		for _, n := range attrs {
			if n.Key == a.Key {
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, a)
		}
	}
	merged = append(merged, attrs...)
	return context.WithValue(ctx, boardAttrKey, merged)
}

// fromContext logger พร้อม request_id และ board attrs จาก ctx
func fromContext(ctx context.Context) *slog.Logger {
	l := base()
	if ctx == nil {
		return l
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		l = l.With("request_id", requestID)
	}
	if attrs, ok := ctx.Value(boardAttrKey).([]slog.Attr); ok {
		args := make([]any, len(attrs))
		for i, a := range attrs {
			args[i] = a
		}
		l = l.With(args...)
	}
	return l
}

// ========== Convenience functions ==========

func Debug(msg string, args ...any) { base().Debug(msg, args...) }

func Info(msg string, args ...any) { base().Info(msg, args...) }

func Warn(msg string, args ...any) { base().Warn(msg, args...) }

func Error(msg string, args ...any) { base().Error(msg, args...) }

// ========== Context-aware functions ==========

func DebugContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).DebugContext(ctx, msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).ErrorContext(ctx, msg, args...)
}
