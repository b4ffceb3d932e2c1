package server

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"mdmserver/server/middleware"
)

// NewLogger создает структурированный JSON логгер с заданным уровнем
func NewLogger(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// LogDuration логирует длительность операции
func LogDuration(ctx context.Context, logger *slog.Logger, operation string, duration time.Duration, attrs ...any) {
	attrs = append(attrs,
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
		"request_id", middleware.GetRequestID(ctx),
	)
	logger.Info("Operation completed", attrs...)
}
