package logger

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"
)

// Logger пишет по одной строке на каждый обработанный запрос.
type Logger struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Logger {
	return &Logger{log: log.With("component", "http")}
}

func level(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		next(ctx)

		attrs := []any{
			"method", ctx.Method(),
			"path", ctx.URL().Path,
			"status", ctx.Status(),
			"elapsed", time.Since(start),
		}
		if op := ctx.Operation(); op != nil {
			attrs = append(attrs, "op", op.OperationID)
		}
		if id := chimw.GetReqID(ctx.Context()); id != "" {
			attrs = append(attrs, "request_id", id)
		}

		l.log.Log(ctx.Context(), level(ctx.Status()), "request", attrs...)
	}
}
