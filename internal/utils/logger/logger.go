package logger

import (
	"os"

	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/config"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/utils/logger/slogpretty"
)

// New builds the process logger for env: colored text locally, JSON elsewhere.
func New(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = setupPrettySlog()
	case config.EnvDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

// WithLevel overrides the level of New(env) when level parses.
func WithLevel(env, level string) *slog.Logger {
	var lvl slog.Level
	if level == "" || lvl.UnmarshalText([]byte(level)) != nil {
		return New(env)
	}

	if env == config.EnvLocal {
		return slog.New(slogpretty.Options{Level: lvl}.NewHandler(os.Stdout))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.Options{Level: slog.LevelDebug}
	return slog.New(opts.NewHandler(os.Stdout))
}
