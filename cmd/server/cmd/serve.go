package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP сервер и планировщик доставки",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(background(cmd), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := server.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("close storage", "error", err)
		}
	}()

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	log.Info("server stopped")
	return nil
}

// background returns the command context, or a fresh one when it is unset.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
