package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/delivery"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Однократно проверить триггеры и доставить созревшие хранилища",
	Long: `Проверяет все ожидающие хранилища: наступившую дату доставки и
неактивность владельца. Повторный запуск не отправляет письма повторно.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := background(cmd)

		app, err := server.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("ошибка инициализации приложения: %w", err)
		}
		defer app.Close()

		report, err := app.Delivery.Sweep(ctx)
		if err != nil {
			return fmt.Errorf("ошибка проверки триггеров: %w", err)
		}

		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func printReport(w io.Writer, r delivery.Report) {
	fmt.Fprintf(w, "Ожидали доставки: %d\n", r.Pending)
	color.New(color.FgGreen).Fprintf(w, "✓ Доставлено:     %d\n", r.Delivered)
	if r.Skipped > 0 {
		color.New(color.FgYellow).Fprintf(w, "⚠️  Пропущено:     %d (нет получателей)\n", r.Skipped)
	}
	if r.Failed > 0 {
		color.New(color.FgRed).Fprintf(w, "✗ Ошибок:         %d\n", r.Failed)
	}
}
