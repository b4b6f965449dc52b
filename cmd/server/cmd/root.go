package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/config"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/utils/logger"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	log      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "afterlife",
	Short: "Digital AfterLife - хранилища, доставляемые получателям",
	Long: `Digital AfterLife хранит сообщения и файлы владельца в IPFS и
передает их получателям по дате или после долгого отсутствия владельца.

Без подкоманды запускает HTTP сервер.`,
	PersistentPreRunE: setup,
	RunE:              runServe,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	level := cfg.Logger.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log = logger.WithLevel(cfg.Env, level)

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл (yaml, json, toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "уровень логирования: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd, migrateCmd, sweepCmd, unlockCmd)
}
