package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/migration"
)

var migrateYes bool

func newMigration(databaseURL string) *migration.Migration {
	return migration.NewMigration(databaseURL, nil)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Управление схемой базы данных",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Применить все миграции",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := newMigration(cfg.DB.DatabaseURI).Up(); err != nil {
			return fmt.Errorf("ошибка миграции: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Миграции применены")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Откатить все миграции (удаляет данные)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !migrateYes {
			return fmt.Errorf("откат удаляет все данные, подтвердите флагом --yes")
		}
		if err := newMigration(cfg.DB.DatabaseURI).Down(); err != nil {
			return fmt.Errorf("ошибка отката: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Миграции откачены")
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Показать текущую версию схемы",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printVersion(cmd.OutOrStdout(), newMigration(cfg.DB.DatabaseURI))
	},
}

func printVersion(w io.Writer, mg *migration.Migration) error {
	version, dirty, err := mg.Version()
	if err != nil {
		return fmt.Errorf("ошибка чтения версии: %w", err)
	}
	if dirty {
		fmt.Fprintf(w, "version %d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(w, "version %d\n", version)
	return nil
}

func init() {
	migrateDownCmd.Flags().BoolVar(&migrateYes, "yes", false, "подтвердить откат")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}
