package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/vault"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/ipfs"
)

const messageFile = "message.txt"

var (
	unlockScheme string
	unlockOut    string
)

var unlockCmd = &cobra.Command{
	Use:   "unlock <cid>",
	Short: "Получить содержимое хранилища по CID манифеста",
	Long: `Загружает манифест из IPFS, разрешает ссылки на файлы и сохраняет
сообщение и файлы в директорию --out.

Для legacy_encrypted хранилищ запрашивается пароль хранилища.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ipfs.ValidateCID(args[0]); err != nil {
			return fmt.Errorf("некорректный CID: %w", err)
		}

		scheme := vault.Scheme(unlockScheme)
		if !scheme.Valid() {
			return fmt.Errorf("неизвестная схема %q", unlockScheme)
		}

		var password string
		if scheme == vault.SchemeLegacyEncrypted {
			fmt.Fprint(cmd.ErrOrStderr(), "Пароль хранилища: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			if err != nil {
				return fmt.Errorf("ошибка чтения пароля: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr())
			password = string(raw)
		}

		resolver := server.NewResolver(cfg, server.NewStore(cfg.Store, nil, log), log)
		v := vault.Vault{ContentID: args[0], Scheme: scheme}

		return unlockTo(background(cmd), resolver, v, password, unlockOut, cmd.OutOrStdout())
	},
}

func unlockTo(ctx context.Context, resolver *vault.Resolver, v vault.Vault, password, dir string, w io.Writer) error {
	content, err := resolver.Release(ctx, v, password)
	if err != nil {
		return fmt.Errorf("ошибка получения содержимого: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("ошибка создания директории: %w", err)
	}

	if content.Message != nil {
		if err := os.WriteFile(filepath.Join(dir, messageFile), []byte(*content.Message), 0o600); err != nil {
			return fmt.Errorf("ошибка записи сообщения: %w", err)
		}
		fmt.Fprintf(w, "✓ %s\n", messageFile)
	}

	used := map[string]int{messageFile: 1}
	for _, f := range content.Files {
		name := uniqueName(used, safeName(f.Name, f.CID))
		if err := os.WriteFile(filepath.Join(dir, name), f.Data, 0o600); err != nil {
			return fmt.Errorf("ошибка записи файла %s: %w", name, err)
		}
		fmt.Fprintf(w, "✓ %s (%d bytes)\n", name, len(f.Data))
	}

	return nil
}

// safeName strips directories so a manifest cannot write outside dir.
func safeName(name, fallback string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return fallback
	}
	return name
}

func uniqueName(used map[string]int, name string) string {
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}

func init() {
	unlockCmd.Flags().StringVar(&unlockScheme, "scheme", string(vault.SchemeHashGated), "схема хранилища: hash_gated или legacy_encrypted")
	unlockCmd.Flags().StringVarP(&unlockOut, "out", "o", ".", "директория для сохранения")
}
