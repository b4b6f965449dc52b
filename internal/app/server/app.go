// Package server собирает зависимости сервиса и управляет его жизненным циклом.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api"
	healthAPI "github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/health"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/oauth"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/crypto"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/scheduler"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/config"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/credential"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/delivery"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/session"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/user"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/vault"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/ipfs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/mailer"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/metrics"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/migration"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/storage/postgres"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepTimeout    = 15 * time.Minute
)

type App struct {
	cfg *config.Config
	log *slog.Logger

	Storage  *postgres.Storage
	Metrics  *metrics.Metrics
	Users    *user.Service
	Sessions *session.Service
	Vaults   *vault.Service
	Delivery *delivery.Service

	scheduler *scheduler.Scheduler
	server    *http.Server
}

// NewStore returns the configured content store.
func NewStore(cfg config.Store, m *metrics.Metrics, log *slog.Logger) ipfs.Store {
	var store ipfs.Store
	switch cfg.Backend {
	case config.StoreBackendMemory:
		log.Warn("using in-memory content store, content is lost on restart")
		store = ipfs.NewMemoryStore()
	default:
		store = ipfs.NewPinataClient(ipfs.PinataConfig{
			APIURL:     cfg.APIURL,
			GatewayURL: cfg.GatewayURL,
			APIKey:     cfg.APIKey,
			APISecret:  cfg.APISecret,
			JWT:        cfg.JWT,
			Timeout:    cfg.Timeout,
			RetryMax:   cfg.RetryMax,
		}, log)
	}
	return ipfs.Instrument(store, m)
}

// NewResolver builds the manifest resolver over store.
func NewResolver(cfg *config.Config, store vault.ContentStore, log *slog.Logger) *vault.Resolver {
	hasher := credential.NewBcryptHasher(cfg.Vault.BcryptCost)
	return vault.NewResolver(store, crypto.NewVaultCipher(crypto.DefaultParams), hasher, cfg.Store.Concurrency, log)
}

// New connects to the database, applies migrations and wires the services.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	storage, err := postgres.New(ctx, cfg.DB.DatabaseURI, migration.NewMigration(cfg.DB.DatabaseURI, nil), log)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := metrics.New()
	pool := storage.Pool()

	userRepo := postgres.NewUserRepository(pool, log)
	sessionRepo := postgres.NewSessionRepository(pool, log)
	vaultRepo := postgres.NewVaultRepository(pool, log)

	hasher := credential.NewBcryptHasher(cfg.Vault.BcryptCost)
	users := user.NewService(userRepo, user.NewPasswordValidator(), hasher, cfg.Delivery.LastSeenInterval, log)
	sessions := session.NewService(sessionRepo, cfg.Session.TTL, log)

	resolver := NewResolver(cfg, NewStore(cfg.Store, m, log), log)
	vaults := vault.NewService(vaultRepo, resolver, vault.Scheme(cfg.Vault.Scheme), m, log)

	mail := mailer.New(mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, log)
	deliveries := delivery.NewService(vaultRepo, mail, users, delivery.Config{
		InactivityThreshold: cfg.Delivery.InactivityThreshold,
		GatewayURL:          cfg.Store.GatewayURL,
		AppURL:              cfg.Server.BaseURL,
	}, m, log)

	sched, err := scheduler.New(cfg.Delivery.Schedule, sweepTimeout, deliveries, log)
	if err != nil {
		storage.Close()
		return nil, err
	}
	if err := sched.WithSessionPurge(sessions); err != nil {
		storage.Close()
		return nil, err
	}

	deps := api.Deps{
		Users:      users,
		Sessions:   sessions,
		Vaults:     vaults,
		Delivery:   deliveries,
		Checks:     map[string]healthAPI.Pinger{"database": storage},
		Metrics:    m,
		CronSecret: cfg.Delivery.CronSecret,
	}
	if cfg.OAuth.Enabled() {
		deps.OAuth = &oauth.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
		}
	} else {
		log.Warn("google oauth is not configured, sign-in is disabled")
	}

	return &App{
		cfg:       cfg,
		log:       log,
		Storage:   storage,
		Metrics:   m,
		Users:     users,
		Sessions:  sessions,
		Vaults:    vaults,
		Delivery:  deliveries,
		scheduler: sched,
		server: &http.Server{
			Addr:              cfg.Server.RunAddress,
			Handler:           api.New(deps, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves HTTP and runs the delivery scheduler until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.scheduler.Start()
	defer a.scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("starting server", "address", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Close() error {
	return a.Storage.Close()
}
