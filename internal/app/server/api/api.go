//POST /auth/google/login, /auth/google/callback   # OAuth вход (публичный)
//GET  /api/v1/health, /api/v1/health/live         # Состояние сервиса (публичный)
//     /api/v1/account/...                          # Профиль, пароль, ключ восстановления (auth)
//     /api/v1/vaults/...                           # Хранилища (auth + второй фактор)
//     /api/v1/deliveries/...                       # Доставленные хранилища (auth)
//POST /api/v1/deliveries/by-key                   # Доставка по ключу восстановления (публичный)
//POST /api/v1/internal/sweep                      # Проверка триггеров (X-Cron-Secret)
//GET  /metrics                                    # Prometheus

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	accountAPI "github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/account"
	deliveryAPI "github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/delivery"
	healthAPI "github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/health"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/middleware"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/middleware/auth"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/middleware/logger"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/oauth"
	vaultAPI "github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/vault"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/delivery"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/session"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/user"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/vault"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/metrics"
)

const (
	Title   = "Digital AfterLife API"
	Version = "1.0.0"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Users      user.Servicer
	Sessions   session.Servicer
	Vaults     vault.Servicer
	Delivery   delivery.Servicer
	Metrics    *metrics.Metrics
	OAuth      *oauth.Config
	CronSecret string

	// Checks are pinged by the readiness probe.
	Checks map[string]healthAPI.Pinger
}

type Handlers struct {
	Health   *healthAPI.Handler
	Account  *accountAPI.Handler
	Vault    *vaultAPI.Handler
	Delivery *deliveryAPI.Handler
	OAuth    *oauth.Handler
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register
func New(deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)

	config := huma.DefaultConfig(Title, Version)
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(deps, log)
	h.Health.SetupRoutes(API)
	h.Account.SetupRoutes(API)
	h.Vault.SetupRoutes(API)
	h.Delivery.SetupRoutes(API)
	if h.OAuth != nil {
		h.OAuth.SetupRoutes(mux)
	}

	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics.Handler())
	}

	return mux
}

func handlers(deps Deps, log *slog.Logger) *Handlers {
	authMW := auth.New(deps.Sessions, deps.Users, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	public := func() huma.Middlewares {
		return middlewares.Add(loggerMW.Middleware()).GetAllAndClear()
	}
	authed := func() huma.Middlewares {
		return middlewares.Add(authMW.Middleware(), loggerMW.Middleware()).GetAllAndClear()
	}
	secured := func() huma.Middlewares {
		return middlewares.Add(authMW.Middleware(), authMW.RequireSecondFactor(), loggerMW.Middleware()).GetAllAndClear()
	}

	h := &Handlers{
		Health:   healthAPI.NewHandler(deps.Checks, log, public()),
		Account:  accountAPI.NewHandler(deps.Users, deps.Sessions, log, authed(), secured()),
		Vault:    vaultAPI.NewHandler(deps.Vaults, log, secured()),
		Delivery: deliveryAPI.NewHandler(deps.Vaults, deps.Delivery, deps.CronSecret, log, authed(), public()),
	}

	if deps.OAuth != nil {
		h.OAuth = oauth.NewHandler(*deps.OAuth, deps.Users, deps.Sessions, log)
	}

	return h
}
