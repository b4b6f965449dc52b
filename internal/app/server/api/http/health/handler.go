package health

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	checks     map[string]Pinger
	log        *slog.Logger
	middleware huma.Middlewares
}

// NewHandler builds the health handler over named dependencies; nil entries are skipped.
func NewHandler(checks map[string]Pinger, log *slog.Logger, middleware huma.Middlewares) *Handler {
	live := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			live[name] = p
		}
	}
	return &Handler{
		checks:     live,
		log:        log.With("component", "health_handler"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.liveOp(), h.live)
	huma.Register(api, h.readyOp(), h.ready)
}

func (h *Handler) live(_ context.Context, _ *struct{}) (*Output, error) {
	return &Output{Body: HealthResponse{Status: StatusOK}}, nil
}

func (h *Handler) ready(ctx context.Context, _ *struct{}) (*Output, error) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{Status: StatusOK, Checks: make(map[string]string, len(names))}
	var failed []string
	for _, name := range names {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := h.checks[name].Ping(pctx)
		cancel()

		if err != nil {
			h.log.Error("dependency ping failed", "dependency", name, "error", err)
			resp.Checks[name] = StatusDown
			failed = append(failed, name)
			continue
		}
		resp.Checks[name] = StatusOK
	}

	if len(failed) > 0 {
		return nil, huma.Error503ServiceUnavailable("dependencies unavailable: " + strings.Join(failed, ", "))
	}

	return &Output{Body: resp}, nil
}
