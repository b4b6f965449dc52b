package delivery

import (
	"context"
	"crypto/subtle"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/apierr"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/middleware/auth"
	vaultAPI "github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/vault"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/delivery"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/vault"
)

type Handler struct {
	vaults     vault.Servicer
	delivery   delivery.Servicer
	cronSecret string
	log        *slog.Logger
	middleware huma.Middlewares
	public     huma.Middlewares
}

// NewHandler wires recipient routes behind mws and the by-key and sweep
// routes behind public. An empty cronSecret disables the sweep route.
func NewHandler(vaults vault.Servicer, svc delivery.Servicer, cronSecret string, log *slog.Logger, mws, public huma.Middlewares) *Handler {
	return &Handler{
		vaults:     vaults,
		delivery:   svc,
		cronSecret: cronSecret,
		log:        log.With("component", "delivery_handler"),
		middleware: mws,
		public:     public,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.unlockOp(), h.unlock)
	huma.Register(api, h.byKeyOp(), h.byKey)
	huma.Register(api, h.sweepOp(), h.sweep)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	sess, ok := auth.GetSession(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	vaults, err := h.vaults.ListDelivered(ctx, sess.Email)
	if err != nil {
		return nil, apierr.From(err)
	}

	out := &listOutput{Body: make([]recipientVaultResponse, 0, len(vaults))}
	for _, v := range vaults {
		out.Body = append(out.Body, recipientVaultResponse{
			ID:          v.ID,
			Name:        v.Name,
			ContentID:   v.ContentID,
			Scheme:      string(v.Scheme),
			DeliveredAt: v.DeliveredAt,
		})
	}
	return out, nil
}

func (h *Handler) unlock(ctx context.Context, input *unlockInput) (*unlockOutput, error) {
	sess, ok := auth.GetSession(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	content, err := h.vaults.UnlockDelivered(ctx, sess.Email, input.ID, input.Body.Password)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &unlockOutput{Body: vaultAPI.NewContentResponse(content)}, nil
}

func (h *Handler) byKey(ctx context.Context, input *byKeyInput) (*reportOutput, error) {
	report, err := h.delivery.DeliverByKey(ctx, input.Body.Email, input.Body.RecoveryKey)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &reportOutput{Body: report}, nil
}

func (h *Handler) sweep(ctx context.Context, input *sweepInput) (*reportOutput, error) {
	if h.cronSecret == "" {
		return nil, huma.Error404NotFound("not found")
	}
	if subtle.ConstantTimeCompare([]byte(input.Secret), []byte(h.cronSecret)) != 1 {
		h.log.Warn("sweep rejected: bad cron secret")
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	report, err := h.delivery.Sweep(ctx)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &reportOutput{Body: report}, nil
}
