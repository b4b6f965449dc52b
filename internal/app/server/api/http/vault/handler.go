package vault

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/apierr"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/middleware/auth"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/vault"
)

type Handler struct {
	service    vault.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service vault.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "vault_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.unlockOp(), h.unlock)
	huma.Register(api, h.triggerOp(), h.setTrigger)
	huma.Register(api, h.inactivityOp(), h.setInactivity)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	vaults, err := h.service.List(ctx, userID)
	if err != nil {
		return nil, apierr.From(err)
	}

	out := &listOutput{Body: make([]VaultResponse, 0, len(vaults))}
	for _, v := range vaults {
		out.Body = append(out.Body, NewVaultResponse(v))
	}
	return out, nil
}

func (h *Handler) find(ctx context.Context, input *idInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	v, err := h.service.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &output{Body: NewVaultResponse(v)}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*createOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	v, err := h.service.Create(ctx, userID, vault.CreateRequest{
		Name:            input.Body.Name,
		Message:         input.Body.Message,
		Files:           toFileInputs(input.Body.Files),
		Password:        input.Body.Password,
		RecipientEmails: input.Body.RecipientEmails,
		Scheme:          vault.Scheme(input.Body.Scheme),
	})
	if err != nil {
		return nil, apierr.From(err)
	}

	return &createOutput{Status: http.StatusCreated, Body: NewVaultResponse(v)}, nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	v, err := h.service.Edit(ctx, userID, input.ID, vault.EditRequest{
		Name:            input.Body.Name,
		Message:         input.Body.Message,
		Files:           toFileInputs(input.Body.Files),
		RecipientEmails: input.Body.RecipientEmails,
		Password:        input.Body.Password,
	})
	if err != nil {
		return nil, apierr.From(err)
	}
	return &output{Body: NewVaultResponse(v)}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*statusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.Delete(ctx, userID, input.ID); err != nil {
		return nil, apierr.From(err)
	}

	out := &statusOutput{}
	out.Body.Status = "Ok"
	return out, nil
}

func (h *Handler) unlock(ctx context.Context, input *unlockInput) (*unlockOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	content, err := h.service.Unlock(ctx, userID, input.ID, input.Body.Password)
	if err != nil {
		return nil, apierr.From(err)
	}
	return &unlockOutput{Body: NewContentResponse(content)}, nil
}

func (h *Handler) setTrigger(ctx context.Context, input *triggerInput) (*statusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.SetTrigger(ctx, userID, input.ID, input.Body.TriggerDate); err != nil {
		return nil, apierr.From(err)
	}

	out := &statusOutput{}
	out.Body.Status = "Ok"
	return out, nil
}

func (h *Handler) setInactivity(ctx context.Context, input *inactivityInput) (*statusOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.SetInactivity(ctx, userID, input.ID, input.Body.Enabled); err != nil {
		return nil, apierr.From(err)
	}

	out := &statusOutput{}
	out.Body.Status = "Ok"
	return out, nil
}
