package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/apierr"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/middleware/auth"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/session"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/user"
)

type Handler struct {
	service    user.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
	// secured additionally requires a verified session
	secured huma.Middlewares
}

func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, middleware, secured huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log.With("component", "account_handler"),
		middleware: middleware,
		secured:    secured,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.meOp(), h.me)
	huma.Register(api, h.setPasswordOp(), h.setPassword)
	huma.Register(api, h.verifyPasswordOp(), h.verifyPassword)
	huma.Register(api, h.recoveryKeyStatusOp(), h.recoveryKeyStatus)
	huma.Register(api, h.setRecoveryKeyOp(), h.setRecoveryKey)
	huma.Register(api, h.deleteRecoveryKeyOp(), h.deleteRecoveryKey)
	huma.Register(api, h.onboardingOp(), h.completeOnboarding)
	huma.Register(api, h.logoutOp(), h.logout)
}

func ok() *statusOutput {
	return &statusOutput{Body: statusResponse{Status: "Ok"}}
}

func (h *Handler) me(ctx context.Context, _ *struct{}) (*meOutput, error) {
	sess, found := auth.GetSession(ctx)
	if !found {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	u, err := h.service.Get(ctx, sess.UserID)
	if err != nil {
		return nil, apierr.From(err)
	}

	return &meOutput{
		Body: meResponse{
			ID:                  u.ID,
			Email:               u.Email,
			Name:                u.Name,
			HasPassword:         u.HasPassword(),
			HasRecoveryKey:      u.HasRecoveryKey(),
			OnboardingCompleted: u.OnboardingCompleted,
			SecondFactor:        sess.SecondFactor,
		},
	}, nil
}

func (h *Handler) setPassword(ctx context.Context, input *passwordInput) (*statusOutput, error) {
	sess, found := auth.GetSession(ctx)
	if !found {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	u, err := h.service.Get(ctx, sess.UserID)
	if err != nil {
		return nil, apierr.From(err)
	}
	// смена пароля только после подтверждения старого
	if u.HasPassword() && !sess.SecondFactor {
		return nil, apierr.From(user.ErrSecondFactorRequired)
	}

	if err := h.service.SetPassword(ctx, sess.UserID, input.Body.Password); err != nil {
		return nil, apierr.From(err)
	}

	h.markVerified(ctx)

	return ok(), nil
}

func (h *Handler) verifyPassword(ctx context.Context, input *passwordInput) (*statusOutput, error) {
	userID, found := auth.GetUserID(ctx)
	if !found {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.VerifyPassword(ctx, userID, input.Body.Password); err != nil {
		return nil, apierr.From(err)
	}

	h.markVerified(ctx)

	return ok(), nil
}

func (h *Handler) markVerified(ctx context.Context) {
	token, found := auth.GetToken(ctx)
	if !found {
		return
	}
	if err := h.session.MarkVerified(ctx, token); err != nil {
		h.log.Warn("mark session verified", "error", err)
	}
}

func (h *Handler) recoveryKeyStatus(ctx context.Context, _ *struct{}) (*recoveryKeyStatusOutput, error) {
	userID, found := auth.GetUserID(ctx)
	if !found {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	isSet, err := h.service.RecoveryKeyStatus(ctx, userID)
	if err != nil {
		return nil, apierr.From(err)
	}

	out := &recoveryKeyStatusOutput{}
	out.Body.IsSet = isSet
	return out, nil
}

func (h *Handler) setRecoveryKey(ctx context.Context, input *recoveryKeyInput) (*recoveryKeyOutput, error) {
	userID, found := auth.GetUserID(ctx)
	if !found {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	key, err := h.service.SetRecoveryKey(ctx, userID, input.Body.RecoveryKey)
	if err != nil {
		return nil, apierr.From(err)
	}

	out := &recoveryKeyOutput{Status: http.StatusCreated}
	out.Body.RecoveryKey = key
	return out, nil
}

func (h *Handler) deleteRecoveryKey(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	userID, found := auth.GetUserID(ctx)
	if !found {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.DeleteRecoveryKey(ctx, userID); err != nil {
		return nil, apierr.From(err)
	}
	return ok(), nil
}

func (h *Handler) completeOnboarding(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	userID, found := auth.GetUserID(ctx)
	if !found {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.CompleteOnboarding(ctx, userID); err != nil {
		return nil, apierr.From(err)
	}
	return ok(), nil
}

func (h *Handler) logout(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	token, found := auth.GetToken(ctx)
	if !found {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.session.Revoke(ctx, token); err != nil {
		return nil, apierr.From(err)
	}
	return ok(), nil
}
