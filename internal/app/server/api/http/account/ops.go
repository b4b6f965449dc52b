package account

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) meOp() huma.Operation {
	return huma.Operation{
		OperationID: "account-me",
		Method:      http.MethodGet,
		Path:        "/api/v1/account",
		Summary:     "Current account",
		Tags:        []string{"account"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) setPasswordOp() huma.Operation {
	return huma.Operation{
		OperationID: "account-password-set",
		Method:      http.MethodPut,
		Path:        "/api/v1/account/password",
		Summary:     "Set the secondary password",
		Description: "Changing an existing password requires a verified session.",
		Tags:        []string{"account"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) verifyPasswordOp() huma.Operation {
	return huma.Operation{
		OperationID: "account-password-verify",
		Method:      http.MethodPost,
		Path:        "/api/v1/account/password/verify",
		Summary:     "Verify the secondary password for this session",
		Tags:        []string{"account"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) recoveryKeyStatusOp() huma.Operation {
	return huma.Operation{
		OperationID: "account-recovery-key-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/account/recovery-key",
		Summary:     "Whether a recovery key is set",
		Tags:        []string{"account"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) setRecoveryKeyOp() huma.Operation {
	return huma.Operation{
		OperationID:   "account-recovery-key-set",
		Method:        http.MethodPost,
		Path:          "/api/v1/account/recovery-key",
		Summary:       "Set the recovery key",
		Description:   "Fails with 409 while another key is set.",
		Tags:          []string{"account"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) deleteRecoveryKeyOp() huma.Operation {
	return huma.Operation{
		OperationID: "account-recovery-key-delete",
		Method:      http.MethodDelete,
		Path:        "/api/v1/account/recovery-key",
		Summary:     "Delete the recovery key",
		Tags:        []string{"account"},
		Security:    bearer,
		Middlewares: h.secured,
	}
}

func (h *Handler) onboardingOp() huma.Operation {
	return huma.Operation{
		OperationID: "account-onboarding-complete",
		Method:      http.MethodPost,
		Path:        "/api/v1/account/onboarding",
		Summary:     "Mark onboarding as completed",
		Tags:        []string{"account"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) logoutOp() huma.Operation {
	return huma.Operation{
		OperationID: "account-logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/account/logout",
		Summary:     "Revoke the current session",
		Tags:        []string{"account"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}
