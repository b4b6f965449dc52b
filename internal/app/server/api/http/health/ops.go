package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) liveOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-live",
		Method:      http.MethodGet,
		Path:        "/api/v1/health/live",
		Summary:     "Liveness probe",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) readyOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-ready",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Readiness probe",
		Description: "Pings every registered dependency. Any failure turns the answer into 503.",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}
