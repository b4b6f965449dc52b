package delivery

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "deliveries-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/deliveries",
		Summary:     "Хранилища, доставленные на мой email",
		Tags:        []string{"deliveries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) unlockOp() huma.Operation {
	return huma.Operation{
		OperationID: "deliveries-unlock",
		Method:      http.MethodPost,
		Path:        "/api/v1/deliveries/{id}/unlock",
		Summary:     "Открыть доставленное хранилище",
		Tags:        []string{"deliveries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) byKeyOp() huma.Operation {
	return huma.Operation{
		OperationID: "deliveries-by-key",
		Method:      http.MethodPost,
		Path:        "/api/v1/deliveries/by-key",
		Summary:     "Доставить все хранилища владельца по ключу восстановления",
		Tags:        []string{"deliveries"},
		Middlewares: h.public,
	}
}

func (h *Handler) sweepOp() huma.Operation {
	return huma.Operation{
		OperationID: "deliveries-sweep",
		Method:      http.MethodPost,
		Path:        "/api/v1/internal/sweep",
		Summary:     "Проверить триггеры и доставить хранилища",
		Description: "Для внешнего cron. Требует заголовок X-Cron-Secret.",
		Tags:        []string{"internal"},
		Hidden:      true,
		Middlewares: h.public,
	}
}
