package vault

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// MaxBodyBytes bounds uploads sent inline as base64.
const MaxBodyBytes = 64 << 20

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "vaults-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/vaults",
		Summary:     "Список хранилищ владельца",
		Tags:        []string{"vaults"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "vaults-create",
		Method:        http.MethodPost,
		Path:          "/api/v1/vaults",
		Summary:       "Создать хранилище",
		Description:   "Файлы и сообщение загружаются в IPFS, в базе остается только CID манифеста.",
		Tags:          []string{"vaults"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  MaxBodyBytes,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "vaults-find",
		Method:      http.MethodGet,
		Path:        "/api/v1/vaults/{id}",
		Summary:     "Получить хранилище",
		Tags:        []string{"vaults"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID:  "vaults-update",
		Method:       http.MethodPut,
		Path:         "/api/v1/vaults/{id}",
		Summary:      "Изменить хранилище",
		Tags:         []string{"vaults"},
		Security:     bearer,
		MaxBodyBytes: MaxBodyBytes,
		Middlewares:  h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "vaults-delete",
		Method:      http.MethodDelete,
		Path:        "/api/v1/vaults/{id}",
		Summary:     "Удалить хранилище",
		Tags:        []string{"vaults"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) unlockOp() huma.Operation {
	return huma.Operation{
		OperationID: "vaults-unlock",
		Method:      http.MethodPost,
		Path:        "/api/v1/vaults/{id}/unlock",
		Summary:     "Открыть хранилище паролем",
		Tags:        []string{"vaults"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) triggerOp() huma.Operation {
	return huma.Operation{
		OperationID: "vaults-trigger",
		Method:      http.MethodPut,
		Path:        "/api/v1/vaults/{id}/trigger",
		Summary:     "Назначить дату доставки",
		Tags:        []string{"vaults"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) inactivityOp() huma.Operation {
	return huma.Operation{
		OperationID: "vaults-inactivity",
		Method:      http.MethodPut,
		Path:        "/api/v1/vaults/{id}/inactivity",
		Summary:     "Включить доставку по неактивности",
		Tags:        []string{"vaults"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}
