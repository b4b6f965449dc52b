package delivery

import (
	"time"

	vaultAPI "github.com/ShreyasReddy007/Digital-AfterLife/internal/app/server/api/http/vault"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/delivery"
)

type listOutput struct {
	Body []recipientVaultResponse
}

// recipientVaultResponse is the recipient's view: no recipients list, no credential data.
type recipientVaultResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ContentID   string     `json:"contentId"`
	Scheme      string     `json:"scheme"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
}

type unlockInput struct {
	ID   string `path:"id" format:"uuid" doc:"ID хранилища"`
	Body struct {
		Password string `json:"password,omitempty" doc:"Нужен только для legacy_encrypted"`
	}
}

type unlockOutput struct {
	Body vaultAPI.ContentResponse
}

type byKeyInput struct {
	Body struct {
		Email       string `json:"email" format:"email"`
		RecoveryKey string `json:"recoveryKey" minLength:"1"`
	}
}

type reportOutput struct {
	Body delivery.Report
}

type sweepInput struct {
	Secret string `header:"X-Cron-Secret"`
}
