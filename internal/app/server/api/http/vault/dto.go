package vault

import (
	"time"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/vault"
)

type listOutput struct {
	Body []VaultResponse
}

type output struct {
	Body VaultResponse
}

type createOutput struct {
	Status int
	Body   VaultResponse
}

type idInput struct {
	ID string `path:"id" format:"uuid" doc:"ID хранилища"`
}

type fileInput struct {
	Name string `json:"name,omitempty" doc:"Имя файла"`
	Type string `json:"type,omitempty" doc:"MIME тип"`
	Data []byte `json:"data" doc:"Содержимое в base64"`
}

type createInput struct {
	Body struct {
		Name            string      `json:"name" minLength:"1" maxLength:"100"`
		Message         string      `json:"message,omitempty"`
		Files           []fileInput `json:"files,omitempty"`
		Password        string      `json:"password" minLength:"1" doc:"Пароль хранилища"`
		RecipientEmails []string    `json:"recipientEmails,omitempty"`
		Scheme          string      `json:"scheme,omitempty" enum:"legacy_encrypted,hash_gated"`
	}
}

type updateInput struct {
	ID   string `path:"id" format:"uuid" doc:"ID хранилища"`
	Body struct {
		Name            *string     `json:"name,omitempty" maxLength:"100"`
		Message         *string     `json:"message,omitempty"`
		Files           []fileInput `json:"files,omitempty" doc:"Новые файлы заменяют старые"`
		RecipientEmails *[]string   `json:"recipientEmails,omitempty"`
		Password        string      `json:"password" minLength:"1"`
	}
}

type unlockInput struct {
	ID   string `path:"id" format:"uuid" doc:"ID хранилища"`
	Body struct {
		Password string `json:"password,omitempty"`
	}
}

type unlockOutput struct {
	Body ContentResponse
}

type triggerInput struct {
	ID   string `path:"id" format:"uuid" doc:"ID хранилища"`
	Body struct {
		TriggerDate *time.Time `json:"triggerDate,omitempty" doc:"null снимает триггер"`
	}
}

type inactivityInput struct {
	ID   string `path:"id" format:"uuid" doc:"ID хранилища"`
	Body struct {
		Enabled bool `json:"enabled"`
	}
}

type statusOutput struct {
	Body struct {
		Status string `json:"status" example:"Ok"`
	}
}

// VaultResponse is the owner's view of a vault record.
type VaultResponse struct {
	ID                       string     `json:"id"`
	Name                     string     `json:"name"`
	ContentID                string     `json:"contentId"`
	Scheme                   string     `json:"scheme"`
	RecipientEmails          []string   `json:"recipientEmails"`
	DeliveryStatus           string     `json:"deliveryStatus"`
	TriggerDate              *time.Time `json:"triggerDate,omitempty"`
	InactivityTriggerEnabled bool       `json:"inactivityTriggerEnabled"`
	CreatedAt                time.Time  `json:"createdAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`
	DeliveredAt              *time.Time `json:"deliveredAt,omitempty"`
}

func NewVaultResponse(v vault.Vault) VaultResponse {
	recipients := v.RecipientEmails
	if recipients == nil {
		recipients = []string{}
	}
	return VaultResponse{
		ID:                       v.ID,
		Name:                     v.Name,
		ContentID:                v.ContentID,
		Scheme:                   string(v.Scheme),
		RecipientEmails:          recipients,
		DeliveryStatus:           string(v.DeliveryStatus),
		TriggerDate:              v.TriggerDate,
		InactivityTriggerEnabled: v.InactivityTriggerEnabled,
		CreatedAt:                v.CreatedAt,
		UpdatedAt:                v.UpdatedAt,
		DeliveredAt:              v.DeliveredAt,
	}
}

// ContentResponse is an unlocked vault.
type ContentResponse struct {
	Message *string        `json:"message,omitempty"`
	Files   []FileResponse `json:"files"`
}

type FileResponse struct {
	CID  string `json:"cid"`
	Name string `json:"name"`
	Type string `json:"type"`
	Data []byte `json:"data" doc:"Содержимое в base64"`
}

func NewContentResponse(c vault.Content) ContentResponse {
	files := make([]FileResponse, 0, len(c.Files))
	for _, f := range c.Files {
		files = append(files, FileResponse{CID: f.CID, Name: f.Name, Type: f.Type, Data: f.Data})
	}
	return ContentResponse{Message: c.Message, Files: files}
}

func toFileInputs(in []fileInput) []vault.FileInput {
	if len(in) == 0 {
		return nil
	}
	out := make([]vault.FileInput, 0, len(in))
	for _, f := range in {
		out = append(out, vault.FileInput{Name: f.Name, Type: f.Type, Data: f.Data})
	}
	return out
}
