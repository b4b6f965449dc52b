package vault

import (
	"strings"
	"time"
)

// Scheme says how a vault's manifest is protected. It is stored on the record
// and never guessed from the stored bytes.
type Scheme string

const (
	// SchemeLegacyEncrypted stores the manifest encrypted with the vault password.
	SchemeLegacyEncrypted Scheme = "legacy_encrypted"
	// SchemeHashGated stores the manifest in the clear and gates it by a bcrypt hash.
	SchemeHashGated Scheme = "hash_gated"
)

func (s Scheme) Valid() bool {
	return s == SchemeLegacyEncrypted || s == SchemeHashGated
}

type DeliveryStatus string

const (
	StatusPending   DeliveryStatus = "pending"
	StatusDelivered DeliveryStatus = "delivered"
)

type Vault struct {
	ID                       string
	OwnerID                  int
	Name                     string
	ContentID                string
	Scheme                   Scheme
	CredentialHash           string // пусто для legacy_encrypted
	RecipientEmails          []string
	DeliveryStatus           DeliveryStatus
	TriggerDate              *time.Time
	InactivityTriggerEnabled bool
	CreatedAt                time.Time
	UpdatedAt                time.Time
	DeliveredAt              *time.Time
}

// HasRecipient compares emails case-insensitively.
func (v Vault) HasRecipient(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, r := range v.RecipientEmails {
		if strings.ToLower(r) == email {
			return true
		}
	}
	return false
}

func (v Vault) Delivered() bool {
	return v.DeliveryStatus == StatusDelivered
}

// FileInput is a file supplied by the owner for upload.
type FileInput struct {
	Name string
	Type string
	Data []byte
}

// File is a resolved file: its manifest entry plus the bytes.
type File struct {
	CID  string
	Name string
	Type string
	Data []byte
}

// Content is an unlocked vault.
type Content struct {
	Message *string
	Files   []File
}
