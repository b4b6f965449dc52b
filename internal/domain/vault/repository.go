package vault

import (
	"context"
	"time"
)

// Repository stores vault records. Lookups by owner return errs.ErrNotFound
// when the vault does not exist or belongs to someone else.
type Repository interface {
	Create(ctx context.Context, v *Vault) (string, error)
	Get(ctx context.Context, ownerID int, id string) (Vault, error)
	GetByID(ctx context.Context, id string) (Vault, error)
	List(ctx context.Context, ownerID int) ([]Vault, error)
	UpdateContent(ctx context.Context, v *Vault) error
	SetTrigger(ctx context.Context, ownerID int, id string, at *time.Time) error
	SetInactivity(ctx context.Context, ownerID int, id string, enabled bool) error
	Delete(ctx context.Context, ownerID int, id string) error
	ListDeliveredTo(ctx context.Context, email string) ([]Vault, error)
}
