package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/delivery"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/vault"
)

const vaultColumns = `v.id::text, v.owner_id, v.name, v.content_id, v.scheme, COALESCE(v.credential_hash, ''),
	v.recipient_emails, v.delivery_status, v.trigger_date, v.inactivity_trigger_enabled,
	v.created_at, v.updated_at, v.delivered_at`

// VaultRepository implements vault.Repository and delivery.Repository.
type VaultRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewVaultRepository(db DBTX, log *slog.Logger) *VaultRepository {
	return &VaultRepository{
		db:  db,
		log: log.With("component", "vault_repository"),
	}
}

func scanVault(row scanner, extra ...any) (vault.Vault, error) {
	var (
		v      vault.Vault
		scheme string
		status string
	)
	dest := []any{&v.ID, &v.OwnerID, &v.Name, &v.ContentID, &scheme, &v.CredentialHash,
		&v.RecipientEmails, &status, &v.TriggerDate, &v.InactivityTriggerEnabled,
		&v.CreatedAt, &v.UpdatedAt, &v.DeliveredAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return vault.Vault{}, err
	}
	v.Scheme = vault.Scheme(scheme)
	v.DeliveryStatus = vault.DeliveryStatus(status)
	return v, nil
}

// validID keeps malformed ids away from the uuid cast.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func recipients(emails []string) []string {
	if emails == nil {
		return []string{}
	}
	return emails
}

func (r *VaultRepository) Create(ctx context.Context, v *vault.Vault) (string, error) {
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO vaults (owner_id, name, content_id, scheme, credential_hash, recipient_emails,
		     trigger_date, inactivity_trigger_enabled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id::text`,
		v.OwnerID, v.Name, v.ContentID, string(v.Scheme), nullable(v.CredentialHash),
		recipients(v.RecipientEmails), v.TriggerDate, v.InactivityTriggerEnabled,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert vault: %w", err)
	}
	return id, nil
}

func (r *VaultRepository) Get(ctx context.Context, ownerID int, id string) (vault.Vault, error) {
	if !validID(id) {
		return vault.Vault{}, errs.ErrNotFound
	}
	v, err := scanVault(r.db.QueryRow(ctx,
		`SELECT `+vaultColumns+` FROM vaults v WHERE v.id = $1::uuid AND v.owner_id = $2`,
		id, ownerID))
	if err != nil {
		return vault.Vault{}, notFound(err)
	}
	return v, nil
}

func (r *VaultRepository) GetByID(ctx context.Context, id string) (vault.Vault, error) {
	if !validID(id) {
		return vault.Vault{}, errs.ErrNotFound
	}
	v, err := scanVault(r.db.QueryRow(ctx,
		`SELECT `+vaultColumns+` FROM vaults v WHERE v.id = $1::uuid`, id))
	if err != nil {
		return vault.Vault{}, notFound(err)
	}
	return v, nil
}

func (r *VaultRepository) List(ctx context.Context, ownerID int) ([]vault.Vault, error) {
	return r.list(ctx,
		`SELECT `+vaultColumns+` FROM vaults v WHERE v.owner_id = $1 ORDER BY v.created_at DESC`,
		ownerID)
}

func (r *VaultRepository) ListDeliveredTo(ctx context.Context, email string) ([]vault.Vault, error) {
	return r.list(ctx,
		`SELECT `+vaultColumns+` FROM vaults v
		 WHERE v.delivery_status = 'delivered'
		   AND EXISTS (SELECT 1 FROM unnest(v.recipient_emails) AS r(email) WHERE lower(r.email) = lower($1))
		 ORDER BY v.delivered_at DESC`,
		email)
}

func (r *VaultRepository) list(ctx context.Context, sql string, args ...any) ([]vault.Vault, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query vaults: %w", err)
	}
	defer rows.Close()

	vaults := []vault.Vault{}
	for rows.Next() {
		v, err := scanVault(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vault: %w", err)
		}
		vaults = append(vaults, v)
	}
	return vaults, rows.Err()
}

func (r *VaultRepository) UpdateContent(ctx context.Context, v *vault.Vault) error {
	if !validID(v.ID) {
		return errs.ErrNotFound
	}
	return r.exec(ctx,
		`UPDATE vaults SET name = $3, content_id = $4, scheme = $5, credential_hash = $6,
		     recipient_emails = $7, updated_at = NOW()
		 WHERE id = $1::uuid AND owner_id = $2`,
		v.ID, v.OwnerID, v.Name, v.ContentID, string(v.Scheme), nullable(v.CredentialHash),
		recipients(v.RecipientEmails))
}

func (r *VaultRepository) SetTrigger(ctx context.Context, ownerID int, id string, at *time.Time) error {
	if !validID(id) {
		return errs.ErrNotFound
	}
	return r.exec(ctx,
		`UPDATE vaults SET trigger_date = $3, updated_at = NOW() WHERE id = $1::uuid AND owner_id = $2`,
		id, ownerID, at)
}

func (r *VaultRepository) SetInactivity(ctx context.Context, ownerID int, id string, enabled bool) error {
	if !validID(id) {
		return errs.ErrNotFound
	}
	return r.exec(ctx,
		`UPDATE vaults SET inactivity_trigger_enabled = $3, updated_at = NOW() WHERE id = $1::uuid AND owner_id = $2`,
		id, ownerID, enabled)
}

func (r *VaultRepository) Delete(ctx context.Context, ownerID int, id string) error {
	if !validID(id) {
		return errs.ErrNotFound
	}
	return r.exec(ctx, `DELETE FROM vaults WHERE id = $1::uuid AND owner_id = $2`, id, ownerID)
}

func (r *VaultRepository) ListDue(ctx context.Context, now, inactiveBefore time.Time) ([]delivery.Candidate, error) {
	return r.candidates(ctx,
		`SELECT `+vaultColumns+`, u.email, u.name,
		     CASE WHEN v.trigger_date IS NOT NULL AND v.trigger_date <= $1 THEN 'date' ELSE 'inactivity' END
		 FROM vaults v JOIN users u ON u.id = v.owner_id
		 WHERE v.delivery_status = 'pending'
		   AND ((v.trigger_date IS NOT NULL AND v.trigger_date <= $1)
		     OR (v.inactivity_trigger_enabled AND u.last_seen IS NOT NULL AND u.last_seen < $2))
		 ORDER BY v.created_at`,
		now, inactiveBefore)
}

func (r *VaultRepository) ListPendingForOwner(ctx context.Context, ownerID int) ([]delivery.Candidate, error) {
	return r.candidates(ctx,
		`SELECT `+vaultColumns+`, u.email, u.name, ''
		 FROM vaults v JOIN users u ON u.id = v.owner_id
		 WHERE v.delivery_status = 'pending' AND v.owner_id = $1
		 ORDER BY v.created_at`,
		ownerID)
}

func (r *VaultRepository) candidates(ctx context.Context, sql string, args ...any) ([]delivery.Candidate, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending vaults: %w", err)
	}
	defer rows.Close()

	var out []delivery.Candidate
	for rows.Next() {
		var (
			c       delivery.Candidate
			trigger string
		)
		v, err := scanVault(rows, &c.OwnerEmail, &c.OwnerName, &trigger)
		if err != nil {
			return nil, fmt.Errorf("scan pending vault: %w", err)
		}
		c.Vault = v
		c.Trigger = delivery.Trigger(trigger)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *VaultRepository) MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE vaults SET delivery_status = 'delivered', delivered_at = $2, updated_at = $2,
		        delivery_claimed_until = NULL
		 WHERE id = $1::uuid AND delivery_status = 'pending'`,
		id, at)
	if err != nil {
		return false, fmt.Errorf("mark delivered: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Claim is a single conditional UPDATE, so of two concurrent callers only one
// sees a row affected.
func (r *VaultRepository) Claim(ctx context.Context, id string, until, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE vaults SET delivery_claimed_until = $2
		 WHERE id = $1::uuid AND delivery_status = 'pending'
		   AND (delivery_claimed_until IS NULL OR delivery_claimed_until <= $3)`,
		id, until, now)
	if err != nil {
		return false, fmt.Errorf("claim vault: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *VaultRepository) Release(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE vaults SET delivery_claimed_until = NULL
		 WHERE id = $1::uuid AND delivery_status = 'pending'`,
		id)
	if err != nil {
		return fmt.Errorf("release vault claim: %w", err)
	}
	return nil
}

func (r *VaultRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
