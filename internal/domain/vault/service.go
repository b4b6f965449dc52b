package vault

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/metrics"
)

const MaxNameLen = 100

type Servicer interface {
	List(ctx context.Context, ownerID int) ([]Vault, error)
	Get(ctx context.Context, ownerID int, id string) (Vault, error)
	Create(ctx context.Context, ownerID int, req CreateRequest) (Vault, error)
	Edit(ctx context.Context, ownerID int, id string, req EditRequest) (Vault, error)
	Delete(ctx context.Context, ownerID int, id string) error
	Unlock(ctx context.Context, ownerID int, id, password string) (Content, error)
	SetTrigger(ctx context.Context, ownerID int, id string, at *time.Time) error
	SetInactivity(ctx context.Context, ownerID int, id string, enabled bool) error
	ListDelivered(ctx context.Context, email string) ([]Vault, error)
	UnlockDelivered(ctx context.Context, email, id, password string) (Content, error)
}

type CreateRequest struct {
	Name            string
	Message         string
	Files           []FileInput
	Password        string
	RecipientEmails []string
	// Scheme is optional; the service default is used when empty.
	Scheme Scheme
}

// EditRequest fields left nil keep their current value.
type EditRequest struct {
	Name            *string
	Message         *string
	Files           []FileInput
	RecipientEmails *[]string
	Password        string
}

type Service struct {
	repo          Repository
	resolver      *Resolver
	defaultScheme Scheme
	metrics       *metrics.Metrics
	log           *slog.Logger
}

func NewService(repo Repository, resolver *Resolver, defaultScheme Scheme, m *metrics.Metrics, log *slog.Logger) *Service {
	if !defaultScheme.Valid() {
		defaultScheme = SchemeHashGated
	}
	return &Service{
		repo:          repo,
		resolver:      resolver,
		defaultScheme: defaultScheme,
		metrics:       m,
		log:           log.With("component", "vault_service"),
	}
}

// List returns the owner's vaults, newest first.
func (s *Service) List(ctx context.Context, ownerID int) ([]Vault, error) {
	vaults, err := s.repo.List(ctx, ownerID)
	if err != nil {
		s.log.Error("failed to list vaults", "user_id", ownerID, "error", err)
		return nil, fmt.Errorf("list vaults: %w", err)
	}
	return vaults, nil
}

func (s *Service) Get(ctx context.Context, ownerID int, id string) (Vault, error) {
	v, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Vault{}, fmt.Errorf("get vault: %w", err)
	}
	return v, nil
}

func (s *Service) Create(ctx context.Context, ownerID int, req CreateRequest) (Vault, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return Vault{}, err
	}

	recipients, err := NormalizeRecipients(req.RecipientEmails)
	if err != nil {
		return Vault{}, err
	}

	scheme := req.Scheme
	if scheme == "" {
		scheme = s.defaultScheme
	}

	contentID, hash, err := s.resolver.Create(ctx, req.Message, req.Files, req.Password, scheme)
	if err != nil {
		s.log.Warn("failed to store vault content", "user_id", ownerID, "error", err)
		return Vault{}, fmt.Errorf("create vault: %w", err)
	}

	v := Vault{
		OwnerID:         ownerID,
		Name:            name,
		ContentID:       contentID,
		Scheme:          scheme,
		CredentialHash:  hash,
		RecipientEmails: recipients,
		DeliveryStatus:  StatusPending,
	}

	id, err := s.repo.Create(ctx, &v)
	if err != nil {
		s.log.Error("failed to save vault", "user_id", ownerID, "cid", contentID, "error", err)
		return Vault{}, fmt.Errorf("create vault: %w", err)
	}
	v.ID = id

	s.log.Info("vault created", "user_id", ownerID, "vault_id", id, "scheme", scheme)

	return v, nil
}

func (s *Service) Edit(ctx context.Context, ownerID int, id string, req EditRequest) (Vault, error) {
	v, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Vault{}, fmt.Errorf("edit vault: %w", err)
	}
	if v.Delivered() {
		return Vault{}, errs.Invalid("vault", "a delivered vault cannot be edited")
	}

	if req.Name != nil {
		if v.Name, err = validateName(*req.Name); err != nil {
			return Vault{}, err
		}
	}

	if req.RecipientEmails != nil {
		if v.RecipientEmails, err = NormalizeRecipients(*req.RecipientEmails); err != nil {
			return Vault{}, err
		}
	}

	contentID, err := s.resolver.Edit(ctx, v, req.Message, req.Files, req.Password)
	if err != nil {
		s.observeUnlock(v.Scheme, err)
		return Vault{}, fmt.Errorf("edit vault: %w", err)
	}
	v.ContentID = contentID

	if err := s.repo.UpdateContent(ctx, &v); err != nil {
		s.log.Error("failed to update vault", "vault_id", id, "cid", contentID, "error", err)
		return Vault{}, fmt.Errorf("edit vault: %w", err)
	}

	s.log.Info("vault edited", "user_id", ownerID, "vault_id", id)

	return v, nil
}

// Delete unpins the manifest and removes the record. If the manifest cannot
// be unpinned the record is kept. File unpins are best effort.
func (s *Service) Delete(ctx context.Context, ownerID int, id string) error {
	v, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete vault: %w", err)
	}

	fileIDs, err := s.resolver.FileIDs(ctx, v)
	if err != nil {
		s.log.Warn("vault files not listed, leaving them pinned", "vault_id", id, "error", err)
	}

	if err := s.resolver.store.Delete(ctx, v.ContentID); err != nil {
		s.log.Error("failed to unpin manifest", "vault_id", id, "cid", v.ContentID, "error", err)
		return fmt.Errorf("delete vault: %w", err)
	}

	for _, fid := range fileIDs {
		if err := s.resolver.store.Delete(ctx, fid); err != nil {
			s.log.Warn("failed to unpin file", "vault_id", id, "cid", fid, "error", err)
		}
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete vault: %w", err)
	}

	s.log.Info("vault deleted", "user_id", ownerID, "vault_id", id)

	return nil
}

func (s *Service) Unlock(ctx context.Context, ownerID int, id, password string) (Content, error) {
	v, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Content{}, fmt.Errorf("unlock vault: %w", err)
	}

	content, err := s.resolver.Unlock(ctx, v, password)
	s.observeUnlock(v.Scheme, err)
	if err != nil {
		return Content{}, fmt.Errorf("unlock vault: %w", err)
	}

	return content, nil
}

// SetTrigger sets or, with nil, clears the delivery date.
func (s *Service) SetTrigger(ctx context.Context, ownerID int, id string, at *time.Time) error {
	if at != nil {
		utc := at.UTC()
		at = &utc
	}
	if err := s.repo.SetTrigger(ctx, ownerID, id, at); err != nil {
		return fmt.Errorf("set trigger: %w", err)
	}
	return nil
}

func (s *Service) SetInactivity(ctx context.Context, ownerID int, id string, enabled bool) error {
	if err := s.repo.SetInactivity(ctx, ownerID, id, enabled); err != nil {
		return fmt.Errorf("set inactivity trigger: %w", err)
	}
	return nil
}

// ListDelivered returns vaults delivered to email.
func (s *Service) ListDelivered(ctx context.Context, email string) ([]Vault, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errs.ErrUnauthorized
	}

	vaults, err := s.repo.ListDeliveredTo(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list delivered vaults: %w", err)
	}
	return vaults, nil
}

// UnlockDelivered opens a delivered vault for one of its recipients.
// Hash-gated vaults need no password here; legacy vaults still do.
func (s *Service) UnlockDelivered(ctx context.Context, email, id, password string) (Content, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Content{}, fmt.Errorf("unlock delivered vault: %w", err)
	}

	if !v.Delivered() || !v.HasRecipient(email) {
		s.log.Warn("recipient access denied", "vault_id", id, "status", v.DeliveryStatus)
		return Content{}, errs.ErrUnauthorized
	}

	content, err := s.resolver.Release(ctx, v, password)
	s.observeUnlock(v.Scheme, err)
	if err != nil {
		return Content{}, fmt.Errorf("unlock delivered vault: %w", err)
	}

	return content, nil
}

func (s *Service) observeUnlock(scheme Scheme, err error) {
	if s.metrics == nil {
		return
	}
	result := metrics.Result(err)
	if IsCredentialError(err) {
		result = "denied"
	}
	s.metrics.Unlocks.WithLabelValues(string(scheme), result).Inc()
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errs.Invalid("name", "vault name is required")
	}
	if len(name) > MaxNameLen {
		return "", errs.Invalid("name", fmt.Sprintf("vault name must be at most %d characters", MaxNameLen))
	}
	return name, nil
}

// NormalizeRecipients lower-cases, trims and de-duplicates emails, keeping order.
func NormalizeRecipients(emails []string) ([]string, error) {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))

	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		addr, err := mail.ParseAddress(e)
		if err != nil || addr.Address != e {
			return nil, errs.Invalid("recipient_emails", fmt.Sprintf("invalid recipient email %q", e))
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}

	return out, nil
}

var _ Servicer = (*Service)(nil)
