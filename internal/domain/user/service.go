package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/credential"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
)

const DefaultLastSeenInterval = 15 * time.Minute

type Servicer interface {
	LoginOAuth(ctx context.Context, subject, email, name string) (User, error)
	Get(ctx context.Context, id int) (User, error)
	SetPassword(ctx context.Context, id int, password string) error
	VerifyPassword(ctx context.Context, id int, password string) error
	SetRecoveryKey(ctx context.Context, id int, key string) (string, error)
	DeleteRecoveryKey(ctx context.Context, id int) error
	RecoveryKeyStatus(ctx context.Context, id int) (bool, error)
	VerifyRecoveryKey(ctx context.Context, email, key string) (User, error)
	CompleteOnboarding(ctx context.Context, id int) error
	TouchLastSeen(ctx context.Context, id int) error
}

type Service struct {
	repo             Repository
	validator        Validator
	hasher           credential.Hasher
	lastSeenInterval time.Duration
	now              func() time.Time
	log              *slog.Logger
}

func NewService(repo Repository, validator Validator, hasher credential.Hasher, lastSeenInterval time.Duration, log *slog.Logger) *Service {
	if lastSeenInterval <= 0 {
		lastSeenInterval = DefaultLastSeenInterval
	}
	return &Service{
		repo:             repo,
		validator:        validator,
		hasher:           hasher,
		lastSeenInterval: lastSeenInterval,
		now:              time.Now,
		log:              log.With("component", "user_service"),
	}
}

// LoginOAuth creates or refreshes the account behind an identity provider subject.
func (s *Service) LoginOAuth(ctx context.Context, subject, email, name string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if subject == "" {
		return User{}, errs.Invalid("subject", "identity subject is required")
	}
	if err := s.validator.ValidateEmail(email); err != nil {
		s.log.Debug("validation failed", "email", email, "error", err)
		return User{}, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}

	u, err := s.repo.UpsertOAuth(ctx, subject, email, strings.TrimSpace(name))
	if err != nil {
		return User{}, fmt.Errorf("upsert user: %w", err)
	}

	s.log.Info("user signed in", "user_id", u.ID)

	return u, nil
}

func (s *Service) Get(ctx context.Context, id int) (User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// SetPassword stores a new secondary password after the strength policy check.
func (s *Service) SetPassword(ctx context.Context, id int, password string) error {
	if err := s.validator.ValidatePassword(password); err != nil {
		return errs.Invalid("password", err.Error())
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.SetPasswordHash(ctx, id, hash); err != nil {
		return fmt.Errorf("set password: %w", err)
	}

	s.log.Info("secondary password set", "user_id", id)

	return nil
}

func (s *Service) VerifyPassword(ctx context.Context, id int, password string) error {
	if password == "" {
		return errs.Invalid("password", "password is required")
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if !u.HasPassword() {
		return ErrPasswordNotSet
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		s.log.Debug("secondary password rejected", "user_id", id)
		return errs.ErrInvalidPassword
	}

	return nil
}

// SetRecoveryKey stores key, or a freshly generated one when key is empty,
// and returns it. It fails with errs.ErrRecoveryKeyAlreadySet while another
// key is stored.
func (s *Service) SetRecoveryKey(ctx context.Context, id int, key string) (string, error) {
	if key == "" {
		generated, err := credential.GenerateRecoveryKey()
		if err != nil {
			return "", err
		}
		key = generated
	}

	normalized := credential.NormalizeRecoveryKey(key)
	if len(normalized) < MinRecoveryKeyLen {
		return "", errs.Invalid("recovery_key", fmt.Sprintf("recovery key must be at least %d characters long", MinRecoveryKeyLen))
	}

	hash, err := s.hasher.Hash(normalized)
	if err != nil {
		return "", fmt.Errorf("hash recovery key: %w", err)
	}

	stored, err := s.repo.SetRecoveryKeyHash(ctx, id, hash)
	if err != nil {
		return "", fmt.Errorf("set recovery key: %w", err)
	}
	if !stored {
		return "", errs.ErrRecoveryKeyAlreadySet
	}

	s.log.Info("recovery key set", "user_id", id)

	return key, nil
}

func (s *Service) DeleteRecoveryKey(ctx context.Context, id int) error {
	if err := s.repo.ClearRecoveryKeyHash(ctx, id); err != nil {
		return fmt.Errorf("delete recovery key: %w", err)
	}
	s.log.Info("recovery key deleted", "user_id", id)
	return nil
}

func (s *Service) RecoveryKeyStatus(ctx context.Context, id int) (bool, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("find user: %w", err)
	}
	return u.HasRecoveryKey(), nil
}

// VerifyRecoveryKey finds the account by email and checks key against it.
// An unknown email and a wrong key give the same error.
func (s *Service) VerifyRecoveryKey(ctx context.Context, email, key string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || key == "" {
		return User{}, errs.Invalid("recovery_key", "email and recovery key are required")
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.log.Debug("recovery key for unknown account", "error", err)
		return User{}, errs.ErrInvalidPassword
	}

	if err := s.hasher.Compare(u.RecoveryKeyHash, credential.NormalizeRecoveryKey(key)); err != nil {
		s.log.Warn("recovery key rejected", "user_id", u.ID)
		return User{}, errs.ErrInvalidPassword
	}

	return u, nil
}

func (s *Service) CompleteOnboarding(ctx context.Context, id int) error {
	if err := s.repo.CompleteOnboarding(ctx, id); err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}
	return nil
}

// TouchLastSeen records activity, writing at most once per interval.
func (s *Service) TouchLastSeen(ctx context.Context, id int) error {
	now := s.now().UTC()
	if err := s.repo.TouchLastSeen(ctx, id, now, now.Add(-s.lastSeenInterval)); err != nil {
		return fmt.Errorf("touch last seen: %w", err)
	}
	return nil
}

var _ Servicer = (*Service)(nil)
