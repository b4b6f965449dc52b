package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
)

const DefaultTTL = 24 * time.Hour

// Session is the authenticated caller behind a bearer token.
type Session struct {
	UserID int
	Email  string
	// SecondFactor is set once the secondary password was verified with this token.
	SecondFactor bool
	ExpiresAt    time.Time
}

type Servicer interface {
	Create(ctx context.Context, userID int) (string, error)
	Validate(ctx context.Context, token string) (Session, error)
	MarkVerified(ctx context.Context, token string) error
	Revoke(ctx context.Context, token string) error
}

type Service struct {
	repo Repository
	ttl  time.Duration
	log  *slog.Logger
}

func NewService(repo Repository, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		repo: repo,
		ttl:  ttl,
		log:  log.With("component", "session_service"),
	}
}

func (s *Service) Create(ctx context.Context, userID int) (string, error) {
	// Генерация токена
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	token := base64.URLEncoding.EncodeToString(tokenBytes)

	expiresAt := time.Now().Add(s.ttl)
	if err := s.repo.Create(ctx, userID, hashToken(token), expiresAt); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return token, nil
}

func (s *Service) Validate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, errs.ErrUnauthorized
	}
	return s.repo.Validate(ctx, hashToken(token))
}

// MarkVerified records that the secondary password was checked in this session.
func (s *Service) MarkVerified(ctx context.Context, token string) error {
	if err := s.repo.MarkVerified(ctx, hashToken(token), time.Now()); err != nil {
		return fmt.Errorf("mark session verified: %w", err)
	}
	return nil
}

func (s *Service) Revoke(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, hashToken(token)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeExpired drops sessions past their expiry and returns how many were removed.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	if n > 0 {
		s.log.Info("expired sessions purged", "count", n)
	}
	return n, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

var _ Servicer = (*Service)(nil)
