package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/session"
)

type SessionRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewSessionRepository(db DBTX, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		db:  db,
		log: log.With("component", "session_repository"),
	}
}

func (r *SessionRepository) Create(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (user_id, token_hash, expires_at) VALUES ($1, $2, $3)`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Validate(ctx context.Context, tokenHash string) (session.Session, error) {
	var s session.Session
	err := r.db.QueryRow(ctx,
		`SELECT s.user_id, u.email, s.second_factor, s.expires_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token_hash = $1 AND s.expires_at > NOW()`,
		tokenHash).Scan(&s.UserID, &s.Email, &s.SecondFactor, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.Session{}, errs.ErrUnauthorized
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("validate session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) MarkVerified(ctx context.Context, tokenHash string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions SET second_factor = TRUE, verified_at = $2
		 WHERE token_hash = $1 AND expires_at > NOW()`,
		tokenHash, at)
	if err != nil {
		return fmt.Errorf("mark session verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrUnauthorized
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

// DeleteExpired removes dead sessions and returns how many went.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
