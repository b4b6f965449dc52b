package postgres

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/user"
)

const userColumns = `id, email, name, COALESCE(oauth_subject, ''), COALESCE(password_hash, ''),
	COALESCE(recovery_key_hash, ''), onboarding_completed, last_seen, created_at`

func NewUserRepository(db DBTX, log *slog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log.With("component", "user_repository"),
	}
}

type UserRepository struct {
	db  DBTX
	log *slog.Logger
}

func scanUser(row scanner) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.OAuthSubject, &u.PasswordHash,
		&u.RecoveryKeyHash, &u.OnboardingCompleted, &u.LastSeen, &u.CreatedAt)
	return u, err
}

// UpsertOAuth creates the account on first sign-in. An existing account keeps
// its name and subject.
func (r *UserRepository) UpsertOAuth(ctx context.Context, subject, email, name string) (user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (email, name, oauth_subject) VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET
		     oauth_subject = COALESCE(users.oauth_subject, EXCLUDED.oauth_subject),
		     name = CASE WHEN users.name = '' THEN EXCLUDED.name ELSE users.name END
		 RETURNING `+userColumns,
		email, name, nullable(subject)))
	if err != nil {
		return user.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return user.User{}, notFound(err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return user.User{}, notFound(err)
	}
	return u, nil
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, id int, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
}

func (r *UserRepository) SetRecoveryKeyHash(ctx context.Context, id int, hash string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET recovery_key_hash = $2 WHERE id = $1 AND recovery_key_hash IS NULL`,
		id, hash)
	if err != nil {
		return false, fmt.Errorf("set recovery key: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) ClearRecoveryKeyHash(ctx context.Context, id int) error {
	return r.exec(ctx, `UPDATE users SET recovery_key_hash = NULL WHERE id = $1`, id)
}

func (r *UserRepository) CompleteOnboarding(ctx context.Context, id int) error {
	return r.exec(ctx, `UPDATE users SET onboarding_completed = TRUE WHERE id = $1`, id)
}

func (r *UserRepository) TouchLastSeen(ctx context.Context, id int, now, staleBefore time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET last_seen = $2 WHERE id = $1 AND (last_seen IS NULL OR last_seen < $3)`,
		id, now, staleBefore)
	if err != nil {
		return fmt.Errorf("touch last seen: %w", err)
	}
	return nil
}

func (r *UserRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
