package user

import (
	"context"
	"time"
)

type Repository interface {
	UpsertOAuth(ctx context.Context, subject, email, name string) (User, error)
	FindByID(ctx context.Context, id int) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	SetPasswordHash(ctx context.Context, id int, hash string) error
	// SetRecoveryKeyHash stores hash only when no key is set and reports
	// whether it did.
	SetRecoveryKeyHash(ctx context.Context, id int, hash string) (bool, error)
	ClearRecoveryKeyHash(ctx context.Context, id int) error
	CompleteOnboarding(ctx context.Context, id int) error
	// TouchLastSeen moves last_seen to now unless it is newer than staleBefore.
	TouchLastSeen(ctx context.Context, id int, now, staleBefore time.Time) error
}
