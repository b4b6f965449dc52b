package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error
	// Validate returns the live session for tokenHash or errs.ErrUnauthorized.
	Validate(ctx context.Context, tokenHash string) (Session, error)
	MarkVerified(ctx context.Context, tokenHash string, at time.Time) error
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
