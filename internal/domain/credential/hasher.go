// Package credential hashes and checks the secrets that gate vaults and
// accounts: vault passwords, secondary passwords and recovery keys.
package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"
)

const DefaultCost = 10

// Hasher produces and checks one-way credential hashes.
type Hasher interface {
	Hash(secret string) (string, error)
	Compare(hash, secret string) error
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt hasher. cost <= 0 means DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash rejects empty secrets.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", errs.Invalid("password", "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// Compare returns errs.ErrInvalidPassword for any mismatch, including an
// empty secret or a missing hash.
func (h *BcryptHasher) Compare(hash, secret string) error {
	if hash == "" || secret == "" {
		return errs.ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return errs.ErrInvalidPassword
	}
	return nil
}
