// Package delivery moves vaults from pending to delivered and notifies their
// recipients.
package delivery

import (
	"context"
	"time"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/user"
	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/vault"
)

// DefaultInactivityThreshold is how long an owner may stay away before armed
// inactivity triggers fire.
const DefaultInactivityThreshold = 182 * 24 * time.Hour

// DefaultClaimTTL bounds how long a claimed vault stays locked if the
// process dies between claiming and marking it delivered.
const DefaultClaimTTL = 10 * time.Minute

type Trigger string

const (
	TriggerDate        Trigger = "date"
	TriggerInactivity  Trigger = "inactivity"
	TriggerRecoveryKey Trigger = "recovery_key"
)

// Candidate is a pending vault together with its owner.
type Candidate struct {
	Vault      vault.Vault
	OwnerEmail string
	OwnerName  string
	Trigger    Trigger
}

type Repository interface {
	// ListDue returns pending vaults whose date trigger is at or before now, or
	// whose inactivity trigger is armed and whose owner was last seen before
	// inactiveBefore.
	ListDue(ctx context.Context, now, inactiveBefore time.Time) ([]Candidate, error)
	ListPendingForOwner(ctx context.Context, ownerID int) ([]Candidate, error)
	// Claim locks a pending vault for delivery until the given time and
	// reports whether this call got it. An expired claim can be taken over.
	Claim(ctx context.Context, id string, until, now time.Time) (bool, error)
	// Release drops the claim so the next run can retry.
	Release(ctx context.Context, id string) error
	// MarkDelivered flips a pending vault to delivered and reports whether
	// this call did it.
	MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error)
}

// Notice is what recipients are told about a delivered vault.
type Notice struct {
	To         []string
	VaultID    string
	VaultName  string
	OwnerName  string
	OwnerEmail string
	ContentID  string
	GatewayURL string
	AppURL     string
	Trigger    Trigger
}

type Mailer interface {
	SendDelivery(ctx context.Context, n Notice) error
}

// RecoveryVerifier checks an owner's recovery key.
type RecoveryVerifier interface {
	VerifyRecoveryKey(ctx context.Context, email, key string) (user.User, error)
}

// Report summarises one delivery run.
type Report struct {
	Pending   int `json:"pending"`
	Delivered int `json:"delivered"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
