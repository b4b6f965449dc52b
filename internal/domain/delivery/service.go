package delivery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/infrastructure/metrics"
)

type Servicer interface {
	Sweep(ctx context.Context) (Report, error)
	DeliverByKey(ctx context.Context, email, key string) (Report, error)
}

type Config struct {
	InactivityThreshold time.Duration
	ClaimTTL            time.Duration
	GatewayURL          string
	AppURL              string
}

type Service struct {
	repo    Repository
	mailer  Mailer
	users   RecoveryVerifier
	cfg     Config
	metrics *metrics.Metrics
	now     func() time.Time
	log     *slog.Logger
}

func NewService(repo Repository, mailer Mailer, users RecoveryVerifier, cfg Config, m *metrics.Metrics, log *slog.Logger) *Service {
	if cfg.InactivityThreshold <= 0 {
		cfg.InactivityThreshold = DefaultInactivityThreshold
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = DefaultClaimTTL
	}
	cfg.GatewayURL = strings.TrimRight(cfg.GatewayURL, "/")
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")

	return &Service{
		repo:    repo,
		mailer:  mailer,
		users:   users,
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
		log:     log.With("component", "delivery_service"),
	}
}

// Sweep delivers every vault whose date or inactivity trigger has fired.
// A vault that fails is left pending for the next run.
func (s *Service) Sweep(ctx context.Context) (Report, error) {
	start := s.now()
	defer func() {
		if s.metrics != nil {
			s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
		}
	}()

	now := start.UTC()
	due, err := s.repo.ListDue(ctx, now, now.Add(-s.cfg.InactivityThreshold))
	if err != nil {
		s.log.Error("failed to list due vaults", "error", err)
		return Report{}, fmt.Errorf("list due vaults: %w", err)
	}

	report := s.deliverAll(ctx, due, now)

	s.log.Info("trigger sweep finished",
		"pending", report.Pending,
		"delivered", report.Delivered,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)

	return report, nil
}

// DeliverByKey lets an owner release all their pending vaults with the
// recovery key.
func (s *Service) DeliverByKey(ctx context.Context, email, key string) (Report, error) {
	owner, err := s.users.VerifyRecoveryKey(ctx, email, key)
	if err != nil {
		return Report{}, err
	}

	pending, err := s.repo.ListPendingForOwner(ctx, owner.ID)
	if err != nil {
		return Report{}, fmt.Errorf("list pending vaults: %w", err)
	}
	for i := range pending {
		pending[i].Trigger = TriggerRecoveryKey
	}

	report := s.deliverAll(ctx, pending, s.now().UTC())

	s.log.Info("recovery key delivery finished", "user_id", owner.ID, "delivered", report.Delivered, "pending", report.Pending)

	return report, nil
}

func (s *Service) deliverAll(ctx context.Context, candidates []Candidate, now time.Time) Report {
	report := Report{Pending: len(candidates)}

	for _, c := range candidates {
		if ctx.Err() != nil {
			report.Failed += len(candidates) - report.Delivered - report.Skipped - report.Failed
			break
		}

		if len(c.Vault.RecipientEmails) == 0 {
			report.Skipped++
			continue
		}

		delivered, err := s.deliver(ctx, c, now)
		s.observe(c.Trigger, delivered, err)

		switch {
		case err != nil:
			report.Failed++
			s.log.Error("vault delivery failed", "vault_id", c.Vault.ID, "trigger", c.Trigger, "error", err)
		case delivered:
			report.Delivered++
		default:
			report.Skipped++
		}
	}

	return report
}

// deliver claims the vault, sends the notice, then flips the status. Only the
// run holding the claim sends, so overlapping sweeps never mail twice. A crash
// after sending leaves the claim to expire and the notice goes out again.
func (s *Service) deliver(ctx context.Context, c Candidate, now time.Time) (bool, error) {
	v := c.Vault

	claimed, err := s.repo.Claim(ctx, v.ID, now.Add(s.cfg.ClaimTTL), now)
	if err != nil {
		return false, fmt.Errorf("claim vault: %w", err)
	}
	if !claimed {
		s.log.Debug("vault is delivered or being delivered by another run", "vault_id", v.ID)
		return false, nil
	}

	notice := Notice{
		To:         v.RecipientEmails,
		VaultID:    v.ID,
		VaultName:  v.Name,
		OwnerName:  c.OwnerName,
		OwnerEmail: c.OwnerEmail,
		ContentID:  v.ContentID,
		GatewayURL: s.cfg.GatewayURL + "/ipfs/" + v.ContentID,
		AppURL:     s.cfg.AppURL,
		Trigger:    c.Trigger,
	}

	if err := s.mailer.SendDelivery(ctx, notice); err != nil {
		if rerr := s.repo.Release(context.WithoutCancel(ctx), v.ID); rerr != nil {
			s.log.Warn("failed to release delivery claim", "vault_id", v.ID, "error", rerr)
		}
		return false, fmt.Errorf("send delivery email: %w", err)
	}

	ok, err := s.repo.MarkDelivered(ctx, v.ID, now)
	if err != nil {
		return false, fmt.Errorf("mark delivered: %w", err)
	}
	if !ok {
		s.log.Warn("vault was already delivered", "vault_id", v.ID)
		return false, nil
	}

	s.log.Info("vault delivered", "vault_id", v.ID, "trigger", c.Trigger, "recipients", len(v.RecipientEmails))

	return true, nil
}

func (s *Service) observe(trigger Trigger, delivered bool, err error) {
	if s.metrics == nil {
		return
	}
	result := metrics.Result(err)
	if err == nil && !delivered {
		result = "skipped"
	}
	s.metrics.Deliveries.WithLabelValues(string(trigger), result).Inc()
}

var _ Servicer = (*Service)(nil)
