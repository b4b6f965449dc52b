package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/delivery"
)

const (
	sweepTag = "delivery-sweep"
	purgeTag = "session-purge"

	purgeExpression = "30 3 * * *"
)

// Purger drops expired sessions.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Scheduler периодически запускает проверку триггеров доставки.
type Scheduler struct {
	s       *gocron.Scheduler
	sweeper delivery.Servicer
	purger  Purger
	timeout time.Duration
	log     *slog.Logger
}

// New registers the sweep job on a cron expression. Runs never overlap.
func New(cronExpression string, timeout time.Duration, sweeper delivery.Servicer, log *slog.Logger) (*Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	s.SetMaxConcurrentJobs(1, gocron.WaitMode)
	s.SingletonModeAll()

	sc := &Scheduler{
		s:       s,
		sweeper: sweeper,
		timeout: timeout,
		log:     log.With("component", "scheduler"),
	}

	if _, err := s.Cron(cronExpression).Tag(sweepTag).Do(sc.run); err != nil {
		return nil, fmt.Errorf("create sweep job %q: %w", cronExpression, err)
	}

	return sc, nil
}

// WithSessionPurge adds a daily job removing expired sessions.
func (sc *Scheduler) WithSessionPurge(p Purger) error {
	sc.purger = p
	if _, err := sc.s.Cron(purgeExpression).Tag(purgeTag).Do(sc.purge); err != nil {
		return fmt.Errorf("create purge job: %w", err)
	}
	return nil
}

func (sc *Scheduler) jobContext() (context.Context, context.CancelFunc) {
	if sc.timeout > 0 {
		return context.WithTimeout(context.Background(), sc.timeout)
	}
	return context.WithCancel(context.Background())
}

func (sc *Scheduler) purge() {
	ctx, cancel := sc.jobContext()
	defer cancel()

	if _, err := sc.purger.PurgeExpired(ctx); err != nil {
		sc.log.Error("session purge failed", "error", err)
	}
}

func (sc *Scheduler) run() {
	ctx, cancel := sc.jobContext()
	defer cancel()

	report, err := sc.sweeper.Sweep(ctx)
	if err != nil {
		sc.log.Error("sweep failed", "error", err)
		return
	}

	sc.log.Info("sweep finished",
		"pending", report.Pending,
		"delivered", report.Delivered,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
}

func (sc *Scheduler) Start() {
	sc.log.Info("starting scheduler", "jobs", len(sc.s.Jobs()))
	sc.s.StartAsync()
}

func (sc *Scheduler) Stop() {
	sc.s.Stop()
}

// NextRun reports when the sweep runs next.
func (sc *Scheduler) NextRun() time.Time {
	_, next := sc.s.NextRun()
	return next
}
