package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/delivery"
)

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) Sweep(ctx context.Context) (delivery.Report, error) {
	args := m.Called(ctx)
	return args.Get(0).(delivery.Report), args.Error(1)
}

func (m *MockSweeper) DeliverByKey(ctx context.Context, email, key string) (delivery.Report, error) {
	args := m.Called(ctx, email, key)
	return args.Get(0).(delivery.Report), args.Error(1)
}

type purgeFunc func(ctx context.Context) (int64, error)

func (f purgeFunc) PurgeExpired(ctx context.Context) (int64, error) { return f(ctx) }

func TestNew_InvalidCron(t *testing.T) {
	_, err := New("not a cron", time.Minute, new(MockSweeper), slog.Default())
	assert.Error(t, err)
}

func TestNew_RegistersJob(t *testing.T) {
	sc, err := New("0 * * * *", time.Minute, new(MockSweeper), slog.Default())
	require.NoError(t, err)
	assert.Len(t, sc.s.Jobs(), 1)
	assert.Equal(t, []string{sweepTag}, sc.s.Jobs()[0].Tags())
}

func TestScheduler_Run(t *testing.T) {
	sweeper := new(MockSweeper)
	sweeper.On("Sweep", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(delivery.Report{Pending: 2, Delivered: 2}, nil).Once()

	sc, err := New("0 * * * *", time.Minute, sweeper, slog.Default())
	require.NoError(t, err)

	sc.run()
	sweeper.AssertExpectations(t)
}

func TestScheduler_RunError(t *testing.T) {
	sweeper := new(MockSweeper)
	sweeper.On("Sweep", mock.Anything).Return(delivery.Report{}, errors.New("database error")).Once()

	sc, err := New("0 * * * *", 0, sweeper, slog.Default())
	require.NoError(t, err)

	assert.NotPanics(t, sc.run)
	sweeper.AssertExpectations(t)
}

func TestScheduler_StartStop(t *testing.T) {
	sc, err := New("0 0 1 1 *", time.Minute, new(MockSweeper), slog.Default())
	require.NoError(t, err)

	sc.Start()
	assert.True(t, sc.s.IsRunning())
	assert.True(t, sc.NextRun().After(time.Now()))
	sc.Stop()
	assert.False(t, sc.s.IsRunning())
}

func TestScheduler_WithSessionPurge(t *testing.T) {
	sc, err := New("0 * * * *", time.Minute, new(MockSweeper), slog.Default())
	require.NoError(t, err)

	calls := 0
	require.NoError(t, sc.WithSessionPurge(purgeFunc(func(context.Context) (int64, error) {
		calls++
		return 0, errors.New("database error")
	})))
	assert.Len(t, sc.s.Jobs(), 2)

	assert.NotPanics(t, sc.purge)
	assert.Equal(t, 1, calls)
}
