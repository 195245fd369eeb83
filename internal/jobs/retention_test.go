package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockListingExpirer struct{ mock.Mock }

func (m *MockListingExpirer) ExpireStale(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

type MockLivePricePurger struct{ mock.Mock }

func (m *MockLivePricePurger) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockNotificationPurger struct{ mock.Mock }

func (m *MockNotificationPurger) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newJob(cfg *config.Config) (*RetentionJob, *MockListingExpirer, *MockLivePricePurger, *MockNotificationPurger) {
	l, p, n := new(MockListingExpirer), new(MockLivePricePurger), new(MockNotificationPurger)
	job := NewRetentionJob(l, p, n, zap.NewNop(), cfg)
	return job, l, p, n
}

func TestRetentionJob_Run(t *testing.T) {
	now := time.Date(2026, 6, 30, 3, 0, 0, 0, time.UTC)
	job, l, p, n := newJob(&config.Config{ListingLifespanDays: 30, LivePriceRetentionDays: 7})
	job.now = func() time.Time { return now }

	l.On("ExpireStale", mock.Anything, now.AddDate(0, 0, -30)).Return(4, nil).Once()
	p.On("PurgeOlderThan", mock.Anything, now.AddDate(0, 0, -7)).Return(int64(12), nil).Once()
	n.On("PurgeExpired", mock.Anything).Return(int64(2), nil).Once()

	before := testutil.ToFloat64(metrics.RetentionDeleted.WithLabelValues("live_prices"))
	job.Run(context.Background())

	l.AssertExpectations(t)
	p.AssertExpectations(t)
	n.AssertExpectations(t)
	assert.Equal(t, before+12, testutil.ToFloat64(metrics.RetentionDeleted.WithLabelValues("live_prices")))
}

func TestRetentionJob_StepFailureDoesNotStopOthers(t *testing.T) {
	job, l, p, n := newJob(&config.Config{ListingLifespanDays: 30, LivePriceRetentionDays: 30})
	l.On("ExpireStale", mock.Anything, mock.Anything).Return(0, errors.New("db down")).Once()
	p.On("PurgeOlderThan", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down")).Once()
	n.On("PurgeExpired", mock.Anything).Return(int64(1), nil).Once()

	job.Run(context.Background())
	n.AssertExpectations(t)
}

func TestRetentionJob_DisabledWindows(t *testing.T) {
	job, l, p, n := newJob(&config.Config{})
	n.On("PurgeExpired", mock.Anything).Return(int64(0), nil).Once()

	job.Run(context.Background())
	l.AssertNotCalled(t, "ExpireStale", mock.Anything, mock.Anything)
	p.AssertNotCalled(t, "PurgeOlderThan", mock.Anything, mock.Anything)
}

func TestRetentionJob_SetupAndStart(t *testing.T) {
	job, _, _, _ := newJob(&config.Config{})
	require.NoError(t, job.SetupAndStart(), "empty schedule disables the job")

	job, _, _, _ = newJob(&config.Config{RetentionJobSchedule: "not a schedule"})
	assert.Error(t, job.SetupAndStart())

	job, _, _, _ = newJob(&config.Config{RetentionJobSchedule: "@hourly"})
	require.NoError(t, job.SetupAndStart())
	job.Stop()
}

func TestCronLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cl := NewCronLogger(zap.New(core))

	cl.Info("schedule", "entry", 1, "dangling")
	cl.Error(errors.New("boom"), "job panicked", "entry", 2)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, int64(1), entries[0].ContextMap()["entry"])
	assert.Equal(t, "MISSING_VALUE", entries[0].ContextMap()["dangling"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
