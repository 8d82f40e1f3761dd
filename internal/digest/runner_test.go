package digest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/internal/repository"
	"github.com/nimasrn/inquiry-gateway/pkg/pg"
	"github.com/nimasrn/inquiry-gateway/test/fixtures"
	"github.com/nimasrn/inquiry-gateway/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu      sync.Mutex
	result  model.NotificationResult
	reports []*model.DailyReport
}

func newFakeSender() *fakeSender {
	return &fakeSender{result: model.NotificationResult{
		Status:    model.NotificationSent,
		Provider:  "resend",
		MessageID: "em_digest",
		Recipient: "studio@example.com",
	}}
}

func (f *fakeSender) SendDigest(_ context.Context, report *model.DailyReport) model.NotificationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return f.result
}

func (f *fakeSender) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

type failingSource struct{ err error }

func (s failingSource) Aggregate(context.Context, time.Time) (*model.DailyReport, error) {
	return nil, s.err
}

type runnerEnv struct {
	db     *pg.DB
	sender *fakeSender
	runner *Runner
}

func newRunnerEnv(t *testing.T, lock *RunLock, cfg RunnerConfig) *runnerEnv {
	t.Helper()
	db := helpers.SetupTestDB(t)
	sender := newFakeSender()
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	runner := NewRunner(newTestAggregator(db), sender, repository.NewDailyReportRepository(db), lock, cfg)
	return &runnerEnv{db: db, sender: sender, runner: runner}
}

func (e *runnerEnv) recorded(t *testing.T) int64 {
	return helpers.CountRows(t, e.db, &repository.DailyReportEntity{})
}

func TestRunner_SendsAndRecords(t *testing.T) {
	mr, adapter := helpers.SetupTestRedis(t)
	env := newRunnerEnv(t, NewRunLock(adapter, LockConfig{}), RunnerConfig{OncePerDay: true})
	ctx := context.Background()

	helpers.CreateTestInquiry(t, env.db, "A", fixtures.ReferenceTime.Add(-time.Hour))
	helpers.CreateTestVisit(t, env.db, "10.0.0.1", fixtures.ReferenceTime.Add(-time.Hour))
	helpers.CreateTestVisit(t, env.db, "10.0.0.1", fixtures.ReferenceTime.Add(-2*time.Hour))

	res, err := env.runner.Run(ctx, fixtures.ReferenceTime, false)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", res.Date)
	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, "em_digest", res.Notification.MessageID)
	require.NotNil(t, res.Report)
	assert.Equal(t, int64(1), res.Report.InquiryCount)
	assert.Equal(t, int64(2), res.Report.TotalVisitCount)
	assert.Equal(t, int64(1), res.Report.UniqueVisitorCount)

	require.NotNil(t, res.Run)
	assert.Equal(t, "em_digest", res.Run.EmailID)
	assert.Equal(t, int64(1), env.recorded(t))

	assert.True(t, mr.Exists("digest:sent:2025-03-10"))
	assert.False(t, mr.Exists("digest:lock:2025-03-10"), "lock released after run")

	t.Run("second run the same day is refused", func(t *testing.T) {
		res, err := env.runner.Run(ctx, fixtures.ReferenceTime.Add(3*time.Hour), false)
		assert.ErrorIs(t, err, ErrAlreadySent)
		assert.Equal(t, OutcomeAlreadySent, res.Outcome)
		assert.Equal(t, 1, env.sender.calls())
	})

	t.Run("force sends again without a second row", func(t *testing.T) {
		res, err := env.runner.Run(ctx, fixtures.ReferenceTime.Add(3*time.Hour), true)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSent, res.Outcome)
		assert.Equal(t, 2, env.sender.calls())
		assert.Equal(t, int64(1), env.recorded(t))
	})

	t.Run("next day runs", func(t *testing.T) {
		res, err := env.runner.Run(ctx, fixtures.ReferenceTime.Add(24*time.Hour), false)
		require.NoError(t, err)
		assert.Equal(t, "2025-03-11", res.Date)
		assert.Equal(t, int64(2), env.recorded(t))
	})
}

func TestRunner_DatabaseWatermarkWithoutRedis(t *testing.T) {
	env := newRunnerEnv(t, nil, RunnerConfig{OncePerDay: true})
	ctx := context.Background()

	_, err := env.runner.Run(ctx, fixtures.ReferenceTime, false)
	require.NoError(t, err)

	_, err = env.runner.Run(ctx, fixtures.ReferenceTime, false)
	assert.ErrorIs(t, err, ErrAlreadySent)
	assert.Equal(t, 1, env.sender.calls())
}

func TestRunner_RedisMarkerShortCircuits(t *testing.T) {
	mr, adapter := helpers.SetupTestRedis(t)
	env := newRunnerEnv(t, NewRunLock(adapter, LockConfig{}), RunnerConfig{OncePerDay: true})

	require.NoError(t, mr.Set("digest:sent:2025-03-10", "1"))

	_, err := env.runner.Run(context.Background(), fixtures.ReferenceTime, false)
	assert.ErrorIs(t, err, ErrAlreadySent)
	assert.Zero(t, env.sender.calls())
}

func TestRunner_LockHeld(t *testing.T) {
	mr, adapter := helpers.SetupTestRedis(t)
	env := newRunnerEnv(t, NewRunLock(adapter, LockConfig{}), RunnerConfig{OncePerDay: true})

	require.NoError(t, mr.Set("digest:lock:2025-03-10", "another-instance"))

	res, err := env.runner.Run(context.Background(), fixtures.ReferenceTime, true)
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Equal(t, OutcomeInProgress, res.Outcome)
	assert.Zero(t, env.sender.calls())

	got, err := mr.Get("digest:lock:2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "another-instance", got)
}

func TestRunner_SendFailure(t *testing.T) {
	mr, adapter := helpers.SetupTestRedis(t)
	env := newRunnerEnv(t, NewRunLock(adapter, LockConfig{}), RunnerConfig{OncePerDay: true})
	env.sender.result = model.NotificationResult{
		Status:   model.NotificationFailed,
		Provider: "resend",
		Error:    "resend: status 500",
	}
	ctx := context.Background()

	res, err := env.runner.Run(ctx, fixtures.ReferenceTime, false)
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Nil(t, res.Run)
	assert.Zero(t, env.recorded(t))
	assert.False(t, mr.Exists("digest:sent:2025-03-10"))
	assert.False(t, mr.Exists("digest:lock:2025-03-10"))

	t.Run("failed day can be retried", func(t *testing.T) {
		env.sender.result = newFakeSender().result
		_, err := env.runner.Run(ctx, fixtures.ReferenceTime, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), env.recorded(t))
	})
}

func TestRunner_SkippedIsNotRecorded(t *testing.T) {
	env := newRunnerEnv(t, nil, RunnerConfig{OncePerDay: true})
	env.sender.result = model.NotificationResult{Status: model.NotificationSkipped}

	res, err := env.runner.Run(context.Background(), fixtures.ReferenceTime, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.Nil(t, res.Run)
	assert.Zero(t, env.recorded(t))
}

func TestRunner_WithoutOncePerDay(t *testing.T) {
	env := newRunnerEnv(t, nil, RunnerConfig{OncePerDay: false})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := env.runner.Run(ctx, fixtures.ReferenceTime, false)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSent, res.Outcome)
	}
	assert.Equal(t, 2, env.sender.calls())
	assert.Equal(t, int64(1), env.recorded(t))
}

func TestRunner_AggregationFailure(t *testing.T) {
	db := helpers.SetupTestDB(t)
	sender := newFakeSender()
	boom := errors.New("aggregate inquiries: timeout")
	runner := NewRunner(failingSource{err: boom}, sender, repository.NewDailyReportRepository(db), nil,
		RunnerConfig{Location: time.UTC, OncePerDay: true})

	res, err := runner.Run(context.Background(), fixtures.ReferenceTime, false)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Zero(t, sender.calls())
}

func TestRunner_ReportDateUsesZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	runner := NewRunner(nil, nil, nil, nil, RunnerConfig{Location: ist})

	assert.Equal(t, "2025-03-11", runner.ReportDate(time.Date(2025, time.March, 10, 20, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-10", runner.ReportDate(time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC)))
}
