package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/digest"
	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVisitorRepository struct {
	mock.Mock
}

func (m *MockVisitorRepository) Create(ctx context.Context, v *model.Visitor) (*model.Visitor, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Visitor), args.Error(1)
}

func (m *MockVisitorRepository) Stats(ctx context.Context, f model.VisitorFilter) (*model.VisitorStats, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VisitorStats), args.Error(1)
}

func TestVisitorService_Log(t *testing.T) {
	repo := new(MockVisitorRepository)
	ctx := context.Background()
	repo.On("Create", ctx, mock.MatchedBy(func(v *model.Visitor) bool {
		return v.IPAddress == "203.0.113.9" && v.UserAgent == "curl/8"
	})).Return(&model.Visitor{ID: 1}, nil).Once()

	v, err := NewVisitorService(repo).Log(ctx, " 203.0.113.9 ", "curl/8")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.ID)
	repo.AssertExpectations(t)
}

func TestVisitorService_Stats_RejectsInvertedRange(t *testing.T) {
	repo := new(MockVisitorRepository)
	from := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	_, err := NewVisitorService(repo).Stats(context.Background(), model.VisitorFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything)
}

type MockEmailConfigRepository struct {
	mock.Mock
}

func (m *MockEmailConfigRepository) Get(ctx context.Context) (*model.EmailConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailConfig), args.Error(1)
}

func (m *MockEmailConfigRepository) Upsert(ctx context.Context, cfg *model.EmailConfig) (*model.EmailConfig, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailConfig), args.Error(1)
}

func TestEmailConfigService(t *testing.T) {
	ctx := context.Background()
	defaults := model.EmailConfig{RecipientEmail: "studio@example.com", SenderName: "KanakArtistry", Enabled: true}

	t.Run("defaults when no row", func(t *testing.T) {
		repo := new(MockEmailConfigRepository)
		repo.On("Get", ctx).Return(nil, repository.ErrNotFound)

		cfg, err := NewEmailConfigService(repo, defaults).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, defaults, *cfg)
	})

	t.Run("read error surfaces", func(t *testing.T) {
		repo := new(MockEmailConfigRepository)
		repo.On("Get", ctx).Return(nil, errors.New("db down"))

		_, err := NewEmailConfigService(repo, defaults).Get(ctx)
		assert.Error(t, err)
	})

	t.Run("update rejects bad recipient", func(t *testing.T) {
		repo := new(MockEmailConfigRepository)
		_, err := NewEmailConfigService(repo, defaults).Update(ctx, model.EmailConfig{RecipientEmail: "not-an-address"})
		assert.ErrorIs(t, err, ErrValidation)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("update saves", func(t *testing.T) {
		repo := new(MockEmailConfigRepository)
		repo.On("Upsert", ctx, mock.MatchedBy(func(c *model.EmailConfig) bool {
			return c.RecipientEmail == "owner@studio.test"
		})).Return(&model.EmailConfig{RecipientEmail: "owner@studio.test", Enabled: true}, nil)

		cfg, err := NewEmailConfigService(repo, defaults).Update(ctx, model.EmailConfig{RecipientEmail: " owner@studio.test ", Enabled: true})
		require.NoError(t, err)
		assert.Equal(t, "owner@studio.test", cfg.RecipientEmail)
	})
}

type stubAggregator struct {
	at     time.Time
	report *model.DailyReport
	err    error
}

func (s *stubAggregator) Aggregate(_ context.Context, at time.Time) (*model.DailyReport, error) {
	s.at = at
	return s.report, s.err
}

type stubRenderer struct{}

func (stubRenderer) DailyReport(report *model.DailyReport, _ time.Time) string {
	if report.InquiryCount == 0 {
		return "<p>No New Inquiries</p>"
	}
	return "<p>inquiries</p>"
}

type stubRunner struct {
	force bool
	res   *digest.RunResult
	err   error
}

func (s *stubRunner) Run(_ context.Context, _ time.Time, force bool) (*digest.RunResult, error) {
	s.force = force
	return s.res, s.err
}

func TestReportService(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 6, 0, 0, 0, time.UTC)

	t.Run("daily defaults to now", func(t *testing.T) {
		agg := &stubAggregator{report: &model.DailyReport{}}
		svc := NewReportService(agg, stubRenderer{}, nil)
		svc.now = func() time.Time { return now }

		_, err := svc.Daily(ctx, time.Time{})
		require.NoError(t, err)
		assert.True(t, agg.at.Equal(now))
	})

	t.Run("preview renders", func(t *testing.T) {
		svc := NewReportService(&stubAggregator{report: &model.DailyReport{}}, stubRenderer{}, nil)
		out, err := svc.Preview(ctx, now)
		require.NoError(t, err)
		assert.Contains(t, out, "No New Inquiries")
	})

	t.Run("preview surfaces data errors", func(t *testing.T) {
		svc := NewReportService(&stubAggregator{err: errors.New("boom")}, stubRenderer{}, nil)
		_, err := svc.Preview(ctx, now)
		assert.Error(t, err)
	})

	t.Run("send passes force", func(t *testing.T) {
		runner := &stubRunner{err: digest.ErrAlreadySent, res: &digest.RunResult{Outcome: digest.OutcomeAlreadySent}}
		svc := NewReportService(nil, nil, runner)

		_, err := svc.Send(ctx, true)
		assert.ErrorIs(t, err, digest.ErrAlreadySent)
		assert.True(t, runner.force)
	})
}
