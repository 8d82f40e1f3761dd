package services

import (
	"context"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/digest"
	"github.com/nimasrn/inquiry-gateway/internal/model"
)

type ReportAggregator interface {
	Aggregate(ctx context.Context, at time.Time) (*model.DailyReport, error)
}

type ReportRenderer interface {
	DailyReport(report *model.DailyReport, generatedAt time.Time) string
}

type ReportRunner interface {
	Run(ctx context.Context, at time.Time, force bool) (*digest.RunResult, error)
}

type ReportService struct {
	aggregator ReportAggregator
	renderer   ReportRenderer
	runner     ReportRunner
	now        func() time.Time
}

func NewReportService(aggregator ReportAggregator, renderer ReportRenderer, runner ReportRunner) *ReportService {
	return &ReportService{
		aggregator: aggregator,
		renderer:   renderer,
		runner:     runner,
		now:        time.Now,
	}
}

// Daily returns the aggregate for the window ending at at, or now when at
// is zero.
func (s *ReportService) Daily(ctx context.Context, at time.Time) (*model.DailyReport, error) {
	return s.aggregator.Aggregate(ctx, s.instant(at))
}

// Preview renders the digest without sending it.
func (s *ReportService) Preview(ctx context.Context, at time.Time) (string, error) {
	report, err := s.Daily(ctx, at)
	if err != nil {
		return "", err
	}
	return s.renderer.DailyReport(report, s.now()), nil
}

// Send runs the digest now. Errors are the runner's: digest.ErrAlreadySent,
// digest.ErrRunInProgress, digest.ErrSendFailed or a data error.
func (s *ReportService) Send(ctx context.Context, force bool) (*digest.RunResult, error) {
	return s.runner.Run(ctx, s.now(), force)
}

func (s *ReportService) instant(at time.Time) time.Time {
	if at.IsZero() {
		return s.now()
	}
	return at
}
