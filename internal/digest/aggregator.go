// Package digest builds and sends the daily report: an aggregate over the
// trailing 24 hours, sent at most once per calendar day.
package digest

import (
	"context"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/pkg/errors"
)

// Window is the span a report covers, ending at the trigger instant.
const Window = 24 * time.Hour

type InquirySource interface {
	ListSubmittedBetween(ctx context.Context, from, to time.Time) ([]*model.Inquiry, error)
}

type VisitSource interface {
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountDistinctIPBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type Aggregator struct {
	inquiries InquirySource
	visits    VisitSource
}

func NewAggregator(inquiries InquirySource, visits VisitSource) *Aggregator {
	return &Aggregator{inquiries: inquiries, visits: visits}
}

// Aggregate reads the window [at-24h, at). Queries run in a fixed order and
// the first failure aborts the snapshot.
func (a *Aggregator) Aggregate(ctx context.Context, at time.Time) (*model.DailyReport, error) {
	end := at
	start := end.Add(-Window)

	inquiries, err := a.inquiries.ListSubmittedBetween(ctx, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate inquiries")
	}

	total, err := a.visits.CountBetween(ctx, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate visits")
	}

	unique, err := a.visits.CountDistinctIPBetween(ctx, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate unique visitors")
	}

	if inquiries == nil {
		inquiries = []*model.Inquiry{}
	}

	return &model.DailyReport{
		WindowStart:        start,
		WindowEnd:          end,
		InquiryCount:       int64(len(inquiries)),
		UniqueVisitorCount: unique,
		TotalVisitCount:    total,
		Inquiries:          inquiries,
	}, nil
}
