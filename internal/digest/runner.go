package digest

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/internal/repository"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/nimasrn/inquiry-gateway/pkg/prom"
	pkgerrors "github.com/pkg/errors"
)

var (
	ErrAlreadySent   = errors.New("daily report already sent")
	ErrRunInProgress = errors.New("daily report run in progress")
	ErrSendFailed    = errors.New("daily report email failed")
)

const (
	OutcomeSent        = "sent"
	OutcomeSkipped     = "skipped"
	OutcomeAlreadySent = "already_sent"
	OutcomeInProgress  = "in_progress"
	OutcomeFailed      = "failed"
)

const reportDateLayout = "2006-01-02"

type ReportSource interface {
	Aggregate(ctx context.Context, at time.Time) (*model.DailyReport, error)
}

type DigestSender interface {
	SendDigest(ctx context.Context, report *model.DailyReport) model.NotificationResult
}

type RunStore interface {
	GetByDate(ctx context.Context, date string) (*model.DigestRun, error)
	Create(ctx context.Context, run *model.DigestRun) (*model.DigestRun, error)
}

type RunnerConfig struct {
	Location   *time.Location
	OncePerDay bool
}

type Runner struct {
	source ReportSource
	sender DigestSender
	runs   RunStore
	lock   *RunLock
	config RunnerConfig
}

// NewRunner wires a Runner. lock may be nil when no redis is configured;
// the database watermark still applies.
func NewRunner(source ReportSource, sender DigestSender, runs RunStore, lock *RunLock, config RunnerConfig) *Runner {
	if config.Location == nil {
		config.Location = time.Local
	}
	return &Runner{
		source: source,
		sender: sender,
		runs:   runs,
		lock:   lock,
		config: config,
	}
}

type RunResult struct {
	Date         string                   `json:"date"`
	Outcome      string                   `json:"outcome"`
	Report       *model.DailyReport       `json:"report,omitempty"`
	Notification model.NotificationResult `json:"notification"`
	Run          *model.DigestRun         `json:"run,omitempty"`
}

// ReportDate is the calendar day, in the digest zone, that at belongs to.
func (r *Runner) ReportDate(at time.Time) string {
	return at.In(r.config.Location).Format(reportDateLayout)
}

// Run aggregates the window ending at at and emails it. force skips the
// once-per-day watermark but never the run lock.
func (r *Runner) Run(ctx context.Context, at time.Time, force bool) (res *RunResult, err error) {
	start := time.Now()
	res = &RunResult{Date: r.ReportDate(at)}
	defer func() {
		prom.ObserveDigestRun(res.Outcome, time.Since(start).Seconds())
	}()

	if err := r.checkWatermark(ctx, res.Date, force); err != nil {
		res.Outcome = outcomeOf(err)
		return res, err
	}

	var lease *Lease
	if r.lock != nil {
		lease, err = r.lock.Acquire(ctx, res.Date)
		if err != nil {
			res.Outcome = outcomeOf(err)
			return res, err
		}
		defer func() { _ = r.lock.Release(context.WithoutCancel(ctx), lease) }()

		// another instance may have finished between the check and the lock
		if err := r.checkWatermark(ctx, res.Date, force); err != nil {
			res.Outcome = outcomeOf(err)
			return res, err
		}
	}

	report, err := r.source.Aggregate(ctx, at)
	if err != nil {
		res.Outcome = OutcomeFailed
		logger.Error("daily report aggregation failed", "date", res.Date, "error", err)
		return res, err
	}
	res.Report = report

	res.Notification = r.sender.SendDigest(ctx, report)
	switch res.Notification.Status {
	case model.NotificationSkipped:
		res.Outcome = OutcomeSkipped
		return res, nil
	case model.NotificationFailed:
		res.Outcome = OutcomeFailed
		return res, pkgerrors.Wrap(ErrSendFailed, res.Notification.Error)
	}

	res.Outcome = OutcomeSent
	res.Run = r.record(ctx, res.Date, report, res.Notification)
	prom.SetDigestLastSuccess(float64(time.Now().Unix()))

	logger.Info("daily report sent",
		"date", res.Date,
		"inquiries", report.InquiryCount,
		"unique_visitors", report.UniqueVisitorCount,
		"total_visits", report.TotalVisitCount,
		"email_id", res.Notification.MessageID)

	return res, nil
}

func (r *Runner) checkWatermark(ctx context.Context, date string, force bool) error {
	if force || !r.config.OncePerDay {
		return nil
	}

	if r.lock != nil {
		sent, err := r.lock.IsSent(ctx, date)
		if err != nil {
			logger.Warn("could not read digest sent marker", "date", date, "error", err)
		} else if sent {
			return ErrAlreadySent
		}
	}

	_, err := r.runs.GetByDate(ctx, date)
	switch {
	case err == nil:
		return ErrAlreadySent
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return pkgerrors.Wrap(err, "check digest watermark")
	}
}

// record writes the watermark. The email already went out, so failures here
// are logged and not returned.
func (r *Runner) record(ctx context.Context, date string, report *model.DailyReport, n model.NotificationResult) *model.DigestRun {
	ctx = context.WithoutCancel(ctx)

	run, err := r.runs.Create(ctx, &model.DigestRun{
		ReportDate:         date,
		WindowStart:        report.WindowStart,
		WindowEnd:          report.WindowEnd,
		InquiryCount:       report.InquiryCount,
		UniqueVisitorCount: report.UniqueVisitorCount,
		TotalVisitCount:    report.TotalVisitCount,
		Provider:           n.Provider,
		EmailID:            n.MessageID,
		Recipient:          n.Recipient,
		SentAt:             time.Now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyRecorded) {
			logger.Warn("daily report row already present", "date", date)
		} else {
			logger.Error("failed to record daily report", "date", date, "error", err)
		}
	}

	if r.lock != nil {
		if err := r.lock.MarkSent(ctx, date); err != nil {
			logger.Warn("failed to set digest sent marker", "date", date, "error", err)
		}
	}
	return run
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrAlreadySent):
		return OutcomeAlreadySent
	case errors.Is(err, ErrRunInProgress):
		return OutcomeInProgress
	default:
		return OutcomeFailed
	}
}
