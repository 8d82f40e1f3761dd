package digest

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/robfig/cron/v3"
)

const DefaultCron = "0 6 * * *"

type DigestRunner interface {
	Run(ctx context.Context, at time.Time, force bool) (*RunResult, error)
}

type SchedulerConfig struct {
	Spec     string
	Location *time.Location
	// RunTimeout bounds a single fire.
	RunTimeout time.Duration
}

// Scheduler fires the runner on a cron spec. A missed or failed fire is not
// retried; the next fire covers its own window.
type Scheduler struct {
	cron    *cron.Cron
	runner  DigestRunner
	timeout time.Duration
	entry   cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewScheduler(runner DigestRunner, config SchedulerConfig) (*Scheduler, error) {
	if config.Spec == "" {
		config.Spec = DefaultCron
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = 5 * time.Minute
	}

	cl := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(config.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner:  runner,
		timeout: config.RunTimeout,
	}

	id, err := s.cron.AddFunc(config.Spec, s.fire)
	if err != nil {
		return nil, err
	}
	s.entry = id
	return s, nil
}

func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	logger.Info("digest scheduler started", "next", s.Next())
}

// Stop prevents new fires and waits for a running one, up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Warn("digest scheduler stop timed out")
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

func (s *Scheduler) fire() {
	base := s.ctx
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithTimeout(base, s.timeout)
	defer cancel()

	res, err := s.runner.Run(ctx, time.Now(), false)
	switch {
	case err == nil:
		logger.Info("scheduled digest finished", "date", res.Date, "outcome", res.Outcome)
	case errors.Is(err, ErrAlreadySent), errors.Is(err, ErrRunInProgress):
		logger.Info("scheduled digest not run", "reason", err)
	default:
		logger.Error("scheduled digest failed", "error", err)
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("[cron] "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("[cron] "+msg, append(keysAndValues, "error", err)...)
}
