// Package app wires repositories, notifier, digest and handlers from the
// loaded configuration. The binaries under cmd/ share it.
package app

import (
	"context"
	"os"
	"strings"

	"github.com/nimasrn/inquiry-gateway/internal/catalog"
	"github.com/nimasrn/inquiry-gateway/internal/config"
	"github.com/nimasrn/inquiry-gateway/internal/digest"
	gateway "github.com/nimasrn/inquiry-gateway/internal/gateways"
	"github.com/nimasrn/inquiry-gateway/internal/handlers"
	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/internal/notifier"
	"github.com/nimasrn/inquiry-gateway/internal/render"
	"github.com/nimasrn/inquiry-gateway/internal/repository"
	"github.com/nimasrn/inquiry-gateway/internal/services"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/nimasrn/inquiry-gateway/pkg/pg"
	"github.com/nimasrn/inquiry-gateway/pkg/redis"
	"github.com/pkg/errors"
)

const redisConnName = "default"

// Deps are the external resources App is built on.
type Deps struct {
	DB     *pg.DB
	Redis  redis.RedisAdapter // nil disables the run lock
	Sender gateway.Sender
}

type App struct {
	Config *config.Config
	Deps   Deps

	Inquiries    *repository.InquiryRepository
	Visitors     *repository.VisitorRepository
	EmailConfigs *repository.EmailConfigRepository
	DigestRuns   *repository.DailyReportRepository

	Catalog    *catalog.Catalog
	Renderer   *render.Renderer
	Notifier   *notifier.Notifier
	Async      *notifier.AsyncNotifier // nil unless NOTIFY_ASYNC
	Aggregator *digest.Aggregator
	Runner     *digest.Runner

	InquiryService     *services.InquiryService
	VisitorService     *services.VisitorService
	EmailConfigService *services.EmailConfigService
	ReportService      *services.ReportService
}

// Connect opens postgres, redis (when REDIS_ADDR is set) and the email
// provider described by cfg.
func Connect(ctx context.Context, cfg *config.Config) (Deps, error) {
	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.IsDev())
	if err != nil {
		return Deps{}, errors.Wrap(err, "connect postgres")
	}

	var rdb redis.RedisAdapter
	if cfg.RedisAddr != "" {
		rdb, err = redis.NewRedisAdapter(redisConnName, cfg.RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{cfg.RedisAddr},
			ClientName: cfg.AppName,
			DB:         cfg.RedisDatabase,
			Username:   cfg.RedisUsername,
			Password:   cfg.RedisPassword,
		})
		if err != nil {
			_ = db.Close()
			return Deps{}, errors.Wrap(err, "connect redis")
		}
	} else {
		logger.Warn("REDIS_ADDR is empty, digest runs are not locked across instances")
	}

	sender, err := gateway.New(ctx, gateway.Options{
		Provider: cfg.EmailProvider,
		Resend: gateway.ResendConfig{
			BaseURL: cfg.ResendBaseUrl,
			APIKey:  cfg.ResendApiKey,
			Timeout: cfg.EmailTimeout,
		},
		SES: gateway.SESConfig{
			AccessKey: cfg.SesAccessKey,
			SecretKey: cfg.SesSecretKey,
			Region:    cfg.SesRegion,
		},
	})
	if err != nil {
		_ = db.Close()
		return Deps{}, errors.Wrap(err, "email provider")
	}

	return Deps{DB: db, Redis: rdb, Sender: sender}, nil
}

// Build wires every component on top of deps.
func Build(cfg *config.Config, deps Deps) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:       cfg,
		Deps:         deps,
		Inquiries:    repository.NewInquiryRepository(deps.DB),
		Visitors:     repository.NewVisitorRepository(deps.DB),
		EmailConfigs: repository.NewEmailConfigRepository(deps.DB),
		DigestRuns:   repository.NewDailyReportRepository(deps.DB),
		Catalog:      catalog.Default(),
	}

	a.Renderer, err = render.New(render.Options{
		Brand:    cfg.EmailFromName,
		Location: loc,
		Catalog:  a.Catalog,
	})
	if err != nil {
		return nil, errors.Wrap(err, "templates")
	}

	a.Notifier = notifier.New(deps.Sender, a.EmailConfigs, a.Renderer, notifier.Defaults{
		Recipient:   cfg.EmailRecipient,
		FromName:    cfg.EmailFromName,
		FromAddress: cfg.EmailFromAddress,
	}, cfg.EmailTimeout)

	var instant services.InquiryNotifier = a.Notifier
	if cfg.NotifyAsync {
		a.Async = notifier.NewAsync(a.Notifier, cfg.NotifyBuffer, cfg.NotifyWorkers)
		instant = a.Async
	}

	var lock *digest.RunLock
	if deps.Redis != nil {
		lock = digest.NewRunLock(deps.Redis, digest.LockConfig{LockTTL: cfg.DigestLockTTL})
	}
	a.Aggregator = digest.NewAggregator(a.Inquiries, a.Visitors)
	a.Runner = digest.NewRunner(a.Aggregator, a.Notifier, a.DigestRuns, lock, digest.RunnerConfig{
		Location:   loc,
		OncePerDay: cfg.DigestOncePerDay,
	})

	a.InquiryService = services.NewInquiryService(a.Inquiries, instant, a.Notifier, a.Catalog)
	a.VisitorService = services.NewVisitorService(a.Visitors)
	a.EmailConfigService = services.NewEmailConfigService(a.EmailConfigs, model.EmailConfig{
		RecipientEmail: cfg.EmailRecipient,
		SenderName:     cfg.EmailFromName,
		SenderEmail:    cfg.EmailFromAddress,
		Enabled:        true,
	})
	a.ReportService = services.NewReportService(a.Aggregator, a.Renderer, a.Runner)

	return a, nil
}

// Handlers returns the /api/v1 handler set.
func (a *App) Handlers() handlers.Set {
	probes := []handlers.HealthService{a.Deps.DB}
	if a.Deps.Redis != nil {
		probes = append(probes, a.Deps.Redis)
	}
	return handlers.Set{
		Inquiry:     handlers.NewInquiryHandler(a.InquiryService),
		Visitor:     handlers.NewVisitorHandler(a.VisitorService),
		EmailConfig: handlers.NewEmailConfigHandler(a.EmailConfigService),
		Report:      handlers.NewReportHandler(a.ReportService),
		ArtType:     handlers.NewArtTypeHandler(a.Catalog),
		Health:      handlers.NewHealthHandler(probes...),
	}
}

func (a *App) NewScheduler() (*digest.Scheduler, error) {
	loc, err := a.Config.Location()
	if err != nil {
		return nil, err
	}
	return digest.NewScheduler(a.Runner, digest.SchedulerConfig{
		Spec:     a.Config.DigestCron,
		Location: loc,
	})
}

// Start launches background workers. They stop when ctx is done or on
// Close.
func (a *App) Start(ctx context.Context) {
	if a.Async != nil {
		a.Async.Start(ctx)
	}
}

// Close drains queued notifications and releases connections.
func (a *App) Close() {
	if a.Async != nil {
		a.Async.Stop()
	}
	if a.Deps.Redis != nil {
		if err := redis.Close(redisConnName); err != nil {
			logger.Warn("closing redis failed", "error", err)
		}
	}
	if a.Deps.DB != nil {
		if err := a.Deps.DB.Close(); err != nil {
			logger.Warn("closing postgres failed", "error", err)
		}
	}
}

// EnvPath returns the value of a --env=path argument, or "" when absent or
// unreadable.
func EnvPath() string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, "--env=") {
			path := strings.TrimPrefix(v, "--env=")
			if _, err := os.Stat(path); err != nil {
				logger.Error("failed to open the passed env file", "path", path, "error", err)
				return ""
			}
			return path
		}
	}
	return ""
}
