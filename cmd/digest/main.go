package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/app"
	"github.com/nimasrn/inquiry-gateway/internal/config"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/nimasrn/inquiry-gateway/pkg/prom"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// digest runs the daily report scheduler on its own. Run it instead of
// DIGEST_ENABLED on the api when the api is scaled out; the redis lock keeps
// concurrent schedulers from double sending either way.
func main() {
	defer logger.Sync()

	err := config.Load(app.EnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting digest scheduler", "version", version, "commit", commit, "date", date, "cron", cfg.DigestCron)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err = prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go prom.ListenAndServer(cfg.MetricsListenAddr, cfg.MetricsURI)

	deps, err := app.Connect(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect dependencies", "error", err)
		return
	}
	a, err := app.Build(cfg, deps)
	if err != nil {
		logger.Error("failed to build app", "error", err)
		return
	}
	defer a.Close()

	sched, err := a.NewScheduler()
	if err != nil {
		logger.Error("invalid digest schedule", "error", err)
		return
	}
	sched.Start(ctx)

	<-ctx.Done()
	logger.Info("digest scheduler shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sched.Stop(stopCtx)
}
