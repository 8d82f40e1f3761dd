package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/app"
	"github.com/nimasrn/inquiry-gateway/internal/config"
	xhttp "github.com/nimasrn/inquiry-gateway/pkg/http"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/nimasrn/inquiry-gateway/pkg/prom"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer logger.Sync()

	err := config.Load(app.EnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting api", "version", version, "commit", commit, "date", date, "env", cfg.AppEnv)

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
	a.Start(ctx)

	// the digest can also run from cmd/digest; enable it in one place only
	if cfg.DigestEnabled {
		sched, err := a.NewScheduler()
		if err != nil {
			logger.Error("invalid digest schedule", "error", err)
			return
		}
		sched.Start(ctx)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.DefaultMiddlewares(cfg.HttpCorsOrigin, cfg.HttpRequestTimeout)...)

	a.Handlers().Register(s.Router.Group("/api/v1"))

	go func() {
		if err := s.ListenAndServe(cfg.HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	s.Shutdown()
}
