package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/app"
	"github.com/nimasrn/inquiry-gateway/internal/config"
	"github.com/nimasrn/inquiry-gateway/migrations"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/nimasrn/inquiry-gateway/pkg/pg"
)

const usage = `usage: cli [--env=path] <command> [flags]

commands:
  migrate [--dir=./migrations]   apply pending migrations
  status  [--dir=./migrations]   print migration status
  digest  [--force]              build and send the daily report now
`

func main() {
	defer logger.Sync()

	args := commandArgs()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := config.Load(app.EnvPath()); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "migrate":
		err = migrate(args[1:], pg.Migrate)
	case "status":
		err = migrate(args[1:], pg.MigrationStatus)
	case "digest":
		err = digest(args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

// commandArgs drops the --env flag, which is read by app.EnvPath.
func commandArgs() []string {
	var out []string
	for _, a := range os.Args[1:] {
		if strings.HasPrefix(a, "--env=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func migrate(args []string, run func(pg.Config, fs.FS, string) error) error {
	flags := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dir := flags.String("dir", "", "read migrations from this directory instead of the embedded set")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *dir != "" {
		return run(config.Get().PostgresWrite(), nil, *dir)
	}
	return run(config.Get().PostgresWrite(), migrations.FS, ".")
}

func digest(args []string) error {
	flags := flag.NewFlagSet("digest", flag.ContinueOnError)
	force := flags.Bool("force", false, "send even if today's report already went out")
	if err := flags.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := config.Get()
	deps, err := app.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	a, err := app.Build(cfg, deps)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Runner.Run(ctx, time.Now(), *force)
	if err != nil {
		return err
	}
	logger.Info("digest finished",
		"date", res.Date,
		"outcome", res.Outcome,
		"email_id", res.Notification.MessageID,
		"inquiries", res.Report.InquiryCount,
		"unique_visitors", res.Report.UniqueVisitorCount,
	)
	return nil
}
