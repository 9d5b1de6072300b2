package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tropicaldog17/dealwatch/internal/config"
	"github.com/tropicaldog17/dealwatch/internal/logger"
	"github.com/tropicaldog17/dealwatch/internal/services"
)

const usage = `usage: dealwatch [-config file] <command> [args]

commands:
  products [-keyword k] [-platform p] [-region r] [-sales 0|1] [-monitor 0|1] [-recent]
  trend [-price p] <activityId>
  alert set|edit <activityId> (-price p | -slider 10..95 | -preset 0.1|0.2|0.3|0.5)
  alert delete <activityId>
  block <activityId> | unblock <activityId> | blocked
  status
  test-push
  watch [-cron spec] <activityId>...
`

func main() {
	configPath := flag.String("config", "dealwatch.yaml", "path to the YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Env: cfg.Log.Env, Level: cfg.Log.Level})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("invalid timezone", zap.Error(err))
	}
	clock := services.SystemClock{Location: loc}

	client := services.NewHTTPBackendClient(cfg.API.BaseURL, cfg.API.UserKey, cfg.API.Timeout, log)
	app := &app{
		cfg:    cfg,
		log:    log,
		client: client,
		trends: services.NewTrendService(client, services.NewTrendCache(cfg.Trend.CacheTTL, clock), clock, log),
		alerts: services.NewAlertService(client, log),
		out:    os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.run(ctx, flag.Args()); err != nil {
		if err == errUsage {
			flag.Usage()
			os.Exit(2)
		}
		log.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
