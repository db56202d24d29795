package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/fightmatch/internal/cli"
	"github.com/okian/fightmatch/internal/config"
	"github.com/okian/fightmatch/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// The API exports its own system gauges on a private registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run wires logging and configuration, then hands args to the CLI.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := logger.Init(); err != nil {
		_, _ = io.WriteString(stderr, "failed to initialize logging: "+err.Error()+"\n")
		return cli.ExitError
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	cfg, err := config.Load(ctx)
	if err != nil {
		_, _ = io.WriteString(stderr, "failed to load config: "+err.Error()+"\n")
		return cli.ExitError
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	return cli.New(stdout, stderr, cli.WithConfig(cfg), cli.WithLogger(log)).Run(ctx, args)
}
