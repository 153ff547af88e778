package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-structure/internal/cache"
	"github.com/rxtech-lab/argo-structure/internal/config"
	"github.com/rxtech-lab/argo-structure/internal/logger"
	"github.com/rxtech-lab/argo-structure/internal/metrics"
	"github.com/rxtech-lab/argo-structure/internal/recorder"
	"github.com/rxtech-lab/argo-structure/internal/scheduler"
	"github.com/rxtech-lab/argo-structure/internal/server"
	"github.com/rxtech-lab/argo-structure/internal/service"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata/provider"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the structure API and run the scheduled watchlist refresh",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address; overrides server.addr",
			},
			&cli.BoolFlag{
				Name:  "refresh-on-start",
				Usage: "Refresh the watchlist once before serving",
			},
		},
		Action: serveAction,
	}
}

// app holds the long-lived collaborators built from the configuration.
type app struct {
	analyzer *service.Analyzer
	recorder recorder.Recorder
	metrics  *metrics.Metrics
}

func (a *app) Close() error {
	return a.recorder.Close()
}

func buildApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	p, err := provider.NewMarketDataProvider(cfg.Provider.ProviderConfig)
	if err != nil {
		return nil, err
	}

	c, err := cache.FromConfig(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Recorder.SQLitePath != "" {
		rec, err = recorder.NewSQLiteRecorder(cfg.Recorder.SQLitePath, log)
		if err != nil {
			return nil, err
		}
	}

	m := metrics.New()

	analyzer, err := service.NewAnalyzer(cfg.Engine, service.Options{
		Provider:     p,
		Cache:        c,
		Recorder:     rec,
		Metrics:      m,
		Logger:       log,
		LookbackDays: cfg.Provider.LookbackDays,
		Concurrency:  cfg.Concurrency,
	})
	if err != nil {
		rec.Close()

		return nil, err
	}

	return &app{analyzer: analyzer, recorder: rec, metrics: m}, nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	var sched *scheduler.Scheduler

	if cfg.Schedule.Enabled || cmd.Bool("refresh-on-start") {
		sched = scheduler.New(ctx, a.analyzer, cfg.Watchlist, log)
	}

	if cmd.Bool("refresh-on-start") {
		sched.RunNow()
	}

	if cfg.Schedule.Enabled {
		if err := sched.Register(cfg.Schedule.Cron); err != nil {
			return err
		}

		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(cfg.Server.Addr, a.analyzer, cfg.Watchlist, a.metrics, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.String("addr", cfg.Server.Addr))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
