package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/magaru/shortly/config"
	"github.com/magaru/shortly/internal/app/repository"
	"github.com/magaru/shortly/internal/app/service"
	"github.com/magaru/shortly/internal/cli"
	"github.com/magaru/shortly/internal/infra/logger"
	"github.com/magaru/shortly/internal/infra/metrics"
	natsclient "github.com/magaru/shortly/internal/infra/nats"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	log.Info("configuration loaded",
		zap.Int("link_ttl_seconds", cfg.Link.TTLSeconds),
		zap.Int("default_click_limit", cfg.Link.DefaultClickLimit),
		zap.Int("cleanup_interval_seconds", cfg.Cleanup.IntervalSeconds),
		zap.Int("code_length", cfg.Shortener.CodeLength),
		zap.String("notification_sink", cfg.Notifications.Sink),
		zap.Bool("notifications_enabled", cfg.Notifications.Enabled),
	)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.Metrics.Enabled {
		promServer := metrics.NewServer(cfg.Metrics.Port, reg)
		go func() {
			log.Info("starting metrics server", zap.String("addr", promServer.Addr))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil {
				log.Warn("failed to close metrics server", zap.Error(err))
			}
		}()
	}

	notifier, closeNotifier := buildNotifier(cfg, log)
	defer closeNotifier()

	svc := service.NewLinkService(service.LinkServiceOptions{
		Logger:            log,
		Users:             repository.NewUserRepository(),
		Links:             repository.NewLinkRepository(),
		Codes:             service.NewShortCodeGenerator(cfg.Shortener.CodeLength),
		Notifier:          notifier,
		Metrics:           m,
		LinkTTL:           cfg.Link.TTL(),
		DefaultClickLimit: cfg.Link.DefaultClickLimit,
	})

	cleaner := service.NewCleanupWorker(log, svc, cfg.Cleanup.Interval())
	cleaner.Start()
	defer cleaner.Stop()

	console := cli.New(log, svc, cfg, os.Stdin, os.Stdout)
	if err := console.Run(); err != nil {
		log.Fatal("console session failed", zap.Error(err))
	}
}

func buildNotifier(cfg *config.Config, log *zap.Logger) (service.Notifier, func()) {
	if !cfg.Notifications.Enabled {
		return service.NopNotifier{}, func() {}
	}

	switch cfg.Notifications.Sink {
	case config.SinkNATS:
		conn, err := natsclient.Connect(cfg.NATS)
		if err != nil {
			log.Fatal("failed to connect to NATS", zap.Error(err))
		}
		log.Info("connected to NATS", zap.String("host", cfg.NATS.Host))
		return service.NewEventPublisher(conn, log), func() { _ = conn.Drain() }
	default:
		return service.NewConsoleNotifier(os.Stdout, log), func() {}
	}
}
