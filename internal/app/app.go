package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"NewsTrendMonitor/internal/api"
	"NewsTrendMonitor/internal/cache"
	"NewsTrendMonitor/internal/config"
	"NewsTrendMonitor/internal/infrastructure/cleaner"
	"NewsTrendMonitor/internal/infrastructure/rss"
	"NewsTrendMonitor/internal/infrastructure/scheduler"
	"NewsTrendMonitor/internal/infrastructure/sentiment"
	"NewsTrendMonitor/internal/infrastructure/storage"
	"NewsTrendMonitor/internal/infrastructure/telegram"
	"NewsTrendMonitor/internal/jobs"
	"NewsTrendMonitor/internal/logging"
	"NewsTrendMonitor/internal/metrics"
	"NewsTrendMonitor/internal/ports"
	"NewsTrendMonitor/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	server   *api.Server
	sweeper  *usecase.Sweeper
	analyzer *sentiment.Client
	db       *sql.DB
}

// New builds the full service graph from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	resultCache := cache.New(cfg.Cache.DefaultTTL.Std(), baseLogger.With("component", "cache"))
	dispatcher := jobs.NewDispatcher(baseLogger.With("component", "jobs"))
	collector := metrics.NewCollector()

	var db *sql.DB
	var store ports.TrendStore
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = opened
		store = storage.NewPostgresRepository(db)
	}

	var notifier ports.Notifier
	if cfg.Alerts.Telegram.BotToken != "" && cfg.Alerts.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Alerts.Telegram.BotToken, cfg.Alerts.Telegram.ChatID)
	}

	analyzer := sentiment.NewClient(cfg.Sentiment.ServiceURL, cfg.Sentiment.APIKey)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Collectors: []ports.Collector{
			rss.NewCollector(cfg.Collector.RSSURLs, cfg.Collector.RetryCount,
				cfg.Collector.RetryDelay.Std(), baseLogger.With("component", "collector.rss")),
		},
		Cleaner:    cleaner.New(),
		Analyzer:   analyzer,
		Store:      store,
		Notifier:   notifier,
		Cache:      resultCache,
		Dispatcher: dispatcher,
		Metrics:    collector,
		Logger:     baseLogger.With("component", "pipeline"),
		CacheTTL:   cfg.Cache.DefaultTTL.Std(),
	})

	sweeper := usecase.NewSweeper(resultCache, dispatcher, cfg.Jobs.MaxAge.Std(),
		scheduler.NewTickerScheduler(cfg.Cache.SweepInterval.Std()),
		scheduler.NewTickerScheduler(cfg.Jobs.SweepInterval.Std()),
		baseLogger.With("component", "sweeper"))

	server := api.NewServer(cfg.Server.ListenAddr, pipeline, dispatcher, collector,
		baseLogger.With("component", "http"))

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		server:   server,
		sweeper:  sweeper,
		analyzer: analyzer,
		db:       db,
	}, nil
}

// Run starts the background sweeps and the HTTP server, then blocks until the
// context ends or an interrupt arrives.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}

	// Warm the model service so the first real request does not pay the
	// model-load latency. Best-effort.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := a.analyzer.WarmUp(warmCtx); err != nil {
			a.logger.Warn("sentiment warm-up failed", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", "error", err)
	}
	if err := a.sweeper.Stop(shutdownCtx); err != nil {
		a.logger.Error("sweeper shutdown failed", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("database close failed", "error", err)
		}
	}

	return nil
}
