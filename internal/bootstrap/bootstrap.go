// Package bootstrap assembles the pipeline from configuration for the
// server and CLI entry points.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"irps-content-analyzer/internal/analyzer"
	"irps-content-analyzer/internal/config"
	"irps-content-analyzer/internal/crawler"
	"irps-content-analyzer/internal/storage"
	"irps-content-analyzer/internal/telemetry"
	"irps-content-analyzer/pkg/logger"
)

type App struct {
	Service   *analyzer.Service
	Store     storage.Store
	Telemetry *telemetry.Provider
	Logger    *logger.Logger
}

func NewLogger(cfg *config.Config, outputPaths ...string) (*logger.Logger, error) {
	return logger.NewWithConfig(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		OutputPaths: outputPaths,
	})
}

// SetupStore returns the Postgres store when a DSN is configured and the
// in-memory store otherwise.
func SetupStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.Store, error) {
	if cfg.Database.DSN == "" {
		log.Warn("no database dsn configured, records are kept in memory only")
		return storage.NewMemoryStore(), nil
	}

	log.Info("connecting to postgres")
	db, err := storage.OpenPostgres(ctx, storage.PostgresConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	store := storage.NewPostgresStore(db, storage.BreakerConfig{
		MaxFailures: cfg.Breaker.MaxFailures,
		Timeout:     cfg.Breaker.Timeout,
	})
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	log.Info("database ready")
	return store, nil
}

func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	store, err := SetupStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up store: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	tel := telemetry.NewProvider(reg)

	client := crawler.NewHTTPClient(cfg.Fetcher.Timeout, cfg.Fetcher.DialTimeout, cfg.Fetcher.MaxBodyBytes)
	client.SetUserAgent(cfg.Fetcher.UserAgent)

	svc := analyzer.New(client, store,
		analyzer.WithLogger(log),
		analyzer.WithTelemetry(tel),
	)
	return &App{Service: svc, Store: store, Telemetry: tel, Logger: log}, nil
}

func (a *App) Close() error { return a.Store.Close() }
