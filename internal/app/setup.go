package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-backtest/internal/calibrator"
	"github.com/mselser95/polymarket-backtest/internal/costmodel"
	"github.com/mselser95/polymarket-backtest/internal/engine"
	"github.com/mselser95/polymarket-backtest/internal/risk"
	"github.com/mselser95/polymarket-backtest/internal/storage"
	"github.com/mselser95/polymarket-backtest/pkg/cache"
	"github.com/mselser95/polymarket-backtest/pkg/config"
	"github.com/mselser95/polymarket-backtest/pkg/healthprobe"
	"github.com/mselser95/polymarket-backtest/pkg/httpserver"
	"github.com/mselser95/polymarket-backtest/pkg/resultstream"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker()

	bookCache, err := setupCache(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	runStorage, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	results := httpserver.NewResultRegistry()
	hub := resultstream.NewHub(resultstream.HubConfig{Logger: logger})

	var httpServer *httpserver.Server
	if opts.ServeHTTP {
		httpServer = setupHTTPServer(cfg, logger, healthChecker, results, hub)
	}

	backtestEngine := setupEngine(cfg, logger)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		results:       results,
		hub:           hub,
		bookCache:     bookCache,
		storage:       runStorage,
		engine:        backtestEngine,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	results *httpserver.ResultRegistry,
	hub *resultstream.Hub,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Results:       results,
		Hub:           hub,
	})
}

func setupCache(cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: cfg.CacheNumCounters,
		MaxCost:     cfg.CacheMaxCost,
		BufferItems: cfg.CacheBufferItems,
		Logger:      logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

func setupEngine(cfg *config.Config, logger *zap.Logger) *engine.Engine {
	calibratorConfig := calibrator.DefaultConfig()
	calibratorConfig.Alpha = cfg.CalibratorAlpha
	calibratorConfig.MinCount = cfg.CalibratorMinCount

	model := costmodel.New(cfg.TakerFee, cfg.GasCost, cfg.BorrowRate)

	riskConfig := risk.Config{
		KellyLambda: cfg.KellyLambda,
		MaxFraction: cfg.MaxFraction,
		CategoryCap: cfg.CategoryCap,
		NegRiskCap:  cfg.NegRiskCap,
		MarketCap:   cfg.MarketCap,
	}

	engineConfig := engine.Config{
		InitialCapital: cfg.InitialCapital,
		MinEV:          cfg.MinEV,
	}

	return engine.New(calibratorConfig, model, riskConfig, engineConfig, logger)
}
