// Package app wires ingestion, feature join, the backtest engine, and
// reporting into the CLI's `run` command.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-backtest/internal/engine"
	"github.com/mselser95/polymarket-backtest/internal/storage"
	"github.com/mselser95/polymarket-backtest/pkg/cache"
	"github.com/mselser95/polymarket-backtest/pkg/config"
	"github.com/mselser95/polymarket-backtest/pkg/healthprobe"
	"github.com/mselser95/polymarket-backtest/pkg/httpserver"
	"github.com/mselser95/polymarket-backtest/pkg/resultstream"
)

// App orchestrates a single backtest run: ingest, feature join, engine,
// storage, and (optionally) an HTTP server exposing metrics, health, and
// a results feed; the server starts after the run has completed.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	results       *httpserver.ResultRegistry
	hub           *resultstream.Hub
	bookCache     cache.Cache
	storage       storage.Storage
	engine        *engine.Engine
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds the inputs for a single run, supplied by cmd/run.go.
type Options struct {
	TradesPath      string
	MarketsPath     string
	ResolutionsPath string
	BooksPath       string
	PricesPath      string
	SplitsPath      string
	ServeHTTP       bool // expose /metrics, /health, /ws/results after the run until shutdown
}
