// Package storage persists completed backtest runs: the executed-trade
// ledger and the capital-history curve produced by a single engine.Run.
package storage

import (
	"context"

	"github.com/mselser95/polymarket-backtest/internal/engine"
)

// Storage is the interface for persisting a finished backtest run.
type Storage interface {
	// StoreRun persists a run's capital history and executed trades.
	StoreRun(ctx context.Context, result *engine.Result) error

	// Close closes the storage connection.
	Close() error
}
