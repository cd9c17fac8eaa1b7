package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-backtest/internal/engine"
)

// ConsoleStorage implements Storage by pretty-printing a run summary to
// console, useful for ad hoc local runs without a database available.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

// StoreRun pretty-prints the run's scorecard to console.
func (c *ConsoleStorage) StoreRun(ctx context.Context, result *engine.Result) error {
	fmt.Println("\n" + "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("BACKTEST RUN COMPLETE\n")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Run ID:          %s\n", result.RunID)
	fmt.Printf("Trades executed: %d\n", len(result.ExecutedTrades))
	fmt.Printf("Ending capital:  $%.2f\n", result.EndingCapital)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	totalPnL := 0.0
	for _, t := range result.ExecutedTrades {
		totalPnL += t.PnL
		fmt.Printf("  %-36s %-10s pnl=%8.2f notional=%8.2f\n", t.TradeID, t.ConditionID, t.PnL, t.Notional)
	}
	fmt.Printf("  ───────────────────────────────\n")
	fmt.Printf("  Total PnL: $%.2f\n", totalPnL)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
