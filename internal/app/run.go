package app

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-backtest/internal/engine"
	"github.com/mselser95/polymarket-backtest/internal/feature"
	"github.com/mselser95/polymarket-backtest/internal/ingest"
	"github.com/mselser95/polymarket-backtest/internal/report"
	"github.com/mselser95/polymarket-backtest/pkg/resultstream"
	"github.com/mselser95/polymarket-backtest/pkg/types"
)

// runSummary is the JSON document printed to stdout once a run completes.
type runSummary struct {
	Summary     report.Summary          `json:"summary"`
	Monthly     []report.MonthlyBucket  `json:"monthly"`
	Calibration []report.CalibrationBin `json:"calibration"`
	BrierScore  float64                 `json:"brier_score"`
}

// Run loads the input tables named by opts, walks them through the feature
// join and the backtest engine, persists the result, and prints a summary
// report to stdout. If opts.ServeHTTP is set, it also starts the HTTP
// server and blocks serving /metrics, /health, and the result feed until
// the process receives a shutdown signal.
func (a *App) Run(opts Options) error {
	a.logger.Info("run-starting",
		zap.String("trades", opts.TradesPath),
		zap.String("markets", opts.MarketsPath))

	candidates, splits, books, err := a.loadAndJoin(opts)
	if err != nil {
		return fmt.Errorf("load and join: %w", err)
	}

	lookup := engine.NewCachedBookLookup(books, a.bookCache, 0)

	result, err := a.engine.Run(a.ctx, candidates, splits, lookup)
	if err != nil {
		return fmt.Errorf("run engine: %w", err)
	}

	a.logger.Info("run-complete",
		zap.String("run-id", result.RunID),
		zap.Int("trades", len(result.ExecutedTrades)),
		zap.Float64("ending-capital", result.EndingCapital))

	a.results.Put(&result)
	a.broadcastResult(&result)

	if err := a.storage.StoreRun(a.ctx, &result); err != nil {
		return fmt.Errorf("store run: %w", err)
	}

	if err := a.printSummary(&result); err != nil {
		return fmt.Errorf("print summary: %w", err)
	}

	if opts.ServeHTTP {
		a.healthChecker.SetReady(true)
		return a.serveUntilShutdown()
	}

	return nil
}

// loadAndJoin decodes the NDJSON input tables and runs them through the
// feature join, producing the candidate trades and book lookup the engine
// needs.
func (a *App) loadAndJoin(opts Options) ([]types.CandidateTrade, []engine.Split, engine.BookLookup, error) {
	trades, err := loadFile(opts.TradesPath, ingest.LoadTrades)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load trades: %w", err)
	}
	markets, err := loadFile(opts.MarketsPath, ingest.LoadMarkets)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load markets: %w", err)
	}
	resolutions, err := loadFile(opts.ResolutionsPath, ingest.LoadResolutions)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load resolutions: %w", err)
	}
	bookSnapshots, err := loadFile(opts.BooksPath, ingest.LoadBooks)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load books: %w", err)
	}
	prices, err := loadFile(opts.PricesPath, ingest.LoadPrices)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load prices: %w", err)
	}
	splits, err := loadFile(opts.SplitsPath, ingest.LoadSplits)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load splits: %w", err)
	}

	labelConfig := feature.DefaultLabelConfig()
	labelConfig.TimeCutHours = a.cfg.TimeCutHours

	cut, err := feature.ApplyTimeCut(trades, resolutions, labelConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("apply time cut: %w", err)
	}
	labeled, err := feature.AttachLabels(cut, resolutions, labelConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("attach labels: %w", err)
	}
	candidates, err := feature.ComputeFeatures(labeled, markets)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compute features: %w", err)
	}

	lookup := make(engine.MapBookLookup, len(bookSnapshots))
	for _, snap := range bookSnapshots {
		lookup[types.BookKey{TokenID: snap.TokenID, Timestamp: snap.Timestamp}] = snap
	}

	_ = prices // diagnostic-only feature columns are not required by the engine

	return candidates, splits, lookup, nil
}

// loadFile opens path and decodes it with decode, a thin wrapper shared by
// the six NDJSON tables so loadAndJoin can treat them uniformly.
func loadFile[T any](path string, decode func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f)
}

// broadcastResult pushes every trade fill and capital tick from a completed
// run to the result stream hub, followed by a run-complete event. The
// engine's Run call is synchronous and does not expose a mid-run hook, so
// subscribers receive the full run as a burst immediately after it finishes.
func (a *App) broadcastResult(result *engine.Result) {
	for _, point := range result.CapitalHistory {
		a.hub.Broadcast(resultstream.Event{RunID: result.RunID, Type: resultstream.EventCapitalTick, Data: point})
	}
	for _, trade := range result.ExecutedTrades {
		a.hub.Broadcast(resultstream.Event{RunID: result.RunID, Type: resultstream.EventTradeFilled, Data: trade})
	}
	a.hub.Broadcast(resultstream.Event{RunID: result.RunID, Type: resultstream.EventRunComplete, Data: result})
}

// printSummary writes the run's aggregate statistics to stdout as JSON.
func (a *App) printSummary(result *engine.Result) error {
	summary := runSummary{
		Summary:     report.ComputeSummary(result.ExecutedTrades, a.cfg.InitialCapital),
		Monthly:     report.ComputeMonthlyBreakdown(result.ExecutedTrades),
		Calibration: report.ComputeCalibration(result.ExecutedTrades, 5),
		BrierScore:  report.BrierScore(result.ExecutedTrades),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
