package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-backtest/pkg/config"
)

// writeNDJSON writes lines to a temp file under dir and returns its path.
func writeNDJSON(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

// TestApp_Run_EndToEnd exercises the full wiring: ingest, feature join,
// the calibrated engine, the result registry, the result stream hub, and
// console storage, over a small synthetic market with one training
// cluster and one test-window trade.
func TestApp_Run_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	var tradeLines []string
	for i := 0; i < 20; i++ {
		tradeLines = append(tradeLines, fmt.Sprintf(
			`{"trade_id":"train-%d","token_id":"tok1","condition_id":"c1","timestamp":"2026-01-0%dT00:00:00Z","price":0.5,"size":100}`,
			i, (i%8)+1))
	}
	tradeLines = append(tradeLines,
		`{"trade_id":"test-1","token_id":"tok1","condition_id":"c1","timestamp":"2026-01-20T00:00:00Z","price":0.5,"size":100}`)

	marketsPath := writeNDJSON(t, dir, "markets.ndjson", []string{
		`{"condition_id":"c1","slug":"will-it-rain","category":"weather","end_date":"2026-06-01T00:00:00Z","clob_token_yes":"tok1","neg_risk_group":"G"}`,
	})
	resolutionsPath := writeNDJSON(t, dir, "resolutions.ndjson", []string{
		`{"condition_id":"c1","resolved_outcome":"yes","resolve_ts":"2026-03-01T00:00:00Z","dispute_flag":false}`,
	})
	tradesPath := writeNDJSON(t, dir, "trades.ndjson", tradeLines)
	booksPath := writeNDJSON(t, dir, "books.ndjson", []string{
		`{"token_id":"tok1","timestamp":"2026-01-20T00:00:00Z","side":"ask","level":1,"price":0.55,"size":1000}`,
	})
	pricesPath := writeNDJSON(t, dir, "prices.ndjson", []string{
		`{"token_id":"tok1","timestamp":"2026-01-20T00:00:00Z","price":0.5}`,
	})
	splitsPath := writeNDJSON(t, dir, "splits.ndjson", []string{
		`{"train_end":"2026-01-10T00:00:00Z","test_end":"2026-02-10T00:00:00Z"}`,
	})

	cfg := &config.Config{
		HTTPPort:           "0",
		InitialCapital:     100_000,
		MinEV:              0,
		CalibratorMinCount: 2,
		CalibratorAlpha:    0.05,
		TakerFee:           0.01,
		KellyLambda:        0.4,
		MaxFraction:        0.25,
		CategoryCap:        0.4,
		NegRiskCap:         0.4,
		MarketCap:          0.5,
		TimeCutHours:       4,
		StorageMode:        "console",
		CacheNumCounters:   1000,
		CacheMaxCost:       1000,
		CacheBufferItems:   64,
	}

	application, err := New(cfg, zap.NewNop(), &Options{})
	require.NoError(t, err)

	opts := Options{
		TradesPath:      tradesPath,
		MarketsPath:     marketsPath,
		ResolutionsPath: resolutionsPath,
		BooksPath:       booksPath,
		PricesPath:      pricesPath,
		SplitsPath:      splitsPath,
	}

	err = application.Run(opts)
	require.NoError(t, err)
}
