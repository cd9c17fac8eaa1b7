// Package ingest decodes the five newline-delimited JSON input tables
// (markets, resolutions, trades, books, prices) that feed the feature
// join, per spec §6, and the walk-forward split schedule (splits.go).
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mselser95/polymarket-backtest/pkg/types"
)

// decodeLines decodes one JSON value per non-empty line of r, calling
// validate on each before appending.
func decodeLines[T any](r io.Reader, validate func(T) error) ([]T, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out []T
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var row T
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("ingest: decode line %d: %w", line, err)
		}
		if err := validate(row); err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", line, err)
		}
		out = append(out, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest: scan: %w", err)
	}
	return out, nil
}

// LoadMarkets decodes the `markets` table: condition_id, slug, category,
// end_date, clob_token_yes, neg_risk_group.
func LoadMarkets(r io.Reader) ([]types.Market, error) {
	rows, err := decodeLines(r, func(m types.Market) error {
		if m.ConditionID == "" || m.Slug == "" || m.ClobTokenYes == "" || m.EndDate.IsZero() {
			return ErrMissingColumn
		}
		return nil
	})
	if err == nil {
		RowsLoadedTotal.WithLabelValues("markets").Add(float64(len(rows)))
	}
	return rows, err
}

// LoadResolutions decodes the `resolutions` table: condition_id,
// resolved_outcome, resolve_ts, dispute_flag.
func LoadResolutions(r io.Reader) ([]types.Resolution, error) {
	rows, err := decodeLines(r, func(res types.Resolution) error {
		if res.ConditionID == "" || res.ResolveTS.IsZero() {
			return ErrMissingColumn
		}
		if res.ResolvedOutcome != "yes" && res.ResolvedOutcome != "no" {
			return fmt.Errorf("%w: resolved_outcome must be \"yes\" or \"no\", got %q", ErrMissingColumn, res.ResolvedOutcome)
		}
		return nil
	})
	if err == nil {
		RowsLoadedTotal.WithLabelValues("resolutions").Add(float64(len(rows)))
	}
	return rows, err
}

// LoadTrades decodes the `trades` table: trade_id, token_id,
// condition_id, timestamp, price, size.
func LoadTrades(r io.Reader) ([]types.Trade, error) {
	rows, err := decodeLines(r, func(t types.Trade) error {
		if t.TradeID == "" || t.TokenID == "" || t.ConditionID == "" || t.Timestamp.IsZero() {
			return ErrMissingColumn
		}
		return nil
	})
	if err == nil {
		RowsLoadedTotal.WithLabelValues("trades").Add(float64(len(rows)))
	}
	return rows, err
}

// bookRow is one flat row of the `books` table before grouping into
// per-(token_id, timestamp) snapshots.
type bookRow struct {
	TokenID   string     `json:"token_id"`
	Timestamp time.Time  `json:"timestamp"`
	Side      types.Side `json:"side"`
	Level     int        `json:"level"`
	Price     float64    `json:"price"`
	Size      float64    `json:"size"`
}

// LoadBooks decodes the `books` table and groups rows into snapshots
// keyed by (token_id, timestamp).
func LoadBooks(r io.Reader) ([]types.BookSnapshot, error) {
	rows, err := decodeLines(r, func(b bookRow) error {
		if b.TokenID == "" || b.Timestamp.IsZero() || b.Level < 1 {
			return ErrMissingColumn
		}
		if b.Side != types.Ask && b.Side != types.Bid {
			return fmt.Errorf("%w: side must be \"ask\" or \"bid\", got %q", ErrMissingColumn, b.Side)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	type key struct {
		tokenID string
		ts      int64
	}
	order := make([]key, 0)
	byKey := make(map[key]*types.BookSnapshot)
	for _, row := range rows {
		k := key{tokenID: row.TokenID, ts: row.Timestamp.UnixNano()}
		snap, ok := byKey[k]
		if !ok {
			snap = &types.BookSnapshot{TokenID: row.TokenID, Timestamp: row.Timestamp}
			byKey[k] = snap
			order = append(order, k)
		}
		snap.Levels = append(snap.Levels, types.BookLevel{
			Side:  row.Side,
			Level: row.Level,
			Price: row.Price,
			Size:  row.Size,
		})
	}

	out := make([]types.BookSnapshot, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	RowsLoadedTotal.WithLabelValues("books").Add(float64(len(rows)))
	return out, nil
}

// LoadPrices decodes the `prices` table: token_id, timestamp, price.
func LoadPrices(r io.Reader) ([]types.PriceObservation, error) {
	rows, err := decodeLines(r, func(p types.PriceObservation) error {
		if p.TokenID == "" || p.Timestamp.IsZero() {
			return ErrMissingColumn
		}
		return nil
	})
	if err == nil {
		RowsLoadedTotal.WithLabelValues("prices").Add(float64(len(rows)))
	}
	return rows, err
}
