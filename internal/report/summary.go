// Package report computes post-run performance and calibration statistics
// from an engine.Result, mirroring the reference implementation's
// report/metrics.py summary, monthly breakdown, calibration, and Brier
// score functions.
package report

import (
	"math"
	"sort"

	"github.com/mselser95/polymarket-backtest/internal/engine"
)

// Summary is the top-level performance scorecard for a completed run.
type Summary struct {
	Trades          int
	TotalPnL        float64
	TotalNotional   float64
	TotalCost       float64
	WinRate         float64
	AverageReturn   float64
	Volatility      float64
	SharpeLike      float64
	AbsoluteReturn  float64
	EndingCapital   float64
}

// ComputeSummary aggregates trade-level PnL into a run-level scorecard.
func ComputeSummary(trades []engine.TradeResult, initialCapital float64) Summary {
	s := Summary{Trades: len(trades)}
	if len(trades) == 0 {
		return s
	}

	wins := 0
	returns := make([]float64, 0, len(trades))
	for _, t := range trades {
		s.TotalPnL += t.PnL
		s.TotalNotional += t.Notional
		s.TotalCost += t.TotalCost
		if t.Payout >= t.Notional {
			wins++
		}
		if t.Notional > 0 {
			returns = append(returns, t.PnL/t.Notional)
		}
	}

	s.WinRate = float64(wins) / float64(len(trades))
	s.AverageReturn = mean(returns)
	s.Volatility = sampleStdDev(returns, s.AverageReturn)
	if s.Volatility > 1e-9 {
		s.SharpeLike = s.AverageReturn / s.Volatility
	}
	if initialCapital != 0 {
		s.AbsoluteReturn = s.TotalPnL / initialCapital
	}
	s.EndingCapital = initialCapital + s.TotalPnL
	return s
}

// MonthlyBucket is one month's aggregated PnL and trade count.
type MonthlyBucket struct {
	Month    string // "2026-07" (year-month, UTC)
	PnL      float64
	Notional float64
	Count    int
}

// ComputeMonthlyBreakdown groups trades by the calendar month of their
// resolve_ts, in ascending month order.
func ComputeMonthlyBreakdown(trades []engine.TradeResult) []MonthlyBucket {
	byMonth := make(map[string]*MonthlyBucket)
	for _, t := range trades {
		key := t.ResolveTS.UTC().Format("2006-01")
		b, ok := byMonth[key]
		if !ok {
			b = &MonthlyBucket{Month: key}
			byMonth[key] = b
		}
		b.PnL += t.PnL
		b.Notional += t.Notional
		b.Count++
	}

	out := make([]MonthlyBucket, 0, len(byMonth))
	for _, b := range byMonth {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdDev computes the ddof=1 sample standard deviation, matching
// numpy's np.std(..., ddof=1). Returns 0 for fewer than two observations.
func sampleStdDev(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}
