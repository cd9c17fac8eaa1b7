package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CandidatesSkippedTotal counts candidates the engine declined to
	// act on, labeled by reason.
	CandidatesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_backtest_engine_candidates_skipped_total",
		Help: "Candidate trades skipped by the engine, labeled by reason",
	}, []string{"reason"})

	// TradesExecutedTotal counts candidates the engine filled and opened.
	TradesExecutedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_backtest_engine_trades_executed_total",
		Help: "Candidate trades filled and opened as positions",
	})

	// TradesSettledTotal counts positions settled (resolved or force-settled).
	TradesSettledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_backtest_engine_trades_settled_total",
		Help: "Positions settled",
	})

	// SplitsProcessedTotal counts walk-forward splits processed.
	SplitsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_backtest_engine_splits_processed_total",
		Help: "Walk-forward splits processed",
	})

	// CapitalGauge reports the most recently observed capital value.
	CapitalGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_backtest_engine_capital",
		Help: "Current backtest capital",
	})
)

const (
	SkipReasonNoBook          = "no_book_snapshot"
	SkipReasonNaNPrediction   = "nan_prediction"
	SkipReasonNoKellyEdge     = "no_kelly_edge"
	SkipReasonNoAvailable     = "no_available_notional"
	SkipReasonNoLiquidity     = "no_ask_liquidity"
	SkipReasonCostModelError  = "cost_model_error"
	SkipReasonZeroFill        = "zero_fill"
	SkipReasonOverCapital     = "over_capital"
	SkipReasonBelowMinEV      = "below_min_ev"
	SkipReasonBankrupt        = "bankrupt"
)
