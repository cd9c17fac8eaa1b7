// Package engine runs a walk-forward backtest of candidate trades against
// a refit calibrator, a cost model, and an exposure-capped Kelly sizer,
// producing settled trade results and a capital history.
package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-backtest/internal/calibrator"
	"github.com/mselser95/polymarket-backtest/internal/costmodel"
	"github.com/mselser95/polymarket-backtest/internal/risk"
	"github.com/mselser95/polymarket-backtest/pkg/types"
)

// Engine owns the per-run configuration for the three core subsystems.
// It carries no state between calls to Run: each Run constructs its own
// exposure ledger and starting capital.
type Engine struct {
	CalibratorConfig calibrator.Config
	CostModel        costmodel.CostModel
	RiskConfig       risk.Config
	Config           Config
	Logger           *zap.Logger
}

// New creates an Engine. A nil logger is replaced with zap.NewNop().
func New(calibratorConfig calibrator.Config, model costmodel.CostModel, riskConfig risk.Config, config Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		CalibratorConfig: calibratorConfig,
		CostModel:        model,
		RiskConfig:       riskConfig,
		Config:           config,
		Logger:           logger,
	}
}

// Run walks splits in order, refitting a calibrator on each split's train
// window and acting on each split's test-window candidates in timestamp
// order, settling matured positions before opening new ones at every
// event boundary. At the end of the last split every remaining open
// position is force-settled at EndOfRun.
func (e *Engine) Run(ctx context.Context, rows []types.CandidateTrade, splits []Split, books BookLookup) (Result, error) {
	runID := uuid.New().String()
	logger := e.Logger.With(zap.String("run-id", runID))

	sorted := append([]types.CandidateTrade(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	ledger := risk.New(e.RiskConfig)
	capital := e.Config.InitialCapital

	var open []*openPosition
	var executed []TradeResult
	var history []CapitalHistoryPoint

	for _, split := range splits {
		if err := ctx.Err(); err != nil {
			logger.Warn("run-cancelled")
			return Result{RunID: runID, CapitalHistory: history, ExecutedTrades: executed, EndingCapital: capital}, err
		}

		train := rowsUpTo(sorted, split.TrainEnd)
		test := rowsBetween(sorted, split.TrainEnd, split.TestEnd)
		if len(test) == 0 {
			continue
		}

		cal := calibrator.New(e.CalibratorConfig)
		trainRows := make([]calibrator.TrainingRow, len(train))
		for i, r := range train {
			trainRows[i] = calibrator.TrainingRow{Price: r.Price, Outcome: r.Outcome, Bucket: r.Bucket}
		}
		if err := cal.Fit(trainRows); err != nil {
			logger.Error("split-fit-failed", zap.Error(err))
			return Result{RunID: runID, CapitalHistory: history, ExecutedTrades: executed, EndingCapital: capital}, err
		}

		predictRows := make([]calibrator.PredictRow, len(test))
		for i, r := range test {
			predictRows[i] = calibrator.PredictRow{Price: r.Price, Bucket: r.Bucket}
		}
		predictions, err := cal.Transform(predictRows)
		if err != nil {
			logger.Error("split-transform-failed", zap.Error(err))
			return Result{RunID: runID, CapitalHistory: history, ExecutedTrades: executed, EndingCapital: capital}, err
		}

		for i, row := range test {
			open, capital = e.settle(row.Timestamp, open, capital, &executed, &history, ledger, logger)

			if capital <= 0 {
				CandidatesSkippedTotal.WithLabelValues(SkipReasonBankrupt).Inc()
				continue
			}

			snapshot, ok := books.Snapshot(row.TokenID, row.Timestamp)
			if !ok {
				CandidatesSkippedTotal.WithLabelValues(SkipReasonNoBook).Inc()
				continue
			}

			pred := predictions[i]
			if math.IsNaN(pred.QHat) || math.IsNaN(pred.QLower) {
				CandidatesSkippedTotal.WithLabelValues(SkipReasonNaNPrediction).Inc()
				continue
			}

			fraction := ledger.KellyFraction(pred.QHat, row.Price)
			if fraction <= 0 {
				CandidatesSkippedTotal.WithLabelValues(SkipReasonNoKellyEdge).Inc()
				continue
			}

			available := ledger.AvailableNotional(capital, row.Category, row.NegRiskGroup, row.ConditionID)
			if available <= 0 {
				CandidatesSkippedTotal.WithLabelValues(SkipReasonNoAvailable).Inc()
				continue
			}

			targetNotional := math.Min(capital*fraction, available)
			if targetNotional <= 0 {
				CandidatesSkippedTotal.WithLabelValues(SkipReasonNoAvailable).Inc()
				continue
			}

			liquidity := snapshot.AskLiquidity()
			if liquidity <= 0 {
				CandidatesSkippedTotal.WithLabelValues(SkipReasonNoLiquidity).Inc()
				continue
			}

			tentativeSize := math.Min(liquidity, targetNotional/row.Price)
			breakdown, costErr := e.CostModel.EstimateCost(snapshot, tentativeSize, row.TimeToEventDays)
			if costErr != nil {
				logger.Warn("cost-model-skip", zap.String("trade-id", row.TradeID), zap.Error(costErr))
				CandidatesSkippedTotal.WithLabelValues(SkipReasonCostModelError).Inc()
				continue
			}

			if breakdown.Notional() > targetNotional && breakdown.ExecutionPrice > 0 {
				adjustedSize := targetNotional / breakdown.ExecutionPrice
				if adjusted, adjErr := e.CostModel.EstimateCost(snapshot, adjustedSize, row.TimeToEventDays); adjErr == nil {
					breakdown = adjusted
				}
			}

			if breakdown.FilledSize == 0 {
				CandidatesSkippedTotal.WithLabelValues(SkipReasonZeroFill).Inc()
				continue
			}

			if breakdown.Notional()+breakdown.TotalCost() > capital {
				CandidatesSkippedTotal.WithLabelValues(SkipReasonOverCapital).Inc()
				continue
			}

			evLower := pred.QLower - breakdown.ExecutionPrice - breakdown.PerShareCost()
			if evLower <= e.Config.MinEV {
				CandidatesSkippedTotal.WithLabelValues(SkipReasonBelowMinEV).Inc()
				continue
			}

			capital -= breakdown.Notional()
			capital -= breakdown.TotalCost()
			CapitalGauge.Set(capital)
			history = append(history, CapitalHistoryPoint{Timestamp: row.Timestamp, Capital: capital})

			ledger.RegisterPosition(row.Category, row.NegRiskGroup, row.ConditionID, breakdown.Notional())
			open = append(open, &openPosition{
				trade:     row,
				breakdown: breakdown,
				qHat:      pred.QHat,
				qLower:    pred.QLower,
				evLower:   evLower,
			})
			TradesExecutedTotal.Inc()
		}

		SplitsProcessedTotal.Inc()
	}

	open, capital = e.settle(EndOfRun, open, capital, &executed, &history, ledger, logger)
	history = append(history, CapitalHistoryPoint{Timestamp: EndOfRun, Capital: capital})
	CapitalGauge.Set(capital)

	if len(open) > 0 {
		logger.Warn("positions-still-open-after-force-settle", zap.Int("count", len(open)))
	}

	return Result{RunID: runID, CapitalHistory: history, ExecutedTrades: executed, EndingCapital: capital}, nil
}

// settle releases and records every position whose resolve_ts has passed
// as of now, in input order, returning the remaining open positions and
// updated capital.
func (e *Engine) settle(now time.Time, open []*openPosition, capital float64, executed *[]TradeResult, history *[]CapitalHistoryPoint, ledger *risk.Ledger, logger *zap.Logger) ([]*openPosition, float64) {
	remaining := make([]*openPosition, 0, len(open))
	for _, p := range open {
		if p.trade.ResolveTS.After(now) {
			remaining = append(remaining, p)
			continue
		}

		payout := float64(p.trade.Outcome) * p.breakdown.FilledSize
		capital += payout
		pnl := payout - p.breakdown.Notional() - p.breakdown.TotalCost()

		*executed = append(*executed, TradeResult{
			TradeID:        p.trade.TradeID,
			ConditionID:    p.trade.ConditionID,
			Timestamp:      p.trade.Timestamp,
			ResolveTS:      p.trade.ResolveTS,
			Category:       p.trade.Category,
			NegRiskGroup:   p.trade.NegRiskGroup,
			Price:          p.trade.Price,
			ExecutionPrice: p.breakdown.ExecutionPrice,
			Shares:         p.breakdown.FilledSize,
			Notional:       p.breakdown.Notional(),
			QHat:           p.qHat,
			QLower:         p.qLower,
			EVLower:        p.evLower,
			TotalCost:      p.breakdown.TotalCost(),
			Payout:         payout,
			PnL:            pnl,
		})

		ledger.ReleasePosition(p.trade.Category, p.trade.NegRiskGroup, p.trade.ConditionID, p.breakdown.Notional())
		*history = append(*history, CapitalHistoryPoint{Timestamp: p.trade.ResolveTS, Capital: capital})
		TradesSettledTotal.Inc()
		logger.Debug("position-settled", zap.String("trade-id", p.trade.TradeID), zap.Float64("pnl", pnl))
	}
	return remaining, capital
}

// rowsUpTo returns rows with timestamp <= upTo, preserving input order.
func rowsUpTo(rows []types.CandidateTrade, upTo time.Time) []types.CandidateTrade {
	out := make([]types.CandidateTrade, 0, len(rows))
	for _, r := range rows {
		if !r.Timestamp.After(upTo) {
			out = append(out, r)
		}
	}
	return out
}

// rowsBetween returns rows with after < timestamp <= upTo, preserving
// input order.
func rowsBetween(rows []types.CandidateTrade, after, upTo time.Time) []types.CandidateTrade {
	out := make([]types.CandidateTrade, 0, len(rows))
	for _, r := range rows {
		if r.Timestamp.After(after) && !r.Timestamp.After(upTo) {
			out = append(out, r)
		}
	}
	return out
}
