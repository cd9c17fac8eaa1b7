// Package costmodel walks an order-book snapshot to produce a VWAP fill
// and its cost decomposition: slippage, fees, gas, and borrow.
package costmodel

import (
	"math"

	"github.com/mselser95/polymarket-backtest/pkg/types"
)

// terminationTolerance is the remaining-size epsilon the VWAP walk stops
// at; part of the numerical contract (spec §4.2) so floating-point
// fragments never trigger an extra book level.
const terminationTolerance = 1e-9

// CostBreakdown is the result of a fill: the achieved execution price,
// filled size, and the cost components that produced it.
type CostBreakdown struct {
	ExecutionPrice float64
	FilledSize     float64
	SlippageCost   float64
	TakerFeeCost   float64
	GasCost        float64
	BorrowCost     float64
}

// Notional is execution_price * filled_size.
func (b CostBreakdown) Notional() float64 {
	return b.ExecutionPrice * b.FilledSize
}

// TransactionCost is slippage + fee + gas, excluding borrow.
func (b CostBreakdown) TransactionCost() float64 {
	return b.SlippageCost + b.TakerFeeCost + b.GasCost
}

// TotalCost is TransactionCost + borrow.
func (b CostBreakdown) TotalCost() float64 {
	return b.TransactionCost() + b.BorrowCost
}

// PerShareCost is TotalCost / FilledSize, or 0 if nothing filled.
func (b CostBreakdown) PerShareCost() float64 {
	if b.FilledSize == 0 {
		return 0
	}
	return b.TotalCost() / b.FilledSize
}

// CostModel configures the fee, gas, and borrow-rate assumptions applied
// to every fill.
type CostModel struct {
	TakerFee   float64 // fraction of notional
	GasCost    float64 // flat per fill
	BorrowRate float64 // annualized, applied to notional over holding days
}

// New creates a CostModel with the given parameters.
func New(takerFee, gasCost, borrowRate float64) CostModel {
	return CostModel{TakerFee: takerFee, GasCost: gasCost, BorrowRate: borrowRate}
}

// EstimateCost sweeps the ask side of snapshot for up to targetSize
// shares in price-priority order and returns the resulting fill and cost
// decomposition, per spec §4.2.
func (m CostModel) EstimateCost(snapshot types.BookSnapshot, targetSize, tauDays float64) (CostBreakdown, error) {
	best, ok := snapshot.BestAsk()
	if !ok {
		return CostBreakdown{}, ErrNoAskLiquidity
	}

	executionPrice, filled := computeVWAP(snapshot.Asks(), targetSize)
	if filled == 0 {
		return CostBreakdown{}, ErrInsufficientLiquidity
	}

	slippage := math.Max(0, (executionPrice-best.Price)*filled)
	takerFee := m.TakerFee * executionPrice * filled
	borrow := math.Max(tauDays, 0) / 365.0 * m.BorrowRate * executionPrice * filled

	breakdown := CostBreakdown{
		ExecutionPrice: executionPrice,
		FilledSize:     filled,
		SlippageCost:   slippage,
		TakerFeeCost:   takerFee,
		GasCost:        m.GasCost,
		BorrowCost:     borrow,
	}
	FillsTotal.Inc()
	FilledSizeTotal.Add(filled)
	return breakdown, nil
}

// computeVWAP walks asks (already price-ascending) consuming
// min(remaining, level.size) per level until remaining is within
// terminationTolerance of zero or asks are exhausted.
func computeVWAP(asks []types.BookLevel, size float64) (vwap, filled float64) {
	remaining := size
	totalCost := 0.0

	for _, level := range asks {
		take := math.Min(remaining, level.Size)
		totalCost += take * level.Price
		filled += take
		remaining -= take
		if remaining <= terminationTolerance {
			break
		}
	}

	if filled == 0 {
		return 0, 0
	}
	return totalCost / filled, filled
}
