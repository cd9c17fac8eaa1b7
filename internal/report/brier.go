package report

import "github.com/mselser95/polymarket-backtest/internal/engine"

// BrierScore computes the mean squared error between each executed
// trade's predicted probability and its realized settlement (1 if the
// position paid out, 0 otherwise). Lower is better; 0 for no trades.
func BrierScore(trades []engine.TradeResult) float64 {
	if len(trades) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range trades {
		outcome := 0.0
		if t.Payout > 0 {
			outcome = 1.0
		}
		d := t.QHat - outcome
		sum += d * d
	}
	return sum / float64(len(trades))
}
