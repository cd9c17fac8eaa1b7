package report

import (
	"github.com/mselser95/polymarket-backtest/internal/engine"
)

// CalibrationBin is one bucket of the reliability diagram: predictions
// in [lowerBound, upperBound) against their realized settlement rate.
type CalibrationBin struct {
	LowerBound     float64
	UpperBound     float64
	MeanPrediction float64
	Empirical      float64
	Count          int
}

// ComputeCalibration bins executed trades by predicted probability
// (q_hat) over n equal-width bins spanning [0.5, 1.0]; trades with q_hat
// outside that range are not counted. Bins are left-closed and
// right-open, except the last, which also includes 1.0.
func ComputeCalibration(trades []engine.TradeResult, numBins int) []CalibrationBin {
	if numBins <= 0 {
		numBins = 5
	}
	width := 0.5 / float64(numBins)

	bins := make([]CalibrationBin, numBins)
	for i := range bins {
		bins[i].LowerBound = 0.5 + float64(i)*width
		bins[i].UpperBound = 0.5 + float64(i+1)*width
	}

	sums := make([]float64, numBins)
	outcomes := make([]float64, numBins)
	counts := make([]int, numBins)

	for _, t := range trades {
		idx := binIndex(t.QHat, numBins, width)
		if idx < 0 {
			continue
		}
		sums[idx] += t.QHat
		if t.Payout > 0 {
			outcomes[idx]++
		}
		counts[idx]++
	}

	for i := range bins {
		bins[i].Count = counts[i]
		if counts[i] > 0 {
			bins[i].MeanPrediction = sums[i] / float64(counts[i])
			bins[i].Empirical = outcomes[i] / float64(counts[i])
		}
	}
	return bins
}

// binIndex maps a prediction in [0.5, 1.0] to its bin index, or -1 if
// it falls outside the calibration range entirely.
func binIndex(qHat float64, numBins int, width float64) int {
	if qHat < 0.5 || qHat > 1.0 {
		return -1
	}
	idx := int((qHat - 0.5) / width)
	if idx >= numBins {
		idx = numBins - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
