// Package risk implements Kelly-fraction sizing and a per-axis exposure
// ledger (category, neg-risk group, market) bounding how much capital a
// single candidate trade may consume.
package risk

import "math"

// Config holds the Kelly and exposure-cap parameters.
type Config struct {
	KellyLambda  float64
	MaxFraction  float64
	CategoryCap  float64
	NegRiskCap   float64
	MarketCap    float64
}

// DefaultConfig mirrors the reference implementation's defaults.
func DefaultConfig() Config {
	return Config{
		KellyLambda: 0.4,
		MaxFraction: 0.25,
		CategoryCap: 0.4,
		NegRiskCap:  0.4,
		MarketCap:   0.5,
	}
}

// Ledger tracks notional exposure per category, neg-risk group, and
// market, and sizes candidate trades under those caps.
type Ledger struct {
	config Config

	categoryExposure  map[string]float64
	negRiskExposure   map[string]float64
	marketExposure    map[string]float64
}

// New creates an empty Ledger.
func New(config Config) *Ledger {
	return &Ledger{
		config:           config,
		categoryExposure: make(map[string]float64),
		negRiskExposure:  make(map[string]float64),
		marketExposure:   make(map[string]float64),
	}
}

// KellyFraction returns the Kelly-scaled bet fraction in [0, MaxFraction].
// Returns 0 if there is no edge (q_hat <= price) or price >= 1.
func (l *Ledger) KellyFraction(qHat, price float64) float64 {
	edge := qHat - price
	if edge <= 0 || price >= 1 {
		return 0
	}
	raw := edge / (1 - price)
	fraction := l.config.KellyLambda * raw
	return math.Max(0, math.Min(l.config.MaxFraction, fraction))
}

// AvailableNotional returns the largest notional a new position may take
// on, the minimum of capital and the residual headroom on every present
// axis (absent category/negRiskGroup keys impose no cap).
func (l *Ledger) AvailableNotional(capital float64, category, negRiskGroup, market string) float64 {
	caps := []float64{capital}

	if category != "" {
		caps = append(caps, math.Max(0, l.config.CategoryCap*capital-l.categoryExposure[category]))
	}
	if negRiskGroup != "" {
		caps = append(caps, math.Max(0, l.config.NegRiskCap*capital-l.negRiskExposure[negRiskGroup]))
	}
	caps = append(caps, math.Max(0, l.config.MarketCap*capital-l.marketExposure[market]))

	min := caps[0]
	for _, c := range caps[1:] {
		if c < min {
			min = c
		}
	}
	return math.Max(0, min)
}

// RegisterPosition adds notional to every present axis.
func (l *Ledger) RegisterPosition(category, negRiskGroup, market string, notional float64) {
	if category != "" {
		l.categoryExposure[category] += notional
	}
	if negRiskGroup != "" {
		l.negRiskExposure[negRiskGroup] += notional
	}
	l.marketExposure[market] += notional
	ExposureRegisteredTotal.Add(notional)
}

// ReleasePosition subtracts notional from every present axis, clamping
// each at zero so numerical drift or an over-release never goes negative.
func (l *Ledger) ReleasePosition(category, negRiskGroup, market string, notional float64) {
	if category != "" {
		l.categoryExposure[category] = math.Max(0, l.categoryExposure[category]-notional)
	}
	if negRiskGroup != "" {
		l.negRiskExposure[negRiskGroup] = math.Max(0, l.negRiskExposure[negRiskGroup]-notional)
	}
	l.marketExposure[market] = math.Max(0, l.marketExposure[market]-notional)
	ExposureReleasedTotal.Add(notional)
}
