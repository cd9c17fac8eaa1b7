// Package feature joins raw trade prints against market metadata,
// resolutions, and order-book/price history to produce the candidate
// trade rows the engine consumes, per spec §6's feature-join contract.
package feature

import (
	"sort"
	"time"

	"github.com/mselser95/polymarket-backtest/pkg/types"
)

// LabelConfig controls the look-ahead cut applied before labels attach.
type LabelConfig struct {
	TimeCutHours float64
}

// DefaultLabelConfig mirrors the reference implementation's default.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{TimeCutHours: 4}
}

// LabeledTrade is a raw trade with its settlement outcome attached.
type LabeledTrade struct {
	types.Trade
	ResolveTS   time.Time
	DisputeFlag bool
	Outcome     int
}

// ApplyTimeCut drops any trade within config.TimeCutHours of its
// resolve_ts, preventing the feature join from leaking post-cutoff
// information into training or test rows.
func ApplyTimeCut(trades []types.Trade, resolutions []types.Resolution, config LabelConfig) ([]types.Trade, error) {
	resolveByCondition := make(map[string]time.Time, len(resolutions))
	for _, r := range resolutions {
		resolveByCondition[r.ConditionID] = r.ResolveTS
	}

	cut := time.Duration(config.TimeCutHours * float64(time.Hour))

	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		resolveTS, ok := resolveByCondition[t.ConditionID]
		if !ok {
			return nil, ErrMissingResolution
		}
		cutoff := resolveTS.Add(-cut)
		if !t.Timestamp.After(cutoff) {
			out = append(out, t)
		}
	}
	return out, nil
}

// AttachLabels applies the look-ahead cut and appends the binary
// resolution outcome (1 for "yes", 0 for "no") to each surviving trade,
// sorted stably by timestamp.
func AttachLabels(trades []types.Trade, resolutions []types.Resolution, config LabelConfig) ([]LabeledTrade, error) {
	filtered, err := ApplyTimeCut(trades, resolutions, config)
	if err != nil {
		return nil, err
	}

	resByCondition := make(map[string]types.Resolution, len(resolutions))
	for _, r := range resolutions {
		resByCondition[r.ConditionID] = r
	}

	out := make([]LabeledTrade, 0, len(filtered))
	for _, t := range filtered {
		res, ok := resByCondition[t.ConditionID]
		if !ok {
			return nil, ErrMissingResolution
		}

		var outcome int
		switch res.ResolvedOutcome {
		case "yes":
			outcome = 1
		case "no":
			outcome = 0
		default:
			return nil, ErrUnknownOutcome
		}

		out = append(out, LabeledTrade{
			Trade:       t,
			ResolveTS:   res.ResolveTS,
			DisputeFlag: res.DisputeFlag,
			Outcome:     outcome,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
