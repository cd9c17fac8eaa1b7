package feature

import (
	"sort"
	"time"

	"github.com/mselser95/polymarket-backtest/pkg/types"
)

// ComputeFeatures joins labeled trades against market metadata to
// produce the time-ordered candidate-trade stream the engine consumes.
// Rows whose derived time_to_event_days is non-positive (the trade
// happened at or after the market's end date) are dropped, not failed.
func ComputeFeatures(trades []LabeledTrade, markets []types.Market) ([]types.CandidateTrade, error) {
	marketByCondition := make(map[string]types.Market, len(markets))
	for _, m := range markets {
		marketByCondition[m.ConditionID] = m
	}

	out := make([]types.CandidateTrade, 0, len(trades))
	for _, t := range trades {
		market, ok := marketByCondition[t.ConditionID]
		if !ok {
			return nil, ErrMissingMarket
		}

		timeToEventDays := market.EndDate.Sub(t.Timestamp).Hours() / 24
		if timeToEventDays <= 0 {
			continue
		}

		out = append(out, types.CandidateTrade{
			TradeID:         t.TradeID,
			ConditionID:     t.ConditionID,
			TokenID:         t.TokenID,
			Timestamp:       t.Timestamp,
			ResolveTS:       t.ResolveTS,
			Price:           t.Price,
			TimeToEventDays: timeToEventDays,
			Bucket:          types.AssignTauBucket(timeToEventDays),
			Category:        market.Category,
			NegRiskGroup:    market.NegRiskGroup,
			Outcome:         t.Outcome,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// DiagnosticRow supplements the core candidate-trade stream with the
// order-book and price-history derived features the calibration report
// uses to explain model behavior (spread, relative spread, price versus
// midpoint, momentum against the last observed trade-independent price).
type DiagnosticRow struct {
	TradeID        string
	BestAsk        float64
	BestBid        float64
	Spread         float64
	RelativeSpread float64
	AskDepth       float64
	BidDepth       float64
	PriceVsMid     float64
	PrevPrice      float64
	PriceChange    float64
}

// ComputeDiagnosticFeatures joins candidates against order-book
// snapshots and the price-history table to compute spread, depth, and
// momentum features. Fails with ErrMissingBookSnapshot if any candidate
// has no matching (token_id, timestamp) snapshot with both sides quoted.
func ComputeDiagnosticFeatures(candidates []types.CandidateTrade, books []types.BookSnapshot, prices []types.PriceObservation) ([]DiagnosticRow, error) {
	type bookKey struct {
		tokenID string
		ts      int64
	}
	bookByKey := make(map[bookKey]types.BookSnapshot, len(books))
	for _, b := range books {
		bookByKey[bookKey{b.TokenID, b.Timestamp.UnixNano()}] = b
	}

	pricesByToken := make(map[string][]types.PriceObservation)
	for _, p := range prices {
		pricesByToken[p.TokenID] = append(pricesByToken[p.TokenID], p)
	}
	for token := range pricesByToken {
		list := pricesByToken[token]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp.Before(list[j].Timestamp) })
		pricesByToken[token] = list
	}

	out := make([]DiagnosticRow, 0, len(candidates))
	for _, c := range candidates {
		snap, ok := bookByKey[bookKey{c.TokenID, c.Timestamp.UnixNano()}]
		if !ok {
			return nil, ErrMissingBookSnapshot
		}

		bestAsk, hasAsk := snap.BestAsk()
		bestBid, hasBid := bestBidLevel(snap)
		if !hasAsk || !hasBid {
			return nil, ErrMissingBookSnapshot
		}

		spread := bestAsk.Price - bestBid.Price
		midpoint := (bestAsk.Price + bestBid.Price) / 2
		relativeSpread := 0.0
		if midpoint != 0 {
			relativeSpread = spread / midpoint
		}

		prevPrice := midpoint - 0.01
		if list, ok := pricesByToken[c.TokenID]; ok {
			prevPrice = lastPriceBefore(list, c.Timestamp, prevPrice)
		}

		out = append(out, DiagnosticRow{
			TradeID:        c.TradeID,
			BestAsk:        bestAsk.Price,
			BestBid:        bestBid.Price,
			Spread:         spread,
			RelativeSpread: relativeSpread,
			AskDepth:       snap.AskLiquidity(),
			BidDepth:       bidLiquidity(snap),
			PriceVsMid:     c.Price - midpoint,
			PrevPrice:      prevPrice,
			PriceChange:    c.Price - prevPrice,
		})
	}
	return out, nil
}

func bestBidLevel(s types.BookSnapshot) (types.BookLevel, bool) {
	var best types.BookLevel
	found := false
	for _, lvl := range s.Levels {
		if lvl.Side != types.Bid {
			continue
		}
		if !found || lvl.Level < best.Level {
			best = lvl
			found = true
		}
	}
	return best, found
}

func bidLiquidity(s types.BookSnapshot) float64 {
	total := 0.0
	for _, lvl := range s.Levels {
		if lvl.Side == types.Bid {
			total += lvl.Size
		}
	}
	return total
}

// lastPriceBefore returns the most recent observation strictly before
// ts (an as-of backward join without exact-match), or fallback if none.
func lastPriceBefore(sorted []types.PriceObservation, ts time.Time, fallback float64) float64 {
	result := fallback
	for _, p := range sorted {
		if !p.Timestamp.Before(ts) {
			break
		}
		result = p.Price
	}
	return result
}
