package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/polymarket-backtest/internal/calibrator"
	"github.com/mselser95/polymarket-backtest/internal/costmodel"
	"github.com/mselser95/polymarket-backtest/internal/risk"
	"github.com/mselser95/polymarket-backtest/pkg/types"
)

var day = 24 * time.Hour

// confidentTrainingRows builds a training set heavily concentrated at
// trainedPrice (all wins) plus a couple of bracketing points, so the
// isotonic fit puts q_hat at 1.0 and the Jeffreys lower bound for
// trainedPrice clears any reasonable entry price well under 1.0.
func confidentTrainingRows(trainedPrice float64, bucket types.TauBucket) []calibrator.TrainingRow {
	rows := []calibrator.TrainingRow{
		{Price: trainedPrice - 0.1, Outcome: 0, Bucket: bucket},
		{Price: trainedPrice + 0.2, Outcome: 1, Bucket: bucket},
	}
	for i := 0; i < 50; i++ {
		rows = append(rows, calibrator.TrainingRow{Price: trainedPrice, Outcome: 1, Bucket: bucket})
	}
	return rows
}

func candidate(tradeID string, ts, resolveTS time.Time, price float64, outcome int, tokenID string) types.CandidateTrade {
	return types.CandidateTrade{
		TradeID:         tradeID,
		ConditionID:     tradeID,
		TokenID:         tokenID,
		Timestamp:       ts,
		ResolveTS:       resolveTS,
		Price:           price,
		TimeToEventDays: 2,
		Bucket:          types.Bucket1To3D,
		Outcome:         outcome,
	}
}

func askBook(tokenID string, ts time.Time, price, size float64) types.BookSnapshot {
	return types.BookSnapshot{
		TokenID:   tokenID,
		Timestamp: ts,
		Levels:    []types.BookLevel{{Side: types.Ask, Level: 1, Price: price, Size: size}},
	}
}

func embedTraining(rows []calibrator.TrainingRow, ts time.Time, tokenID string) []types.CandidateTrade {
	out := make([]types.CandidateTrade, len(rows))
	for i, r := range rows {
		out[i] = types.CandidateTrade{
			TradeID:         "train",
			ConditionID:     "train",
			TokenID:         tokenID,
			Timestamp:       ts,
			ResolveTS:       ts,
			Price:           r.Price,
			TimeToEventDays: 2,
			Bucket:          r.Bucket,
			Outcome:         r.Outcome,
		}
	}
	return out
}

func TestEngine_E1_HappyPath(t *testing.T) {
	trainEnd := time.Unix(0, 0).UTC()
	testEnd := trainEnd.Add(30 * day)

	trainTS := trainEnd.Add(-1 * day)
	testTS := trainEnd.Add(1 * day)
	resolveTS := testTS.Add(1 * day)

	rows := embedTraining(confidentTrainingRows(0.70, types.Bucket1To3D), trainTS, "tok-train")
	cand := candidate("A", testTS, resolveTS, 0.70, 1, "tok-a")
	rows = append(rows, cand)

	books := MapBookLookup{
		{TokenID: "tok-a", Timestamp: testTS}: askBook("tok-a", testTS, 0.71, 1_000_000),
	}

	e := New(calibrator.DefaultConfig(), costmodel.New(0, 0, 0), risk.DefaultConfig(),
		Config{InitialCapital: 100_000, MinEV: 0}, nil)

	result, err := e.Run(context.Background(), rows, []Split{{TrainEnd: trainEnd, TestEnd: testEnd}}, books)
	require.NoError(t, err)

	require.Len(t, result.ExecutedTrades, 1)
	tr := result.ExecutedTrades[0]
	assert.Equal(t, "A", tr.TradeID)
	assert.GreaterOrEqual(t, tr.QHat, 0.70)
	assert.Greater(t, tr.PnL, 0.0)
	assert.InDelta(t, result.EndingCapital, 100_000+tr.PnL, 1e-6)
}

func TestEngine_E2_EVGateRejects(t *testing.T) {
	trainEnd := time.Unix(0, 0).UTC()
	testEnd := trainEnd.Add(30 * day)

	trainTS := trainEnd.Add(-1 * day)
	testTS := trainEnd.Add(1 * day)
	resolveTS := testTS.Add(1 * day)

	rows := embedTraining(confidentTrainingRows(0.70, types.Bucket1To3D), trainTS, "tok-train")
	cand := candidate("A", testTS, resolveTS, 0.70, 1, "tok-a")
	rows = append(rows, cand)

	// Thin liquidity keeps the fill tiny so a flat $1000 gas cost per
	// fill overwhelms any plausible per-share edge.
	books := MapBookLookup{
		{TokenID: "tok-a", Timestamp: testTS}: askBook("tok-a", testTS, 0.71, 5),
	}

	e := New(calibrator.DefaultConfig(), costmodel.New(0, 1000, 0), risk.DefaultConfig(),
		Config{InitialCapital: 100_000, MinEV: 0}, nil)

	result, err := e.Run(context.Background(), rows, []Split{{TrainEnd: trainEnd, TestEnd: testEnd}}, books)
	require.NoError(t, err)

	assert.Empty(t, result.ExecutedTrades)
	assert.InDelta(t, 100_000.0, result.EndingCapital, 1e-6)
}

func TestEngine_E3_ExposureCapSizesDown(t *testing.T) {
	trainEnd := time.Unix(0, 0).UTC()
	testEnd := trainEnd.Add(30 * day)

	trainTS := trainEnd.Add(-1 * day)
	testTS1 := trainEnd.Add(1 * day)
	testTS2 := trainEnd.Add(2 * day)
	resolveTS := testEnd.Add(365 * day)

	rows := embedTraining(confidentTrainingRows(0.5, types.Bucket1To3D), trainTS, "tok-train")
	candA := candidate("A", testTS1, resolveTS, 0.5, 1, "tok-a")
	candA.NegRiskGroup = "G"
	candA.ConditionID = "m1"
	candB := candidate("B", testTS2, resolveTS, 0.5, 1, "tok-b")
	candB.NegRiskGroup = "G"
	candB.ConditionID = "m2"
	rows = append(rows, candA, candB)

	books := MapBookLookup{
		{TokenID: "tok-a", Timestamp: testTS1}: askBook("tok-a", testTS1, 0.5, 1_000_000),
		{TokenID: "tok-b", Timestamp: testTS2}: askBook("tok-b", testTS2, 0.5, 1_000_000),
	}

	riskConfig := risk.Config{
		KellyLambda: 100,
		MaxFraction: 0.3,
		CategoryCap: 1,
		NegRiskCap:  0.5,
		MarketCap:   1,
	}
	e := New(calibrator.DefaultConfig(), costmodel.New(0, 0, 0), riskConfig,
		Config{InitialCapital: 100_000, MinEV: -1}, nil)

	result, err := e.Run(context.Background(), rows, []Split{{TrainEnd: trainEnd, TestEnd: testEnd}}, books)
	require.NoError(t, err)
	require.Len(t, result.ExecutedTrades, 2)

	byID := map[string]TradeResult{}
	for _, tr := range result.ExecutedTrades {
		byID[tr.TradeID] = tr
	}

	assert.InDelta(t, 30_000.0, byID["A"].Notional, 1e-6)
	assert.InDelta(t, 5_000.0, byID["B"].Notional, 1e-6)
	assert.Less(t, byID["B"].Notional, byID["A"].Notional)
}

func TestEngine_E4_SettleBeforeOpen(t *testing.T) {
	trainEnd := time.Unix(0, 0).UTC()
	testEnd := trainEnd.Add(30 * day)

	trainTS := trainEnd.Add(-1 * day)
	t0 := trainEnd.Add(1 * day)
	resolveA := t0.Add(10 * day)

	rows := embedTraining(confidentTrainingRows(0.70, types.Bucket1To3D), trainTS, "tok-train")
	candA := candidate("A", t0, resolveA, 0.70, 1, "tok-a")
	candB := candidate("B", resolveA, testEnd, 0.70, 0, "tok-b") // no book snapshot: soft skip
	rows = append(rows, candA, candB)

	books := MapBookLookup{
		{TokenID: "tok-a", Timestamp: t0}: askBook("tok-a", t0, 0.71, 1_000_000),
	}

	riskConfig := risk.Config{KellyLambda: 100, MaxFraction: 0.2, CategoryCap: 1, NegRiskCap: 1, MarketCap: 1}
	e := New(calibrator.DefaultConfig(), costmodel.New(0, 0, 0), riskConfig,
		Config{InitialCapital: 100_000, MinEV: -1}, nil)

	result, err := e.Run(context.Background(), rows, []Split{{TrainEnd: trainEnd, TestEnd: testEnd}}, books)
	require.NoError(t, err)

	require.Len(t, result.ExecutedTrades, 1)
	trA := result.ExecutedTrades[0]
	assert.Equal(t, "A", trA.TradeID)

	wantNotional := 0.2 * 100_000.0
	wantPayout := trA.Shares * 1.0
	assert.InDelta(t, wantNotional, trA.Notional, 1e-6)
	assert.InDelta(t, wantPayout, trA.Payout, 1e-6)
	assert.InDelta(t, 100_000.0-wantNotional+wantPayout, result.EndingCapital, 1e-6)

	// A settlement point (credited capital) must appear before the
	// force-settle end-of-run point, and must reflect the payout.
	var sawCredit bool
	for _, h := range result.CapitalHistory {
		if h.Timestamp.Equal(resolveA) {
			sawCredit = true
			assert.InDelta(t, 100_000.0-wantNotional+wantPayout, h.Capital, 1e-6)
		}
	}
	assert.True(t, sawCredit, "expected a capital-history point at A's resolve_ts")
}

func TestEngine_E5_NoLiquiditySkip(t *testing.T) {
	trainEnd := time.Unix(0, 0).UTC()
	testEnd := trainEnd.Add(30 * day)

	trainTS := trainEnd.Add(-1 * day)
	testTS := trainEnd.Add(1 * day)

	rows := embedTraining(confidentTrainingRows(0.70, types.Bucket1To3D), trainTS, "tok-train")
	cand := candidate("A", testTS, testEnd.Add(1*day), 0.70, 1, "tok-a")
	rows = append(rows, cand)

	// No entry in books for tok-a/testTS: soft skip, no error.
	books := MapBookLookup{}

	e := New(calibrator.DefaultConfig(), costmodel.New(0, 0, 0), risk.DefaultConfig(),
		Config{InitialCapital: 100_000, MinEV: 0}, nil)

	result, err := e.Run(context.Background(), rows, []Split{{TrainEnd: trainEnd, TestEnd: testEnd}}, books)
	require.NoError(t, err)
	assert.Empty(t, result.ExecutedTrades)
	assert.InDelta(t, 100_000.0, result.EndingCapital, 1e-6)
}

func TestEngine_E6_ForceSettleAtEnd(t *testing.T) {
	trainEnd := time.Unix(0, 0).UTC()
	testEnd := trainEnd.Add(30 * day)

	trainTS := trainEnd.Add(-1 * day)
	testTS := trainEnd.Add(1 * day)
	resolveTS := testEnd.Add(365 * day) // well beyond the only split's test window

	rows := embedTraining(confidentTrainingRows(0.70, types.Bucket1To3D), trainTS, "tok-train")
	cand := candidate("A", testTS, resolveTS, 0.70, 1, "tok-a")
	rows = append(rows, cand)

	books := MapBookLookup{
		{TokenID: "tok-a", Timestamp: testTS}: askBook("tok-a", testTS, 0.71, 1_000_000),
	}

	e := New(calibrator.DefaultConfig(), costmodel.New(0, 0, 0), risk.DefaultConfig(),
		Config{InitialCapital: 100_000, MinEV: 0}, nil)

	result, err := e.Run(context.Background(), rows, []Split{{TrainEnd: trainEnd, TestEnd: testEnd}}, books)
	require.NoError(t, err)

	require.Len(t, result.ExecutedTrades, 1)
	tr := result.ExecutedTrades[0]
	assert.Equal(t, resolveTS, tr.ResolveTS)

	wantCapital := 100_000.0 - tr.Notional - tr.TotalCost + tr.Payout
	assert.InDelta(t, wantCapital, result.EndingCapital, 1e-6)
}

func TestEngine_CapitalConservation(t *testing.T) {
	trainEnd := time.Unix(0, 0).UTC()
	testEnd := trainEnd.Add(30 * day)

	trainTS := trainEnd.Add(-1 * day)
	testTS := trainEnd.Add(1 * day)
	resolveTS := testTS.Add(1 * day)

	rows := embedTraining(confidentTrainingRows(0.70, types.Bucket1To3D), trainTS, "tok-train")
	cand := candidate("A", testTS, resolveTS, 0.70, 1, "tok-a")
	rows = append(rows, cand)

	books := MapBookLookup{
		{TokenID: "tok-a", Timestamp: testTS}: askBook("tok-a", testTS, 0.71, 1_000_000),
	}

	e := New(calibrator.DefaultConfig(), costmodel.New(0, 0, 0), risk.DefaultConfig(),
		Config{InitialCapital: 100_000, MinEV: 0}, nil)

	result, err := e.Run(context.Background(), rows, []Split{{TrainEnd: trainEnd, TestEnd: testEnd}}, books)
	require.NoError(t, err)

	sumPnL := 0.0
	for _, tr := range result.ExecutedTrades {
		sumPnL += tr.PnL
	}
	assert.InDelta(t, 100_000.0+sumPnL, result.EndingCapital, 1e-6)

	for _, h := range result.CapitalHistory {
		assert.GreaterOrEqual(t, h.Capital, 0.0)
	}
}

func TestEngine_Run_PropagatesEmptyTrainingSet(t *testing.T) {
	trainEnd := time.Unix(0, 0).UTC()
	testEnd := trainEnd.Add(30 * day)
	testTS := trainEnd.Add(1 * day)

	// No rows at all before trainEnd: the split's train window is empty,
	// so Fit returns ErrEmptyTrainingSet, which Run must propagate.
	cand := candidate("A", testTS, testEnd.Add(1*day), 0.70, 1, "tok-a")

	e := New(calibrator.DefaultConfig(), costmodel.New(0, 0, 0), risk.DefaultConfig(),
		Config{InitialCapital: 100_000, MinEV: 0}, nil)

	_, err := e.Run(context.Background(), []types.CandidateTrade{cand}, []Split{{TrainEnd: trainEnd, TestEnd: testEnd}}, MapBookLookup{})
	require.ErrorIs(t, err, calibrator.ErrEmptyTrainingSet)
}

func TestEngine_Run_CancelledContext(t *testing.T) {
	trainEnd := time.Unix(0, 0).UTC()
	testEnd := trainEnd.Add(30 * day)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(calibrator.DefaultConfig(), costmodel.New(0, 0, 0), risk.DefaultConfig(),
		Config{InitialCapital: 100_000, MinEV: 0}, nil)

	_, err := e.Run(ctx, nil, []Split{{TrainEnd: trainEnd, TestEnd: testEnd}}, MapBookLookup{})
	require.ErrorIs(t, err, context.Canceled)
}
