package engine

import (
	"time"

	"github.com/mselser95/polymarket-backtest/internal/costmodel"
	"github.com/mselser95/polymarket-backtest/pkg/types"
)

// Config holds the engine-level backtest parameters.
type Config struct {
	InitialCapital float64
	MinEV          float64
}

// Split is one walk-forward window: train on rows up to TrainEnd, test on
// rows strictly after TrainEnd up to and including TestEnd.
type Split struct {
	TrainEnd time.Time `json:"train_end"`
	TestEnd  time.Time `json:"test_end"`
}

// BookLookup resolves a (token_id, timestamp) pair to an order-book
// snapshot. It is read-only for the duration of Run.
type BookLookup interface {
	Snapshot(tokenID string, timestamp time.Time) (types.BookSnapshot, bool)
}

// MapBookLookup is a dense in-memory BookLookup keyed by (token_id, timestamp).
type MapBookLookup map[types.BookKey]types.BookSnapshot

// Snapshot implements BookLookup.
func (m MapBookLookup) Snapshot(tokenID string, timestamp time.Time) (types.BookSnapshot, bool) {
	snap, ok := m[types.BookKey{TokenID: tokenID, Timestamp: timestamp}]
	return snap, ok
}

// openPosition is a filled candidate still awaiting settlement.
type openPosition struct {
	trade     types.CandidateTrade
	breakdown costmodel.CostBreakdown
	qHat      float64
	qLower    float64
	evLower   float64
}

// TradeResult is a settled trade, the engine output contract (spec §6).
type TradeResult struct {
	TradeID        string
	ConditionID    string
	Timestamp      time.Time
	ResolveTS      time.Time
	Category       string
	NegRiskGroup   string
	Price          float64
	ExecutionPrice float64
	Shares         float64
	Notional       float64
	QHat           float64
	QLower         float64
	EVLower        float64
	TotalCost      float64
	Payout         float64
	PnL            float64
}

// CapitalHistoryPoint is one (timestamp, capital) sample.
type CapitalHistoryPoint struct {
	Timestamp time.Time
	Capital   float64
}

// Result is the full output of a backtest run.
type Result struct {
	RunID          string
	CapitalHistory []CapitalHistoryPoint
	ExecutedTrades []TradeResult
	EndingCapital  float64
}
