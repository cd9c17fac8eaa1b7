package types

import "time"

// CandidateTrade is a single row of the feature-join contract: one
// candidate trade the backtest engine may choose to act on.
type CandidateTrade struct {
	TradeID         string    `json:"trade_id"`
	ConditionID     string    `json:"condition_id"`
	TokenID         string    `json:"token_id"`
	Timestamp       time.Time `json:"timestamp"`
	ResolveTS       time.Time `json:"resolve_ts"`
	Price           float64   `json:"price"`
	TimeToEventDays float64   `json:"time_to_event_days"`
	Bucket          TauBucket `json:"-"`
	Category        string    `json:"category,omitempty"`
	NegRiskGroup    string    `json:"neg_risk_group,omitempty"`
	Outcome         int       `json:"outcome"`
}

// Trade is a raw trade print as ingested from the `trades` table (spec §6),
// before market metadata and resolution labels are joined on.
type Trade struct {
	TradeID     string    `json:"trade_id"`
	TokenID     string    `json:"token_id"`
	ConditionID string    `json:"condition_id"`
	Timestamp   time.Time `json:"timestamp"`
	Price       float64   `json:"price"`
	Size        float64   `json:"size"`
}
