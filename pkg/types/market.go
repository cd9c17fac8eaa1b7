package types

import "time"

// Market is a row of the `markets` input table (spec §6).
type Market struct {
	ConditionID  string    `json:"condition_id"`
	Slug         string    `json:"slug"`
	Category     string    `json:"category,omitempty"`
	EndDate      time.Time `json:"end_date"`
	ClobTokenYes string    `json:"clob_token_yes"`
	NegRiskGroup string    `json:"neg_risk_group,omitempty"`
}

// Resolution is a row of the `resolutions` input table (spec §6).
type Resolution struct {
	ConditionID     string    `json:"condition_id"`
	ResolvedOutcome string    `json:"resolved_outcome"` // "yes" or "no"
	ResolveTS       time.Time `json:"resolve_ts"`
	DisputeFlag     bool      `json:"dispute_flag"`
}

// PriceObservation is a row of the `prices` input table (spec §6).
type PriceObservation struct {
	TokenID   string    `json:"token_id"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}
