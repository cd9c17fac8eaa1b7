package feature

import "errors"

// ErrMissingResolution is returned when a trade's condition_id has no
// matching resolution row.
var ErrMissingResolution = errors.New("feature: missing resolution for condition_id")

// ErrUnknownOutcome is returned when a resolution's resolved_outcome is
// neither "yes" nor "no".
var ErrUnknownOutcome = errors.New("feature: unknown resolved_outcome")

// ErrMissingMarket is returned when a trade's condition_id has no
// matching market row.
var ErrMissingMarket = errors.New("feature: missing market metadata for condition_id")

// ErrMissingBookSnapshot is returned when a trade has no matching
// order-book snapshot at (token_id, timestamp).
var ErrMissingBookSnapshot = errors.New("feature: missing order-book snapshot for trade")
