package ingest

import "errors"

// ErrMissingColumn is returned when a required field is absent or empty
// on a decoded row, or holds a value outside its allowed set.
var ErrMissingColumn = errors.New("ingest: missing required column")
