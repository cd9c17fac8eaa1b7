package calibrator

import "errors"

// ErrEmptyTrainingSet is returned by Fit when no bucket produced a model.
var ErrEmptyTrainingSet = errors.New("calibrator: no bucket models were fitted")

// ErrNotFitted is returned by Transform when called before Fit.
var ErrNotFitted = errors.New("calibrator: not fitted")
