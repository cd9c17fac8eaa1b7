package calibrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FitsTotal tracks how many times a calibrator has been fit.
	FitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_backtest_calibrator_fits_total",
		Help: "Total number of calibrator fits performed",
	})

	// TransformsTotal tracks how many rows have been transformed.
	TransformsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_backtest_calibrator_transforms_total",
		Help: "Total number of rows transformed by the calibrator",
	})
)
