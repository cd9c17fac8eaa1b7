package risk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExposureRegisteredTotal tracks cumulative notional registered across all axes.
	ExposureRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_backtest_risk_exposure_registered_total",
		Help: "Cumulative notional registered against the exposure ledger",
	})

	// ExposureReleasedTotal tracks cumulative notional released across all axes.
	ExposureReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_backtest_risk_exposure_released_total",
		Help: "Cumulative notional released from the exposure ledger",
	})
)
