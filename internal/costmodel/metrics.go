package costmodel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FillsTotal tracks successful VWAP fills.
	FillsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_backtest_costmodel_fills_total",
		Help: "Total number of successful fills estimated",
	})

	// FilledSizeTotal tracks cumulative filled share size.
	FilledSizeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_backtest_costmodel_filled_size_total",
		Help: "Cumulative filled size across all estimated fills",
	})
)
