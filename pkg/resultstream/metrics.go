package resultstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveClients tracks currently connected dashboard clients.
	ActiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_backtest_resultstream_active_clients",
		Help: "Number of connected dashboard WebSocket clients",
	})

	// TicksBroadcastTotal tracks events (capital ticks, trade fills, run
	// completion) delivered to clients.
	TicksBroadcastTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_backtest_resultstream_ticks_broadcast_total",
		Help: "Total number of result events broadcast",
	})

	// TicksDroppedTotal tracks events dropped because a client's buffer was full.
	TicksDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_backtest_resultstream_ticks_dropped_total",
			Help: "Total number of result events dropped due to a full client buffer",
		},
		[]string{"reason"},
	)
)
