package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RowsLoadedTotal counts decoded rows, labeled by table.
var RowsLoadedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "polymarket_backtest_ingest_rows_loaded_total",
	Help: "Rows successfully decoded per input table",
}, []string{"table"})
