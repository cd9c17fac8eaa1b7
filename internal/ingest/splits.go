package ingest

import (
	"io"

	"github.com/mselser95/polymarket-backtest/internal/engine"
)

// LoadSplits decodes the walk-forward split schedule: one
// {train_end, test_end} pair per line.
func LoadSplits(r io.Reader) ([]engine.Split, error) {
	rows, err := decodeLines(r, func(s engine.Split) error {
		if s.TrainEnd.IsZero() || s.TestEnd.IsZero() {
			return ErrMissingColumn
		}
		return nil
	})
	if err == nil {
		RowsLoadedTotal.WithLabelValues("splits").Add(float64(len(rows)))
	}
	return rows, err
}
