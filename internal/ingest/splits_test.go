package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSplits(t *testing.T) {
	input := strings.Join([]string{
		`{"train_end":"2026-01-01T00:00:00Z","test_end":"2026-02-01T00:00:00Z"}`,
		`{"train_end":"2026-02-01T00:00:00Z","test_end":"2026-03-01T00:00:00Z"}`,
	}, "\n")

	splits, err := LoadSplits(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.True(t, splits[0].TrainEnd.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, splits[1].TestEnd.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLoadSplits_MissingColumn(t *testing.T) {
	_, err := LoadSplits(strings.NewReader(`{"train_end":"2026-01-01T00:00:00Z"}`))
	require.ErrorIs(t, err, ErrMissingColumn)
}
