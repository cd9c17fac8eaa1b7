package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMarkets(t *testing.T) {
	input := strings.Join([]string{
		`{"condition_id":"c1","slug":"will-it-rain","category":"weather","end_date":"2026-08-01T00:00:00Z","clob_token_yes":"tok-1","neg_risk_group":"G"}`,
		``,
		`{"condition_id":"c2","slug":"election","end_date":"2026-11-03T00:00:00Z","clob_token_yes":"tok-2"}`,
	}, "\n")

	markets, err := LoadMarkets(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "c1", markets[0].ConditionID)
	assert.Equal(t, "G", markets[0].NegRiskGroup)
	assert.Empty(t, markets[1].NegRiskGroup)
}

func TestLoadMarkets_MissingColumn(t *testing.T) {
	_, err := LoadMarkets(strings.NewReader(`{"condition_id":"c1"}`))
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadResolutions(t *testing.T) {
	input := `{"condition_id":"c1","resolved_outcome":"yes","resolve_ts":"2026-08-01T00:00:00Z","dispute_flag":false}`
	res, err := LoadResolutions(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "yes", res[0].ResolvedOutcome)
}

func TestLoadResolutions_InvalidOutcome(t *testing.T) {
	input := `{"condition_id":"c1","resolved_outcome":"maybe","resolve_ts":"2026-08-01T00:00:00Z"}`
	_, err := LoadResolutions(strings.NewReader(input))
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadTrades(t *testing.T) {
	input := `{"trade_id":"t1","token_id":"tok-1","condition_id":"c1","timestamp":"2026-07-20T00:00:00Z","price":0.6,"size":10}`
	trades, err := LoadTrades(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, 0.6, trades[0].Price)
}

func TestLoadBooks_GroupsByTokenAndTimestamp(t *testing.T) {
	input := strings.Join([]string{
		`{"token_id":"tok-1","timestamp":"2026-07-20T00:00:00Z","side":"ask","level":1,"price":0.61,"size":100}`,
		`{"token_id":"tok-1","timestamp":"2026-07-20T00:00:00Z","side":"ask","level":2,"price":0.62,"size":50}`,
		`{"token_id":"tok-1","timestamp":"2026-07-20T00:00:00Z","side":"bid","level":1,"price":0.59,"size":80}`,
		`{"token_id":"tok-1","timestamp":"2026-07-21T00:00:00Z","side":"ask","level":1,"price":0.63,"size":100}`,
	}, "\n")

	books, err := LoadBooks(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Len(t, books[0].Levels, 3)
	assert.Len(t, books[1].Levels, 1)
}

func TestLoadBooks_InvalidSide(t *testing.T) {
	_, err := LoadBooks(strings.NewReader(`{"token_id":"tok-1","timestamp":"2026-07-20T00:00:00Z","side":"mid","level":1,"price":0.6,"size":1}`))
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadPrices(t *testing.T) {
	input := `{"token_id":"tok-1","timestamp":"2026-07-20T00:00:00Z","price":0.6}`
	prices, err := LoadPrices(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, prices, 1)
}
