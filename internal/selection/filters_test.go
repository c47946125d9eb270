package selection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/marketdata"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// filterInput builds a five-day January window with the roll-over on
// Jan 8. A is a healthy stock, B is weak on every gate.
func filterInput(t *testing.T) Input {
	t.Helper()

	dates := []time.Time{
		day(2025, 1, 6), day(2025, 1, 7), day(2025, 1, 8),
		day(2025, 1, 9), day(2025, 1, 10),
	}
	symbols := []string{"A", "B"}

	prices, err := marketdata.NewMatrix(dates, symbols, map[string][]float64{
		"A": {120, 125, 130, 131, 132},
		"B": {130, 100, 80, 82, 81},
	})
	require.NoError(t, err)

	volumes, err := marketdata.NewMatrix(dates, symbols, map[string][]float64{
		"A": {1000, 1000, 1000, 1000, 1000},
		"B": {1, 1, 1, 1, 1},
	})
	require.NoError(t, err)

	ema, err := marketdata.NewMatrix(dates, symbols, map[string][]float64{
		"A": {110, 112, 114, 116, 118},
		"B": {120, 118, 114, 110, 106},
	})
	require.NoError(t, err)

	return Input{
		Prices:    prices,
		Volumes:   volumes,
		EMASeries: []*marketdata.Matrix{ema},
		Dates: contracts.TradingDates{
			First:    day(2025, 1, 9),
			Last:     day(2025, 1, 10),
			RollOver: day(2025, 1, 8),
		},
	}
}

func TestTrendFilter(t *testing.T) {
	in := filterInput(t)
	f := NewTrendFilter()

	ok, err := f.Passes(in, "A")
	require.NoError(t, err)
	assert.True(t, ok, "130 above its 114 EMA")

	ok, err = f.Passes(in, "B")
	require.NoError(t, err)
	assert.False(t, ok, "80 below its 114 EMA")
}

func TestTrendFilter_MissingRollOverInEMA(t *testing.T) {
	in := filterInput(t)

	// An EMA series that does not cover the roll-over date
	short, err := marketdata.NewMatrix(
		[]time.Time{day(2025, 1, 9), day(2025, 1, 10)},
		[]string{"A", "B"},
		map[string][]float64{"A": {116, 118}, "B": {110, 106}},
	)
	require.NoError(t, err)
	in.EMASeries = []*marketdata.Matrix{short}

	_, err = NewTrendFilter().Passes(in, "A")
	require.Error(t, err)

	var missing *contracts.MissingDateError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "ema", missing.Series)
}

func TestHighProximityFilter(t *testing.T) {
	in := filterInput(t)
	f := NewHighProximityFilter()

	ok, err := f.Passes(in, "A")
	require.NoError(t, err)
	assert.True(t, ok, "130 is the window high itself")

	// B's window high is 130; 80 < 130*0.7
	ok, err = f.Passes(in, "B")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLiquidityFilter(t *testing.T) {
	in := filterInput(t)
	f := NewLiquidityFilter(50_000)

	ok, err := f.Passes(in, "A")
	require.NoError(t, err)
	assert.True(t, ok, "mean traded value well above 50k")

	ok, err = f.Passes(in, "B")
	require.NoError(t, err)
	assert.False(t, ok, "mean traded value around 95")
}

func TestLiquidityFilter_DefaultThreshold(t *testing.T) {
	f := NewLiquidityFilter(0)
	assert.Equal(t, 10_000_000.0, f.MinMonthlyValue)
}
