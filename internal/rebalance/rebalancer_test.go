package rebalance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/marketdata"
	"github.com/quantmill/momentum/pkg/logger"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func matrix(t *testing.T, dates []time.Time, symbols []string, cols map[string][]float64) *marketdata.Matrix {
	t.Helper()
	m, err := marketdata.NewMatrix(dates, symbols, cols)
	require.NoError(t, err)
	return m
}

// janFeb covers two months of trading: Jan 2/15/30 and Feb 3/27.
func janFeb(t *testing.T, cols map[string][]float64) *marketdata.Matrix {
	dates := []time.Time{
		day(2025, 1, 2), day(2025, 1, 15), day(2025, 1, 30),
		day(2025, 2, 3), day(2025, 2, 27),
	}
	symbols := make([]string, 0, len(cols))
	for _, s := range []string{"A", "B", "C"} {
		if _, ok := cols[s]; ok {
			symbols = append(symbols, s)
		}
	}
	return matrix(t, dates, symbols, cols)
}

func janDates() contracts.TradingDates {
	return contracts.TradingDates{
		First:    day(2025, 1, 2),
		Last:     day(2025, 1, 30),
		RollOver: day(2025, 1, 2), // inception
	}
}

func febDates() contracts.TradingDates {
	return contracts.TradingDates{
		First:    day(2025, 2, 3),
		Last:     day(2025, 2, 27),
		RollOver: day(2025, 1, 30),
	}
}

func TestRebalance_Inception(t *testing.T) {
	prices := janFeb(t, map[string][]float64{
		"A": {100, 105, 110, 0, 0},
		"B": {50, 55, 60, 0, 0},
	})
	r := NewRebalancer(Config{}, logger.NewNop())

	p, err := r.Rebalance(prices, contracts.MonthKey{Year: 2025, Month: 1}, janDates(), []string{"A", "B"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, p.Added)
	assert.Empty(t, p.CarryForward)
	assert.Empty(t, p.Removed)

	a, ok := p.HoldingFor("A")
	require.True(t, ok)
	assert.True(t, a.IsNew)
	assert.Equal(t, 100.0, a.InitialPrice)
	assert.Equal(t, 110.0, a.FinalPrice)
	assert.InDelta(t, 10.0, a.ReturnPct, 1e-9)

	b, _ := p.HoldingFor("B")
	assert.InDelta(t, 20.0, b.ReturnPct, 1e-9)
	assert.InDelta(t, 15.0, p.AggregateReturn, 1e-9, "unweighted mean of holding returns")
}

func TestRebalance_OngoingDiff(t *testing.T) {
	prices := janFeb(t, map[string][]float64{
		"A": {100, 105, 110, 112, 121},
		"B": {50, 55, 60, 61, 62},
		"C": {10, 10, 10, 20, 22},
	})
	r := NewRebalancer(Config{}, logger.NewNop())

	prior := &contracts.Portfolio{TopN: []string{"A", "B"}}

	p, err := r.Rebalance(prices, contracts.MonthKey{Year: 2025, Month: 2}, febDates(), []string{"A", "C"}, prior)
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, p.CarryForward)
	assert.Equal(t, []string{"C"}, p.Added)
	assert.Equal(t, []string{"B"}, p.Removed)

	// Carried stock enters at the roll-over close, not February's first
	a, _ := p.HoldingFor("A")
	assert.True(t, a.CarryForward)
	assert.False(t, a.IsNew)
	assert.Equal(t, 110.0, a.InitialPrice)
	assert.InDelta(t, 10.0, a.ReturnPct, 1e-9)

	// New stock enters at the month's first trading date
	c, _ := p.HoldingFor("C")
	assert.True(t, c.IsNew)
	assert.Equal(t, 20.0, c.InitialPrice)
	assert.InDelta(t, 10.0, c.ReturnPct, 1e-9)

	assert.InDelta(t, 10.0, p.AggregateReturn, 1e-9)
}

func TestRebalance_NilPriorInOngoingMonth(t *testing.T) {
	prices := janFeb(t, map[string][]float64{
		"A": {100, 105, 110, 112, 121},
	})
	r := NewRebalancer(Config{}, logger.NewNop())

	p, err := r.Rebalance(prices, contracts.MonthKey{Year: 2025, Month: 2}, febDates(), []string{"A"}, nil)
	require.NoError(t, err)

	// No prior portfolio means everything is added, nothing removed
	assert.Equal(t, []string{"A"}, p.Added)
	assert.Empty(t, p.Removed)

	a, _ := p.HoldingFor("A")
	assert.Equal(t, 112.0, a.InitialPrice, "new entry prices at the first trading date")
}

func TestRebalance_StoppedOutStockReentersAsNew(t *testing.T) {
	prices := janFeb(t, map[string][]float64{
		"A": {100, 105, 110, 112, 121},
	})
	r := NewRebalancer(Config{}, logger.NewNop())

	prior := &contracts.Portfolio{
		TopN:              []string{"A"},
		StopLossTriggered: []string{"A"},
	}

	p, err := r.Rebalance(prices, contracts.MonthKey{Year: 2025, Month: 2}, febDates(), []string{"A"}, prior)
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, p.Added, "stopped-out stock re-enters as new")
	assert.Empty(t, p.CarryForward)

	a, _ := p.HoldingFor("A")
	assert.True(t, a.IsNew)
	assert.Equal(t, 112.0, a.InitialPrice)
}

func TestRebalance_StopLossExitsOnFirstBreach(t *testing.T) {
	dates := []time.Time{
		day(2025, 2, 3), day(2025, 2, 4), day(2025, 2, 5),
		day(2025, 2, 6), day(2025, 2, 7),
	}
	prices := matrix(t, dates, []string{"A"}, map[string][]float64{
		"A": {100, 95, 88, 92, 99},
	})
	td := contracts.TradingDates{First: dates[0], Last: dates[4], RollOver: dates[0]}

	r := NewRebalancer(Config{StopLossPercent: 10}, logger.NewNop())

	p, err := r.Rebalance(prices, contracts.MonthKey{Year: 2025, Month: 2}, td, []string{"A"}, nil)
	require.NoError(t, err)

	a, _ := p.HoldingFor("A")
	require.True(t, a.StopLossHit)
	require.NotNil(t, a.StopLossHitDate)
	assert.Equal(t, day(2025, 2, 5), *a.StopLossHitDate)
	assert.Equal(t, 88.0, a.FinalPrice, "exit at the breach close, recovery ignored")
	assert.InDelta(t, -12.0, a.ReturnPct, 1e-9)
	assert.Equal(t, []string{"A"}, p.StopLossTriggered)
}

func TestRebalance_StopLossSkipsZeroCloses(t *testing.T) {
	dates := []time.Time{
		day(2025, 2, 3), day(2025, 2, 4), day(2025, 2, 5),
		day(2025, 2, 6), day(2025, 2, 7),
	}
	prices := matrix(t, dates, []string{"A"}, map[string][]float64{
		"A": {100, 0, 85, 95, 96},
	})
	td := contracts.TradingDates{First: dates[0], Last: dates[4], RollOver: dates[0]}

	r := NewRebalancer(Config{StopLossPercent: 10}, logger.NewNop())

	p, err := r.Rebalance(prices, contracts.MonthKey{Year: 2025, Month: 2}, td, []string{"A"}, nil)
	require.NoError(t, err)

	a, _ := p.HoldingFor("A")
	require.True(t, a.StopLossHit)
	assert.Equal(t, 85.0, a.FinalPrice, "zero close is a non-trading day, not a breach")
	assert.Equal(t, day(2025, 2, 5), *a.StopLossHitDate)
}

func TestRebalance_StopLossDisabled(t *testing.T) {
	dates := []time.Time{day(2025, 2, 3), day(2025, 2, 4), day(2025, 2, 5)}
	prices := matrix(t, dates, []string{"A"}, map[string][]float64{
		"A": {100, 40, 90},
	})
	td := contracts.TradingDates{First: dates[0], Last: dates[2], RollOver: dates[0]}

	r := NewRebalancer(Config{StopLossPercent: 0}, logger.NewNop())

	p, err := r.Rebalance(prices, contracts.MonthKey{Year: 2025, Month: 2}, td, []string{"A"}, nil)
	require.NoError(t, err)

	a, _ := p.HoldingFor("A")
	assert.False(t, a.StopLossHit)
	assert.Equal(t, 90.0, a.FinalPrice, "rides through the drawdown to month end")
}

func TestRebalance_UnpriceableStockIsReportedNotFatal(t *testing.T) {
	prices := janFeb(t, map[string][]float64{
		"A": {100, 105, 110, 0, 0}, // exit falls back to Jan 30
		"B": {0, 0, 0, 0, 0},
	})
	r := NewRebalancer(Config{}, logger.NewNop())

	p, err := r.Rebalance(prices, contracts.MonthKey{Year: 2025, Month: 1}, janDates(), []string{"A", "B"}, nil)
	require.NoError(t, err)

	assert.Len(t, p.Holdings, 1)
	require.Contains(t, p.Failed, "B")
	assert.InDelta(t, 10.0, p.AggregateReturn, 1e-9, "failed symbols do not enter the mean")
}

func TestRebalance_AllUnpriceableFails(t *testing.T) {
	prices := janFeb(t, map[string][]float64{
		"B": {0, 0, 0, 0, 0},
	})
	r := NewRebalancer(Config{}, logger.NewNop())

	_, err := r.Rebalance(prices, contracts.MonthKey{Year: 2025, Month: 1}, janDates(), []string{"B"}, nil)
	require.Error(t, err)
}

func TestRebalance_EmptySelection(t *testing.T) {
	prices := janFeb(t, map[string][]float64{
		"A": {100, 105, 110, 0, 0},
	})
	r := NewRebalancer(Config{}, logger.NewNop())

	p, err := r.Rebalance(prices, contracts.MonthKey{Year: 2025, Month: 1}, janDates(), nil, nil)
	require.NoError(t, err)

	assert.Zero(t, p.Count())
	assert.Zero(t, p.AggregateReturn)
}
