package selection

import (
	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/marketdata"
)

// Input bundles the data every filter sees for one month.
type Input struct {
	Prices  *marketdata.Matrix
	Volumes *marketdata.Matrix

	// EMASeries holds the derived trend series (typically one 200-day
	// EMA) used by the trend filter.
	EMASeries []*marketdata.Matrix

	Dates contracts.TradingDates
}

// Filter is one boolean quality gate over a candidate stock. A false
// return drops the candidate; an error aborts the month's selection
// (correctness guard, not a soft skip).
type Filter interface {
	Name() string
	Passes(in Input, symbol string) (bool, error)
}

// TrendFilter requires the close on the roll-over trading date to be
// above every configured EMA value on that same date.
type TrendFilter struct{}

// NewTrendFilter creates the trend gate.
func NewTrendFilter() *TrendFilter {
	return &TrendFilter{}
}

func (f *TrendFilter) Name() string { return "trend" }

// Passes returns MissingDateError when the roll-over date is absent
// from the price or any EMA series: that is a data defect, not an
// excuse to wave a stock through.
func (f *TrendFilter) Passes(in Input, symbol string) (bool, error) {
	date := in.Dates.RollOver

	price, ok := in.Prices.At(date, symbol)
	if !ok {
		return false, &contracts.MissingDateError{Series: "price", Symbol: symbol, Date: date}
	}

	for _, ema := range in.EMASeries {
		emaValue, ok := ema.At(date, symbol)
		if !ok {
			return false, &contracts.MissingDateError{Series: "ema", Symbol: symbol, Date: date}
		}
		if price <= emaValue {
			return false, nil
		}
	}

	return true, nil
}

// HighProximityFilter requires the close on the roll-over trading date
// to exceed a fraction of the maximum close over the trailing window
// of trading days ending on that date (the "52-week high" gate).
type HighProximityFilter struct {
	WindowDays int     // trailing trading days, default 250
	Fraction   float64 // required fraction of the window high, default 0.7
}

// NewHighProximityFilter creates the 52-week-high gate with defaults.
func NewHighProximityFilter() *HighProximityFilter {
	return &HighProximityFilter{WindowDays: 250, Fraction: 0.7}
}

func (f *HighProximityFilter) Name() string { return "52wk_high" }

func (f *HighProximityFilter) Passes(in Input, symbol string) (bool, error) {
	date := in.Dates.RollOver

	price, ok := in.Prices.At(date, symbol)
	if !ok {
		return false, &contracts.MissingDateError{Series: "price", Symbol: symbol, Date: date}
	}

	row, _ := in.Prices.RowIndex(date)
	start := row - f.WindowDays + 1
	if start < 0 {
		start = 0
	}

	col, _ := in.Prices.Column(symbol)
	high := 0.0
	for i := start; i <= row; i++ {
		if col[i] > high {
			high = col[i]
		}
	}

	return price > high*f.Fraction, nil
}

// LiquidityFilter requires the mean of price*volume across the
// calendar month containing the roll-over trading date to exceed a
// minimum traded-value threshold.
type LiquidityFilter struct {
	MinMonthlyValue float64 // default 10,000,000
}

// NewLiquidityFilter creates the liquidity gate.
func NewLiquidityFilter(minMonthlyValue float64) *LiquidityFilter {
	if minMonthlyValue <= 0 {
		minMonthlyValue = 10_000_000
	}
	return &LiquidityFilter{MinMonthlyValue: minMonthlyValue}
}

func (f *LiquidityFilter) Name() string { return "liquidity" }

func (f *LiquidityFilter) Passes(in Input, symbol string) (bool, error) {
	month := contracts.MonthKeyOf(in.Dates.RollOver)

	startRow, endRow := in.Prices.Range(month.Start(), month.End())
	if startRow >= endRow {
		return false, &contracts.EmptyPeriodError{Month: month}
	}

	prices, _ := in.Prices.Column(symbol)
	volumes, ok := in.Volumes.Column(symbol)
	if !ok {
		return false, &contracts.MissingDateError{Series: "volume", Symbol: symbol, Date: in.Dates.RollOver}
	}

	var sum float64
	for i := startRow; i < endRow; i++ {
		sum += prices[i] * volumes[i]
	}
	mean := sum / float64(endRow-startRow)

	return mean > f.MinMonthlyValue, nil
}
