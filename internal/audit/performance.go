package audit

import (
	"math"

	"github.com/quantmill/momentum/internal/contracts"
)

// MonthlyReturn is one month's aggregate portfolio return in percent.
type MonthlyReturn struct {
	Month     contracts.MonthKey
	ReturnPct float64
}

// Report summarises a backtested return series.
type Report struct {
	// Curve is the compounded portfolio value per month, starting
	// from InitialValue.
	Curve         []float64
	InitialValue  float64
	FinalValue    float64
	TotalReturn   float64            // percent over the whole series
	YearlyReturns map[int]float64    // percent per calendar year
	MaxDrawdown   float64            // percent, negative or zero
	SharpeRatio   float64
	CalmarRatio   float64
}

// Analyzer computes performance statistics over a monthly return
// series produced by the rebalancer.
type Analyzer struct {
	// RiskFreeRate is the annual risk-free rate as a fraction
	// (default 0.07).
	RiskFreeRate float64

	// InitialValue seeds the compounding curve (default 100).
	InitialValue float64
}

// NewAnalyzer creates an analyzer with default parameters.
func NewAnalyzer() *Analyzer {
	return &Analyzer{RiskFreeRate: 0.07, InitialValue: 100}
}

// Analyze builds the full report. Months must already be in ascending
// order, matching the rebalancer's sequential recurrence.
func (a *Analyzer) Analyze(series []MonthlyReturn) *Report {
	report := &Report{
		InitialValue:  a.InitialValue,
		YearlyReturns: make(map[int]float64),
	}
	if len(series) == 0 {
		report.FinalValue = a.InitialValue
		return report
	}

	report.Curve = a.Compound(series)
	report.FinalValue = report.Curve[len(report.Curve)-1]
	report.TotalReturn = (report.FinalValue/a.InitialValue - 1) * 100
	report.MaxDrawdown = MaxDrawdown(report.Curve, a.InitialValue)
	report.YearlyReturns = a.yearlyReturns(series, report.Curve)
	report.SharpeRatio, report.CalmarRatio = a.ratios(report.YearlyReturns, report.MaxDrawdown)

	return report
}

// Compound turns the monthly percentage returns into a running
// portfolio value series.
func (a *Analyzer) Compound(series []MonthlyReturn) []float64 {
	curve := make([]float64, len(series))
	value := a.InitialValue
	for i, m := range series {
		value = value + (m.ReturnPct*value)/100
		curve[i] = value
	}
	return curve
}

// MaxDrawdown returns the deepest peak-to-trough decline, in percent,
// of the value curve seeded with initialValue.
func MaxDrawdown(curve []float64, initialValue float64) float64 {
	runningMax := initialValue
	maxDD := 0.0

	for _, v := range curve {
		if v > runningMax {
			runningMax = v
		}
		dd := (v - runningMax) / runningMax * 100
		if dd < maxDD {
			maxDD = dd
		}
	}

	return maxDD
}

// yearlyReturns derives calendar-year returns from the value curve.
func (a *Analyzer) yearlyReturns(series []MonthlyReturn, curve []float64) map[int]float64 {
	yearEnd := make(map[int]float64)
	years := make([]int, 0, 8)
	for i, m := range series {
		if _, seen := yearEnd[m.Month.Year]; !seen {
			years = append(years, m.Month.Year)
		}
		yearEnd[m.Month.Year] = curve[i]
	}

	out := make(map[int]float64, len(years))
	prev := a.InitialValue
	for _, y := range years {
		out[y] = (yearEnd[y]/prev - 1) * 100
		prev = yearEnd[y]
	}
	return out
}

// ratios computes the Sharpe and Calmar ratios over the yearly return
// series. Degenerate denominators yield 0.
func (a *Analyzer) ratios(yearly map[int]float64, maxDrawdown float64) (sharpe, calmar float64) {
	if len(yearly) == 0 {
		return 0, 0
	}

	returns := make([]float64, 0, len(yearly))
	for _, r := range yearly {
		returns = append(returns, r/100)
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}

	if len(returns) > 1 {
		std := math.Sqrt(sq / float64(len(returns)-1))
		if std != 0 {
			sharpe = (mean - a.RiskFreeRate) / std
		}
	}

	dd := maxDrawdown / 100
	if dd != 0 {
		calmar = (mean - a.RiskFreeRate) / math.Abs(dd)
	}

	return sharpe, calmar
}
