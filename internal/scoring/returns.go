package scoring

import (
	"time"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/marketdata"
)

// MonthScores holds one scalar per symbol for a single calendar month.
// Scores are derived data, recomputed from the price matrix on every
// run; they are never persisted as a source of truth.
type MonthScores struct {
	Month  contracts.MonthKey
	Scores map[string]float64
}

// lookbackWindow returns the [start, end] calendar window for a
// month's trailing statistics: lookbackMonths before the 1st of the
// month through the day before the 1st.
func lookbackWindow(month contracts.MonthKey, lookbackMonths int) (time.Time, time.Time) {
	start := month.Start().AddDate(0, -lookbackMonths, 0)
	end := month.Start().AddDate(0, 0, -1)
	return start, end
}

// TTM computes each symbol's trailing percentage return over the
// lookback window ending the day before the 1st of the month, using
// the first and last trading dates inside that window:
//
//	(close_at_window_end / close_at_window_start - 1) * 100
//
// A symbol whose window-start or window-end price is zero scores 0
// rather than failing the computation.
func TTM(data *marketdata.Matrix, month contracts.MonthKey, lookbackMonths int) (*MonthScores, error) {
	windowStart, windowEnd := lookbackWindow(month, lookbackMonths)

	startRow, endRow := data.Range(windowStart, windowEnd)
	if startRow >= endRow {
		return nil, &contracts.EmptyPeriodError{Month: month}
	}

	firstRow := startRow
	lastRow := endRow - 1

	scores := make(map[string]float64, len(data.Symbols()))
	for _, sym := range data.Symbols() {
		col, _ := data.Column(sym)
		opening := col[firstRow]
		closing := col[lastRow]

		if opening == 0 || closing == 0 {
			scores[sym] = 0
			continue
		}
		scores[sym] = (closing/opening - 1) * 100
	}

	return &MonthScores{Month: month, Scores: scores}, nil
}

// DailyChange computes per-symbol daily percentage changes
// (pct_change * 100) over the matrix's date axis. The first row and
// any undefined change (previous close of zero) become 0.
func DailyChange(data *marketdata.Matrix) *marketdata.Matrix {
	dates := data.Dates()
	symbols := data.Symbols()

	cols := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		src, _ := data.Column(sym)
		col := make([]float64, len(dates))
		for i := 1; i < len(src); i++ {
			if src[i-1] == 0 {
				col[i] = 0
				continue
			}
			col[i] = (src[i]/src[i-1] - 1) * 100
		}
		cols[sym] = col
	}

	out, _ := marketdata.NewMatrix(dates, symbols, cols)
	return out
}
