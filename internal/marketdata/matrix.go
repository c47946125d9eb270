package marketdata

import (
	"fmt"
	"time"

	"github.com/quantmill/momentum/internal/contracts"
)

// Matrix is a date-indexed, symbol-columned table of float values
// (closing prices or traded quantities). Dates ascend and are unique;
// a value of exactly 0 means "no trade / missing", never a true price
// of zero. Column order is preserved from the source and acts as the
// tie-break order for rank sorts downstream.
type Matrix struct {
	dates   []time.Time
	symbols []string
	cols    map[string][]float64
	rowIdx  map[int64]int
}

// dateKey normalises a date to UTC midnight and returns a map key.
func dateKey(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// Day normalises a timestamp to UTC midnight, the engine's canonical
// date representation.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewMatrix builds a Matrix from an ascending date axis and one
// equally-sized column per symbol.
func NewMatrix(dates []time.Time, symbols []string, cols map[string][]float64) (*Matrix, error) {
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			return nil, fmt.Errorf("dates must be strictly ascending: %s >= %s",
				dates[i-1].Format("2006-01-02"), dates[i].Format("2006-01-02"))
		}
	}

	normalized := make([]time.Time, len(dates))
	rowIdx := make(map[int64]int, len(dates))
	for i, d := range dates {
		normalized[i] = Day(d)
		rowIdx[dateKey(d)] = i
	}

	for _, sym := range symbols {
		col, ok := cols[sym]
		if !ok {
			return nil, fmt.Errorf("missing column for symbol %s", sym)
		}
		if len(col) != len(dates) {
			return nil, fmt.Errorf("column %s has %d rows, want %d", sym, len(col), len(dates))
		}
	}

	return &Matrix{
		dates:   normalized,
		symbols: append([]string(nil), symbols...),
		cols:    cols,
		rowIdx:  rowIdx,
	}, nil
}

// Dates returns the date axis.
func (m *Matrix) Dates() []time.Time {
	return m.dates
}

// Symbols returns the column set in source order.
func (m *Matrix) Symbols() []string {
	return m.symbols
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	return len(m.dates)
}

// HasDate reports whether the date is on the axis.
func (m *Matrix) HasDate(date time.Time) bool {
	_, ok := m.rowIdx[dateKey(date)]
	return ok
}

// RowIndex returns the row for a date.
func (m *Matrix) RowIndex(date time.Time) (int, bool) {
	i, ok := m.rowIdx[dateKey(date)]
	return i, ok
}

// At returns the value for (date, symbol). The second return is false
// when the date is off the axis or the symbol is unknown.
func (m *Matrix) At(date time.Time, symbol string) (float64, bool) {
	i, ok := m.rowIdx[dateKey(date)]
	if !ok {
		return 0, false
	}
	col, ok := m.cols[symbol]
	if !ok {
		return 0, false
	}
	return col[i], true
}

// Column returns a symbol's full value series.
func (m *Matrix) Column(symbol string) ([]float64, bool) {
	col, ok := m.cols[symbol]
	return col, ok
}

// Range returns the half-open row range [start, end) covering dates in
// [from, to] inclusive.
func (m *Matrix) Range(from, to time.Time) (int, int) {
	start := len(m.dates)
	for i, d := range m.dates {
		if !d.Before(from) {
			start = i
			break
		}
	}
	end := start
	for end < len(m.dates) && !m.dates[end].After(to) {
		end++
	}
	return start, end
}

// Slice returns a view restricted to the given symbols, preserving
// this matrix's column order for those present.
func (m *Matrix) Slice(symbols []string) (*Matrix, error) {
	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}

	kept := make([]string, 0, len(symbols))
	cols := make(map[string][]float64, len(symbols))
	for _, s := range m.symbols {
		if !want[s] {
			continue
		}
		kept = append(kept, s)
		cols[s] = m.cols[s]
	}

	if len(kept) != len(symbols) {
		missing := make([]string, 0)
		for _, s := range symbols {
			if _, ok := m.cols[s]; !ok {
				missing = append(missing, s)
			}
		}
		return nil, fmt.Errorf("unknown symbols: %v", missing)
	}

	return NewMatrix(m.dates, kept, cols)
}

// selectRows rebuilds the matrix on a subset of row indices.
func (m *Matrix) selectRows(rows []int) *Matrix {
	dates := make([]time.Time, len(rows))
	for i, r := range rows {
		dates[i] = m.dates[r]
	}

	cols := make(map[string][]float64, len(m.symbols))
	for _, sym := range m.symbols {
		src := m.cols[sym]
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = src[r]
		}
		cols[sym] = col
	}

	out, _ := NewMatrix(dates, m.symbols, cols)
	return out
}

// Align verifies that the price and volume matrices describe the same
// universe and reduces both to their common date axis. A differing
// column set is rejected with ColumnMismatchError rather than padded;
// differing date axes are intersected.
func Align(prices, volumes *Matrix) (*Matrix, *Matrix, error) {
	if err := checkColumns(prices, volumes); err != nil {
		return nil, nil, err
	}

	if sameDates(prices, volumes) {
		return prices, volumes, nil
	}

	priceRows := make([]int, 0, prices.Len())
	volumeRows := make([]int, 0, volumes.Len())
	for i, d := range prices.dates {
		if j, ok := volumes.RowIndex(d); ok {
			priceRows = append(priceRows, i)
			volumeRows = append(volumeRows, j)
		}
	}

	if len(priceRows) == 0 {
		return nil, nil, fmt.Errorf("no common dates between price and volume matrices")
	}

	return prices.selectRows(priceRows), volumes.selectRows(volumeRows), nil
}

func checkColumns(prices, volumes *Matrix) error {
	missingInPrices := make([]string, 0)
	missingInVolumes := make([]string, 0)

	for _, s := range volumes.symbols {
		if _, ok := prices.cols[s]; !ok {
			missingInPrices = append(missingInPrices, s)
		}
	}
	for _, s := range prices.symbols {
		if _, ok := volumes.cols[s]; !ok {
			missingInVolumes = append(missingInVolumes, s)
		}
	}

	if len(missingInPrices) > 0 || len(missingInVolumes) > 0 {
		return &contracts.ColumnMismatchError{
			MissingInPrices:  missingInPrices,
			MissingInVolumes: missingInVolumes,
		}
	}
	return nil
}

func sameDates(a, b *Matrix) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.dates {
		if !a.dates[i].Equal(b.dates[i]) {
			return false
		}
	}
	return true
}
