package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/quantmill/momentum/pkg/logger"
)

// Loader reads date x symbol CSV exports into a Matrix and applies the
// cleaning steps the engine expects its inputs to have gone through:
// blank columns dropped, duplicate dates removed (first kept), rows
// sorted ascending, zero values forward-filled up to a cutoff date.
type Loader struct {
	// ForwardFillCutoff bounds the forward fill; zero values after the
	// cutoff are left untouched. The zero time disables the fill.
	ForwardFillCutoff time.Time

	logger *logger.Logger
}

// NewLoader creates a loader.
func NewLoader(cutoff time.Time, log *logger.Logger) *Loader {
	return &Loader{ForwardFillCutoff: cutoff, logger: log}
}

// LoadFile reads a CSV file from disk.
func (l *Loader) LoadFile(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	m, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return m, nil
}

// Load reads CSV content. The first column must be "Date"; every other
// non-blank header names a symbol.
func (l *Loader) Load(r io.Reader) (*Matrix, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	dateCol := -1
	symbols := make([]string, 0, len(header))
	symbolCols := make([]int, 0, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "Date" {
			dateCol = i
			continue
		}
		// Blank or unnamed columns are artefacts of the export
		if name == "" || strings.HasPrefix(name, "Unnamed") {
			continue
		}
		symbols = append(symbols, name)
		symbolCols = append(symbolCols, i)
	}
	if dateCol == -1 {
		return nil, fmt.Errorf("the Date column is missing")
	}

	type row struct {
		date   time.Time
		values []float64
	}
	rows := make([]row, 0, 1024)
	seen := make(map[int64]bool)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if len(record) <= dateCol {
			continue
		}

		date, err := parseDate(record[dateCol])
		if err != nil {
			return nil, err
		}

		// Duplicate dates: keep the first occurrence
		if seen[dateKey(date)] {
			continue
		}
		seen[dateKey(date)] = true

		values := make([]float64, len(symbols))
		blank := true
		for j, col := range symbolCols {
			if col >= len(record) {
				continue
			}
			cell := strings.TrimSpace(record[col])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("bad value %q for %s on %s: %w", cell, symbols[j], date.Format("2006-01-02"), err)
			}
			values[j] = v
			blank = false
		}
		if blank {
			continue
		}

		rows = append(rows, row{date: date, values: values})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	dates := make([]time.Time, len(rows))
	cols := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		cols[sym] = make([]float64, len(rows))
	}
	for i, r := range rows {
		dates[i] = r.date
		for j, sym := range symbols {
			cols[sym][i] = r.values[j]
		}
	}

	if !l.ForwardFillCutoff.IsZero() {
		forwardFill(dates, cols, l.ForwardFillCutoff)
	}

	if l.logger != nil {
		l.logger.WithFields(map[string]interface{}{
			"rows":    len(dates),
			"symbols": len(symbols),
			"from":    dates[0].Format("2006-01-02"),
			"to":      dates[len(dates)-1].Format("2006-01-02"),
		}).Debug("Market data loaded")
	}

	return NewMatrix(dates, symbols, cols)
}

// forwardFill carries the last non-zero value over zero cells up to
// the cutoff date. Zeros before a symbol's first trade stay zero.
func forwardFill(dates []time.Time, cols map[string][]float64, cutoff time.Time) {
	for _, col := range cols {
		last := 0.0
		for i := range col {
			if col[i] != 0 {
				last = col[i]
				continue
			}
			if last != 0 && !dates[i].After(cutoff) {
				col[i] = last
			}
		}
	}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "02-01-2006", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date value %q", s)
}
