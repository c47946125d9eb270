package contracts

import (
	"fmt"
	"strings"
	"time"
)

// Domain error taxonomy. Each carries enough context (symbol, date,
// month) to diagnose a failed run; none of them is ever folded into a
// silent zero return. A degenerate score denominator is the one
// recovered condition and is handled locally in the scoring package.

// EmptyPeriodError reports that no trading dates fall inside the
// requested calendar month.
type EmptyPeriodError struct {
	Month MonthKey
}

func (e *EmptyPeriodError) Error() string {
	return fmt.Sprintf("no trading dates in period %s", e.Month)
}

// ColumnMismatchError reports that the price and volume matrices do
// not share the same symbol universe.
type ColumnMismatchError struct {
	MissingInPrices  []string
	MissingInVolumes []string
}

func (e *ColumnMismatchError) Error() string {
	return fmt.Sprintf("column mismatch: missing in prices [%s], missing in volumes [%s]",
		strings.Join(e.MissingInPrices, ", "), strings.Join(e.MissingInVolumes, ", "))
}

// MissingDateError reports that a required date is absent from a
// series (for example the roll-over date missing from an EMA series).
type MissingDateError struct {
	Series string
	Symbol string
	Date   time.Time
}

func (e *MissingDateError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("date %s missing from %s series", e.Date.Format("2006-01-02"), e.Series)
	}
	return fmt.Sprintf("date %s missing from %s series for %s", e.Date.Format("2006-01-02"), e.Series, e.Symbol)
}

// NoValidPriceError reports that the backward price-fallback search
// reached the start of the series without finding a non-zero price.
type NoValidPriceError struct {
	Symbol string
	Date   time.Time
}

func (e *NoValidPriceError) Error() string {
	return fmt.Sprintf("no valid price for %s on or before %s", e.Symbol, e.Date.Format("2006-01-02"))
}
