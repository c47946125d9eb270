package contracts

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar (year, month) pair. It replaces the
// string-concatenated "month_year" keys the persistence layer used to
// rely on; a portfolio month is always addressed through this type.
type MonthKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewMonthKey builds a MonthKey, validating the month range.
func NewMonthKey(year, month int) (MonthKey, error) {
	if month < 1 || month > 12 {
		return MonthKey{}, fmt.Errorf("invalid month %d", month)
	}
	return MonthKey{Year: year, Month: month}, nil
}

// MonthKeyOf extracts the MonthKey from a date.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: int(t.Month())}
}

// Prev returns the preceding calendar month.
func (k MonthKey) Prev() MonthKey {
	if k.Month == 1 {
		return MonthKey{Year: k.Year - 1, Month: 12}
	}
	return MonthKey{Year: k.Year, Month: k.Month - 1}
}

// Next returns the following calendar month.
func (k MonthKey) Next() MonthKey {
	if k.Month == 12 {
		return MonthKey{Year: k.Year + 1, Month: 1}
	}
	return MonthKey{Year: k.Year, Month: k.Month + 1}
}

// Start returns midnight UTC on the first calendar day of the month.
func (k MonthKey) Start() time.Time {
	return time.Date(k.Year, time.Month(k.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC on the last calendar day of the month.
func (k MonthKey) End() time.Time {
	return k.Next().Start().AddDate(0, 0, -1)
}

// Contains reports whether the date falls inside this calendar month.
func (k MonthKey) Contains(t time.Time) bool {
	return t.Year() == k.Year && int(t.Month()) == k.Month
}

// Before reports whether k is strictly earlier than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// String returns the key in "2006-01" form.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

// TradingDates is the trading-date triple for one calendar month.
// RollOver is the last trading date of the preceding month, except for
// the very first month of the series where it equals First (there is
// no prior month to roll from).
type TradingDates struct {
	First    time.Time `json:"first_trading_date"`
	Last     time.Time `json:"last_trading_date"`
	RollOver time.Time `json:"roll_over_trading_date"`
}

// IsInception reports whether this month is the first of the series.
// The operational test is RollOver == First.
func (td TradingDates) IsInception() bool {
	return td.RollOver.Equal(td.First)
}
