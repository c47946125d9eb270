package calendar

import (
	"time"

	"github.com/quantmill/momentum/internal/contracts"
)

// Resolver derives the trading-date triple for a calendar month from
// an ordered series of valid trading dates.
// ⭐ SSOT: trading-date resolution lives here.
type Resolver struct {
	dates []time.Time // ascending, unique
	start contracts.MonthKey
}

// NewResolver creates a resolver over an ascending date axis. The
// series' first month is derived from the first date.
func NewResolver(dates []time.Time) *Resolver {
	r := &Resolver{dates: dates}
	if len(dates) > 0 {
		r.start = contracts.MonthKeyOf(dates[0])
	}
	return r
}

// SeriesStart returns the first month covered by the series.
func (r *Resolver) SeriesStart() contracts.MonthKey {
	return r.start
}

// TradingDates resolves the (first, last, roll-over) triple for the
// month. The roll-over date is the last trading date of the preceding
// month; for the series' very first month there is no prior month to
// roll from, so it equals the first trading date.
func (r *Resolver) TradingDates(month contracts.MonthKey) (contracts.TradingDates, error) {
	first, last, err := r.monthBounds(month)
	if err != nil {
		return contracts.TradingDates{}, err
	}

	if month == r.start {
		return contracts.TradingDates{First: first, Last: last, RollOver: first}, nil
	}

	_, prevLast, err := r.monthBounds(month.Prev())
	if err != nil {
		return contracts.TradingDates{}, err
	}

	return contracts.TradingDates{First: first, Last: last, RollOver: prevLast}, nil
}

// monthBounds returns the min and max trading dates inside the month.
func (r *Resolver) monthBounds(month contracts.MonthKey) (time.Time, time.Time, error) {
	var first, last time.Time
	found := false

	for _, d := range r.dates {
		if !month.Contains(d) {
			if found {
				break // dates ascend, the month is behind us
			}
			continue
		}
		if !found {
			first = d
			found = true
		}
		last = d
	}

	if !found {
		return time.Time{}, time.Time{}, &contracts.EmptyPeriodError{Month: month}
	}
	return first, last, nil
}
