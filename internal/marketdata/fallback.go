package marketdata

import (
	"time"

	"github.com/quantmill/momentum/internal/contracts"
)

// FallbackResolver resolves a usable price for a stock on a date whose
// recorded value is 0 (missing / unlisted that day). It only ever
// searches backward: one calendar day at a time, skipping days off the
// trading axis, until a non-zero value is found. The search is bounded
// by the start of the series so an all-zero history fails with
// NoValidPriceError instead of looping forever.
type FallbackResolver struct {
	prices *Matrix
}

// NewFallbackResolver creates a resolver over a price matrix.
func NewFallbackResolver(prices *Matrix) *FallbackResolver {
	return &FallbackResolver{prices: prices}
}

// PriceOn returns the price for (symbol, date), walking backward from
// the anchor date when the recorded value is zero.
func (f *FallbackResolver) PriceOn(symbol string, date time.Time) (float64, error) {
	price, ok := f.prices.At(date, symbol)
	if !ok {
		return 0, &contracts.MissingDateError{Series: "price", Symbol: symbol, Date: date}
	}
	if price != 0 {
		return price, nil
	}
	return f.resolve(symbol, date)
}

func (f *FallbackResolver) resolve(symbol string, anchor time.Time) (float64, error) {
	if f.prices.Len() == 0 {
		return 0, &contracts.NoValidPriceError{Symbol: symbol, Date: anchor}
	}

	seriesStart := f.prices.Dates()[0]
	for d := anchor.AddDate(0, 0, -1); !d.Before(seriesStart); d = d.AddDate(0, 0, -1) {
		price, ok := f.prices.At(d, symbol)
		if !ok {
			continue // non-trading day
		}
		if price != 0 {
			return price, nil
		}
	}

	return 0, &contracts.NoValidPriceError{Symbol: symbol, Date: anchor}
}
