package scoring

import (
	"fmt"
	"time"

	"github.com/quantmill/momentum/internal/marketdata"
)

// EMA computes the exponential moving average series for every symbol
// with smoothing factor alpha = 2/(timeframe+1). The seed is the
// simple mean of the first timeframe observations, anchored to the
// timeframe-th date; the recurrence
//
//	ema[t] = price[t]*alpha + ema[t-1]*(1-alpha)
//
// runs in date order for all later dates. The result has one row per
// date from the seed date onward.
func EMA(data *marketdata.Matrix, timeframe int) (*marketdata.Matrix, error) {
	dates := data.Dates()
	if timeframe <= 0 {
		return nil, fmt.Errorf("ema timeframe must be positive, got %d", timeframe)
	}
	if len(dates) < timeframe {
		return nil, fmt.Errorf("ema needs at least %d rows, have %d", timeframe, len(dates))
	}

	alpha := 2.0 / float64(timeframe+1)
	symbols := data.Symbols()

	outDates := make([]time.Time, 0, len(dates)-timeframe+1)
	outDates = append(outDates, dates[timeframe-1:]...)

	cols := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		src, _ := data.Column(sym)

		col := make([]float64, len(outDates))

		// Seed: simple mean of the first timeframe closes
		var sum float64
		for i := 0; i < timeframe; i++ {
			sum += src[i]
		}
		col[0] = sum / float64(timeframe)

		for i := 1; i < len(col); i++ {
			price := src[timeframe-1+i]
			col[i] = price*alpha + col[i-1]*(1-alpha)
		}

		cols[sym] = col
	}

	return marketdata.NewMatrix(outDates, symbols, cols)
}
