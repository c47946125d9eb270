package scoring

import (
	"math"

	"github.com/quantmill/momentum/internal/marketdata"
)

// MScore normalises a month's TTM returns by the standard deviation of
// daily changes over the same trailing window. With absolute set, the
// deviation is computed only over negative daily changes, taking their
// magnitude (downside volatility). A zero or undefined
// deviation yields a score of 0, never NaN or Inf, so downstream sorts
// stay total-ordered.
func MScore(ttm *MonthScores, dailyChange *marketdata.Matrix, lookbackMonths int, absolute bool) *MonthScores {
	windowStart, windowEnd := lookbackWindow(ttm.Month, lookbackMonths)
	startRow, endRow := dailyChange.Range(windowStart, windowEnd)

	scores := make(map[string]float64, len(ttm.Scores))
	for sym, ttmReturn := range ttm.Scores {
		col, ok := dailyChange.Column(sym)
		if !ok {
			scores[sym] = 0
			continue
		}

		window := make([]float64, 0, endRow-startRow)
		for i := startRow; i < endRow; i++ {
			v := col[i]
			if absolute {
				if v < 0 {
					window = append(window, -v)
				}
				continue
			}
			window = append(window, v)
		}

		std := sampleStdDev(window)
		if std == 0 || math.IsNaN(std) {
			scores[sym] = 0
			continue
		}
		scores[sym] = ttmReturn / std
	}

	return &MonthScores{Month: ttm.Month, Scores: scores}
}

// sampleStdDev is the n-1 divisor standard deviation. Fewer than two
// samples is degenerate and returns 0.
func sampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}

	return math.Sqrt(sq / float64(n-1))
}
