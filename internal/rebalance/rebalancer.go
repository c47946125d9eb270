package rebalance

import (
	"fmt"
	"time"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/marketdata"
	"github.com/quantmill/momentum/pkg/logger"
)

// Config holds the rebalancer parameters.
type Config struct {
	// StopLossPercent is the positive stop-loss threshold; a holding
	// exits on the first day its running return from entry drops to
	// -StopLossPercent or below. 0 disables stop-loss tracking.
	StopLossPercent float64
}

// Rebalancer reconciles a month's filtered top-N selection against the
// prior month's holdings and produces the new Portfolio: added,
// removed and carried-forward sets, entry/exit prices with zero-price
// fallback, the stop-loss scan and per-stock returns.
// ⭐ SSOT: month-over-month portfolio reconciliation lives here.
type Rebalancer struct {
	config Config
	logger *logger.Logger
}

// NewRebalancer creates a rebalancer.
func NewRebalancer(config Config, log *logger.Logger) *Rebalancer {
	return &Rebalancer{config: config, logger: log}
}

// Rebalance computes the month's portfolio. The state machine has two
// states, tested solely through the trading-date triple: inception
// (roll-over == first trading date, no prior month exists) where every
// selected stock enters as new, and ongoing where the selection is
// diffed against the prior portfolio. A prior month's stopped-out
// stock that re-qualifies re-enters as new, never as a carry-forward.
func (r *Rebalancer) Rebalance(
	prices *marketdata.Matrix,
	month contracts.MonthKey,
	dates contracts.TradingDates,
	topN []string,
	prior *contracts.Portfolio,
) (*contracts.Portfolio, error) {
	p := &contracts.Portfolio{
		Month:             month,
		TradingDates:      dates,
		TopN:              append([]string(nil), topN...),
		Added:             []string{},
		Removed:           []string{},
		CarryForward:      []string{},
		StopLossTriggered: []string{},
		CreatedAt:         time.Now().UTC(),
	}

	carrySet := make(map[string]bool)

	if dates.IsInception() {
		// Inception: everything is new, no diff bookkeeping.
		p.Added = append([]string(nil), topN...)
	} else {
		var priorTop []string
		stoppedOut := func(string) bool { return false }
		if prior != nil {
			priorTop = prior.TopN
			stoppedOut = prior.WasStoppedOut
		}

		priorSet := make(map[string]bool, len(priorTop))
		for _, s := range priorTop {
			priorSet[s] = true
		}
		topSet := make(map[string]bool, len(topN))
		for _, s := range topN {
			topSet[s] = true
		}

		for _, s := range topN {
			switch {
			case priorSet[s] && !stoppedOut(s):
				p.CarryForward = append(p.CarryForward, s)
				carrySet[s] = true
			default:
				p.Added = append(p.Added, s)
			}
		}
		for _, s := range priorTop {
			if !topSet[s] {
				p.Removed = append(p.Removed, s)
			}
		}
	}

	fallback := marketdata.NewFallbackResolver(prices)

	var returnSum float64
	for _, symbol := range topN {
		holding, err := r.computeHolding(prices, fallback, dates, symbol, carrySet[symbol])
		if err != nil {
			// A single unpriceable stock does not abort the month; it
			// is reported and excluded from the aggregate.
			if p.Failed == nil {
				p.Failed = make(map[string]string)
			}
			p.Failed[symbol] = err.Error()
			if r.logger != nil {
				r.logger.WithFields(map[string]interface{}{
					"symbol": symbol,
					"month":  month.String(),
					"error":  err.Error(),
				}).Warn("Holding could not be priced")
			}
			continue
		}

		p.Holdings = append(p.Holdings, *holding)
		returnSum += holding.ReturnPct
		if holding.StopLossHit {
			p.StopLossTriggered = append(p.StopLossTriggered, symbol)
		}
	}

	if len(topN) > 0 && len(p.Holdings) == 0 {
		return nil, fmt.Errorf("no holding in %s could be priced", month)
	}
	if len(p.Holdings) > 0 {
		p.AggregateReturn = returnSum / float64(len(p.Holdings))
	}

	if r.logger != nil {
		r.logger.WithFields(map[string]interface{}{
			"month":         month.String(),
			"holdings":      len(p.Holdings),
			"added":         len(p.Added),
			"removed":       len(p.Removed),
			"carry_forward": len(p.CarryForward),
			"stop_loss":     len(p.StopLossTriggered),
			"return":        p.AggregateReturn,
		}).Info("Month rebalanced")
	}

	return p, nil
}

// computeHolding prices one stock for the month. Carried-forward
// stocks enter at the roll-over close, new entries at the first
// trading date's close; a zero recorded price resolves through the
// backward fallback anchored at the same date.
func (r *Rebalancer) computeHolding(
	prices *marketdata.Matrix,
	fallback *marketdata.FallbackResolver,
	dates contracts.TradingDates,
	symbol string,
	carryForward bool,
) (*contracts.Holding, error) {
	entryDate := dates.First
	if carryForward {
		entryDate = dates.RollOver
	}

	entryPrice, err := fallback.PriceOn(symbol, entryDate)
	if err != nil {
		return nil, err
	}

	holding := &contracts.Holding{
		Symbol:       symbol,
		InitialPrice: entryPrice,
		CarryForward: carryForward,
		IsNew:        !carryForward,
	}

	exitPrice, hitDate, err := r.exitPrice(prices, fallback, dates, symbol, entryDate, entryPrice)
	if err != nil {
		return nil, err
	}
	holding.FinalPrice = exitPrice
	if hitDate != nil {
		holding.StopLossHit = true
		holding.StopLossHitDate = hitDate
	}

	holding.ReturnPct = (exitPrice/entryPrice - 1) * 100
	return holding, nil
}

// exitPrice finds the holding's exit. With stop-loss tracking enabled
// it scans the daily closes from the entry date through the last
// trading date and exits on the first breach; otherwise (and when no
// breach occurs) the exit is the last trading date's close. Zero
// closes in the scan are "no trade" days and cannot trigger.
func (r *Rebalancer) exitPrice(
	prices *marketdata.Matrix,
	fallback *marketdata.FallbackResolver,
	dates contracts.TradingDates,
	symbol string,
	entryDate time.Time,
	entryPrice float64,
) (float64, *time.Time, error) {
	if r.config.StopLossPercent > 0 {
		threshold := -r.config.StopLossPercent

		startRow, endRow := prices.Range(entryDate, dates.Last)
		col, ok := prices.Column(symbol)
		if !ok {
			return 0, nil, &contracts.MissingDateError{Series: "price", Symbol: symbol, Date: entryDate}
		}

		axis := prices.Dates()
		for i := startRow; i < endRow; i++ {
			price := col[i]
			if price == 0 {
				continue
			}
			changePct := (price - entryPrice) / entryPrice * 100
			if changePct <= threshold {
				hit := axis[i]
				return price, &hit, nil
			}
		}
	}

	exit, err := fallback.PriceOn(symbol, dates.Last)
	if err != nil {
		return 0, nil, err
	}
	return exit, nil, nil
}
