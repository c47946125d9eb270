package contracts

import "time"

// Holding is one stock's bookkeeping for one portfolio month. It is
// created fresh by the rebalancer each month and never mutated after
// the Portfolio is emitted.
type Holding struct {
	Symbol          string     `json:"symbol"`
	InitialPrice    float64    `json:"initial_price"`
	FinalPrice      float64    `json:"final_price"`
	ReturnPct       float64    `json:"return_pct"`
	CarryForward    bool       `json:"carry_forward"`
	IsNew           bool       `json:"is_new"`
	StopLossHit     bool       `json:"stop_loss_triggered"`
	StopLossHitDate *time.Time `json:"stop_loss_trigger_date,omitempty"`
}

// Portfolio is one month's rebalanced portfolio for a single
// (strategy, universe) pair. It is the sole state needed to compute
// the following month's portfolio.
type Portfolio struct {
	Month        MonthKey     `json:"month"`
	TradingDates TradingDates `json:"trading_dates"`

	// TopN is the filtered selection in rank order (best first).
	TopN     []string  `json:"top_n_scripts"`
	Holdings []Holding `json:"holdings"`

	// AggregateReturn is the unweighted arithmetic mean of the
	// holdings' returns.
	AggregateReturn float64 `json:"aggregate_return"`

	Added             []string `json:"added_scripts"`
	Removed           []string `json:"removed_scripts"`
	CarryForward      []string `json:"carry_forward_scripts"`
	StopLossTriggered []string `json:"stop_loss_triggered_scripts"`

	// Failed records symbols from TopN that could not be priced,
	// keyed by symbol with the failure reason. Failed symbols carry
	// no Holding and do not enter AggregateReturn.
	Failed map[string]string `json:"failed_scripts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HoldingFor finds the holding for a symbol.
func (p *Portfolio) HoldingFor(symbol string) (*Holding, bool) {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			return &p.Holdings[i], true
		}
	}
	return nil, false
}

// Count returns the number of holdings.
func (p *Portfolio) Count() int {
	return len(p.Holdings)
}

// HasSymbol reports whether the symbol is in this month's selection.
func (p *Portfolio) HasSymbol(symbol string) bool {
	for _, s := range p.TopN {
		if s == symbol {
			return true
		}
	}
	return false
}

// WasStoppedOut reports whether the symbol hit its stop-loss this
// month. A stopped-out stock is never carried into the next month; if
// it re-qualifies it is re-entered as new.
func (p *Portfolio) WasStoppedOut(symbol string) bool {
	for _, s := range p.StopLossTriggered {
		if s == symbol {
			return true
		}
	}
	return false
}
