package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/pkg/logger"
)

// Generator turns a month's rebalance diff into order intents: buys
// for the added set, sells for the removed set. Orders are intents
// only; placement and execution belong to downstream collaborators.
type Generator struct {
	logger *logger.Logger
}

// NewGenerator creates an order generator.
func NewGenerator(log *logger.Logger) *Generator {
	return &Generator{logger: log}
}

// Generate builds the pending buy and sell orders for a rebalanced
// month. Sell orders are keyed to the prior month (they close out the
// prior portfolio's positions); buys to the current one. All orders
// carry the month's first trading date as placement date.
func (g *Generator) Generate(strategy, universe string, p, prior *contracts.Portfolio) []contracts.Order {
	now := time.Now().UTC()
	placement := p.TradingDates.First

	out := make([]contracts.Order, 0, len(p.Added)+len(p.Removed))

	for _, symbol := range p.Removed {
		order := contracts.Order{
			ID:            uuid.NewString(),
			Symbol:        symbol,
			Type:          contracts.OrderTypeSell,
			Status:        contracts.OrderStatusPending,
			Strategy:      strategy,
			Universe:      universe,
			Month:         p.Month.Prev(),
			PlacementDate: placement,
			CreatedAt:     now,
		}
		if prior != nil {
			if h, ok := prior.HoldingFor(symbol); ok {
				order.ReferencePrice = h.FinalPrice
			}
		}
		out = append(out, order)
	}

	for _, symbol := range p.Added {
		order := contracts.Order{
			ID:            uuid.NewString(),
			Symbol:        symbol,
			Type:          contracts.OrderTypeBuy,
			Status:        contracts.OrderStatusPending,
			Strategy:      strategy,
			Universe:      universe,
			Month:         p.Month,
			PlacementDate: placement,
			CreatedAt:     now,
		}
		if h, ok := p.HoldingFor(symbol); ok {
			order.ReferencePrice = h.InitialPrice
		}
		out = append(out, order)
	}

	if g.logger != nil {
		g.logger.WithFields(map[string]interface{}{
			"strategy": strategy,
			"universe": universe,
			"month":    p.Month.String(),
			"buys":     len(p.Added),
			"sells":    len(p.Removed),
		}).Info("Orders generated")
	}

	return out
}
