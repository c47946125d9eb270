package engine

import (
	"context"
	"fmt"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/marketdata"
	"github.com/quantmill/momentum/internal/orders"
	"github.com/quantmill/momentum/internal/rebalance"
	"github.com/quantmill/momentum/pkg/logger"
)

// Service wires the engine to its collaborators for a production
// monthly run: it pulls the prior month's portfolio from storage,
// computes the new one, persists it and appends the resulting order
// intents to the ledger.
type Service struct {
	engine     *Engine
	strategy   string
	portfolios *rebalance.Repository
	orderGen   *orders.Generator
	ledger     *orders.Repository
	logger     *logger.Logger
}

// NewService creates the monthly rebalancing service.
func NewService(
	engine *Engine,
	strategy string,
	portfolios *rebalance.Repository,
	orderGen *orders.Generator,
	ledger *orders.Repository,
	log *logger.Logger,
) *Service {
	return &Service{
		engine:     engine,
		strategy:   strategy,
		portfolios: portfolios,
		orderGen:   orderGen,
		ledger:     ledger,
		logger:     log,
	}
}

// RebalanceMonth runs one universe for one month end to end. The
// matrices must already be sliced to the universe's symbols.
func (s *Service) RebalanceMonth(
	ctx context.Context,
	universe string,
	prices, volumes *marketdata.Matrix,
	month contracts.MonthKey,
) (*contracts.Portfolio, error) {
	prior, err := s.portfolios.Fetch(ctx, s.strategy, universe, month.Prev())
	if err != nil {
		return nil, fmt.Errorf("failed to load prior portfolio: %w", err)
	}

	portfolio, err := s.engine.RunMonth(prices, volumes, month, prior)
	if err != nil {
		return nil, err
	}

	if err := s.portfolios.Save(ctx, s.strategy, universe, portfolio); err != nil {
		return nil, err
	}

	orderBatch := s.orderGen.Generate(s.strategy, universe, portfolio, prior)
	if err := s.ledger.Append(ctx, orderBatch); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"strategy": s.strategy,
		"universe": universe,
		"month":    month.String(),
		"holdings": len(portfolio.Holdings),
		"orders":   len(orderBatch),
		"return":   portfolio.AggregateReturn,
	}).Info("Monthly rebalance persisted")

	return portfolio, nil
}
