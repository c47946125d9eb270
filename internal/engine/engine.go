package engine

import (
	"fmt"

	"github.com/quantmill/momentum/internal/calendar"
	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/marketdata"
	"github.com/quantmill/momentum/internal/rebalance"
	"github.com/quantmill/momentum/internal/scoring"
	"github.com/quantmill/momentum/internal/selection"
	"github.com/quantmill/momentum/pkg/logger"
)

// Config holds every parameter of a monthly rebalancing run. It is
// passed in explicitly; the engine keeps no ambient state.
type Config struct {
	TopN            int
	LookbackMonths  int
	Criterion       scoring.Criterion
	Absolute        bool
	StopLossPercent float64 // 0 disables stop-loss tracking
	MinMonthlyValue float64 // liquidity filter threshold
	EMATimeframe    int     // trend filter EMA, default 200
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TopN:            30,
		LookbackMonths:  12,
		Criterion:       scoring.CriterionMScore,
		Absolute:        true,
		StopLossPercent: 0,
		MinMonthlyValue: 10_000_000,
		EMATimeframe:    200,
	}
}

// Engine computes one month's portfolio from aligned market data and
// the prior month's portfolio: score, rank, filter, then reconcile.
// ⭐ SSOT: the monthly pipeline is composed here and nowhere else.
type Engine struct {
	config     Config
	scorer     *scoring.Engine
	pipeline   *selection.Pipeline
	rebalancer *rebalance.Rebalancer
	logger     *logger.Logger
}

// New creates an engine with the standard filter chain applied in
// order: trend, then 52-week-high proximity, then liquidity.
func New(config Config, log *logger.Logger) *Engine {
	if config.EMATimeframe <= 0 {
		config.EMATimeframe = 200
	}

	scorer := scoring.NewEngine(scoring.Config{
		LookbackMonths: config.LookbackMonths,
		Criterion:      config.Criterion,
		Absolute:       config.Absolute,
	}, log)

	pipeline := selection.NewPipeline([]selection.Filter{
		selection.NewTrendFilter(),
		selection.NewHighProximityFilter(),
		selection.NewLiquidityFilter(config.MinMonthlyValue),
	}, log)

	rebalancer := rebalance.NewRebalancer(rebalance.Config{
		StopLossPercent: config.StopLossPercent,
	}, log)

	return &Engine{
		config:     config,
		scorer:     scorer,
		pipeline:   pipeline,
		rebalancer: rebalancer,
		logger:     log,
	}
}

// RunMonth produces the month's portfolio. Derived series (EMA,
// scores) are recomputed from the matrices on every call; nothing is
// cached between invocations.
func (e *Engine) RunMonth(
	prices, volumes *marketdata.Matrix,
	month contracts.MonthKey,
	prior *contracts.Portfolio,
) (*contracts.Portfolio, error) {
	prices, volumes, err := marketdata.Align(prices, volumes)
	if err != nil {
		return nil, fmt.Errorf("matrix alignment failed: %w", err)
	}

	resolver := calendar.NewResolver(prices.Dates())
	dates, err := resolver.TradingDates(month)
	if err != nil {
		return nil, err
	}

	ema, err := scoring.EMA(prices, e.config.EMATimeframe)
	if err != nil {
		return nil, fmt.Errorf("ema computation failed: %w", err)
	}

	ranked, err := e.scorer.Rank(prices, month)
	if err != nil {
		return nil, fmt.Errorf("ranking failed for %s: %w", month, err)
	}

	topN, err := e.pipeline.TopN(selection.Input{
		Prices:    prices,
		Volumes:   volumes,
		EMASeries: []*marketdata.Matrix{ema},
		Dates:     dates,
	}, ranked, e.config.TopN)
	if err != nil {
		return nil, fmt.Errorf("selection failed for %s: %w", month, err)
	}

	portfolio, err := e.rebalancer.Rebalance(prices, month, dates, topN, prior)
	if err != nil {
		return nil, fmt.Errorf("rebalance failed for %s: %w", month, err)
	}

	return portfolio, nil
}
