package engine

import (
	"fmt"
	"sync"

	"github.com/quantmill/momentum/internal/audit"
	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/marketdata"
	"github.com/quantmill/momentum/pkg/logger"
)

// UniverseData is one index universe's aligned market data slice.
type UniverseData struct {
	Name    string
	Prices  *marketdata.Matrix
	Volumes *marketdata.Matrix
}

// BacktestResult holds a universe's full backtest output.
type BacktestResult struct {
	Universe   string
	Portfolios []*contracts.Portfolio
	Report     *audit.Report
}

// Backtester replays the monthly recurrence over a date range. Months
// within one universe form a strict sequential dependency chain (each
// month's portfolio is an input to the next) and are never reordered;
// independent universes share no mutable state and run in parallel.
type Backtester struct {
	engine   *Engine
	analyzer *audit.Analyzer
	logger   *logger.Logger
}

// NewBacktester creates a backtester.
func NewBacktester(engine *Engine, analyzer *audit.Analyzer, log *logger.Logger) *Backtester {
	if analyzer == nil {
		analyzer = audit.NewAnalyzer()
	}
	return &Backtester{engine: engine, analyzer: analyzer, logger: log}
}

// Run backtests one universe from month `from` through `to`
// inclusive, chaining each month's portfolio into the next.
func (b *Backtester) Run(data UniverseData, from, to contracts.MonthKey) (*BacktestResult, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("backtest range is empty: %s after %s", from, to)
	}

	result := &BacktestResult{Universe: data.Name}
	series := make([]audit.MonthlyReturn, 0, 64)

	var prior *contracts.Portfolio
	for month := from; !to.Before(month); month = month.Next() {
		portfolio, err := b.engine.RunMonth(data.Prices, data.Volumes, month, prior)
		if err != nil {
			return nil, fmt.Errorf("universe %s: %w", data.Name, err)
		}

		result.Portfolios = append(result.Portfolios, portfolio)
		series = append(series, audit.MonthlyReturn{
			Month:     month,
			ReturnPct: portfolio.AggregateReturn,
		})
		prior = portfolio
	}

	result.Report = b.analyzer.Analyze(series)

	if b.logger != nil {
		b.logger.WithFields(map[string]interface{}{
			"universe":     data.Name,
			"months":       len(result.Portfolios),
			"final_value":  result.Report.FinalValue,
			"max_drawdown": result.Report.MaxDrawdown,
		}).Info("Backtest completed")
	}

	return result, nil
}

// RunAll backtests several universes concurrently, one worker per
// universe. Each worker owns its matrices and portfolio chain, so no
// locking is needed beyond collecting results.
func (b *Backtester) RunAll(universes []UniverseData, from, to contracts.MonthKey) (map[string]*BacktestResult, error) {
	results := make(map[string]*BacktestResult, len(universes))
	errs := make([]error, len(universes))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, data := range universes {
		wg.Add(1)
		go func(i int, data UniverseData) {
			defer wg.Done()

			result, err := b.Run(data, from, to)
			if err != nil {
				errs[i] = err
				return
			}

			mu.Lock()
			results[data.Name] = result
			mu.Unlock()
		}(i, data)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
