package selection

import (
	"fmt"

	"github.com/quantmill/momentum/pkg/logger"
)

// Pipeline applies an ordered sequence of filters to a rank-ordered
// candidate list as a conjunction: the pool after filter i is exactly
// the candidates from the pool after filter i-1 that satisfy filter i.
// Relative rank order is always preserved, every filter sees the whole
// surviving pool, and only the final result is truncated to N.
// ⭐ SSOT: top-N selection lives here.
type Pipeline struct {
	filters []Filter
	logger  *logger.Logger
}

// NewPipeline creates a filter pipeline.
func NewPipeline(filters []Filter, log *logger.Logger) *Pipeline {
	return &Pipeline{filters: filters, logger: log}
}

// TopN runs the candidates through every filter and returns the first
// n survivors in rank order. Fewer than n survivors are returned as-is
// (no padding).
func (p *Pipeline) TopN(in Input, ranked []string, n int) ([]string, error) {
	pool := ranked

	for _, filter := range p.filters {
		survivors := make([]string, 0, len(pool))
		for _, symbol := range pool {
			ok, err := filter.Passes(in, symbol)
			if err != nil {
				return nil, fmt.Errorf("filter %s failed for %s: %w", filter.Name(), symbol, err)
			}
			if ok {
				survivors = append(survivors, symbol)
			}
		}

		if p.logger != nil {
			p.logger.WithFields(map[string]interface{}{
				"filter":    filter.Name(),
				"in":        len(pool),
				"out":       len(survivors),
				"roll_over": in.Dates.RollOver.Format("2006-01-02"),
			}).Debug("Filter applied")
		}

		pool = survivors
	}

	if len(pool) > n {
		pool = pool[:n]
	}
	return pool, nil
}
