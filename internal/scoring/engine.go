package scoring

import (
	"fmt"
	"sort"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/marketdata"
	"github.com/quantmill/momentum/pkg/logger"
)

// Criterion selects which score orders the universe. Both criteria
// produce a total order over the same symbol set; the choice is
// configuration, not a different algorithm.
type Criterion string

const (
	CriterionTTM    Criterion = "ttm"
	CriterionMScore Criterion = "m_score"
)

// ParseCriterion validates a criterion string from configuration.
func ParseCriterion(s string) (Criterion, error) {
	switch Criterion(s) {
	case CriterionTTM, CriterionMScore:
		return Criterion(s), nil
	default:
		return "", fmt.Errorf("unknown sorting criterion %q", s)
	}
}

// Config holds the scoring parameters.
type Config struct {
	LookbackMonths int
	Criterion      Criterion
	Absolute       bool // downside-only deviation for m_score
}

// Engine computes momentum scores and rank orders for a month.
// ⭐ SSOT: momentum scoring lives here.
type Engine struct {
	config Config
	logger *logger.Logger
}

// NewEngine creates a scoring engine.
func NewEngine(config Config, log *logger.Logger) *Engine {
	return &Engine{config: config, logger: log}
}

// Scores computes the configured score for every symbol for the month.
func (e *Engine) Scores(data *marketdata.Matrix, month contracts.MonthKey) (*MonthScores, error) {
	ttm, err := TTM(data, month, e.config.LookbackMonths)
	if err != nil {
		return nil, err
	}

	if e.config.Criterion == CriterionTTM {
		return ttm, nil
	}

	daily := DailyChange(data)
	return MScore(ttm, daily, e.config.LookbackMonths, e.config.Absolute), nil
}

// Rank returns every symbol ordered by descending score for the month.
// Ties keep the matrix's column order (stable sort).
func (e *Engine) Rank(data *marketdata.Matrix, month contracts.MonthKey) ([]string, error) {
	scores, err := e.Scores(data, month)
	if err != nil {
		return nil, err
	}

	ranked := append([]string(nil), data.Symbols()...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores.Scores[ranked[i]] > scores.Scores[ranked[j]]
	})

	if e.logger != nil && len(ranked) > 0 {
		e.logger.WithFields(map[string]interface{}{
			"month":     month.String(),
			"criterion": string(e.config.Criterion),
			"symbols":   len(ranked),
			"top":       ranked[0],
			"top_score": scores.Scores[ranked[0]],
		}).Debug("Universe ranked")
	}

	return ranked, nil
}
