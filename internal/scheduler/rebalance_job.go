package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/engine"
	"github.com/quantmill/momentum/internal/marketdata"
	"github.com/quantmill/momentum/pkg/logger"
)

// historyYears controls how much price history is pulled for a run.
// Long moving averages plus the lookback window need well over a year.
const historyYears = 3

// RebalanceJob recomputes the monthly portfolio for every configured
// universe and writes the result plus its order ledger entries.
type RebalanceJob struct {
	service   *engine.Service
	data      *marketdata.Repository
	universes []string
	logger    *logger.Logger
}

// NewRebalanceJob creates the monthly rebalance job.
func NewRebalanceJob(
	service *engine.Service,
	data *marketdata.Repository,
	universes []string,
	log *logger.Logger,
) *RebalanceJob {
	return &RebalanceJob{
		service:   service,
		data:      data,
		universes: universes,
		logger:    log,
	}
}

func (j *RebalanceJob) Name() string { return "monthly-rebalance" }

// Run rebalances the current calendar month for each universe.
// Universes are independent, so one failure does not stop the rest.
func (j *RebalanceJob) Run(ctx context.Context) error {
	month := contracts.MonthKeyOf(time.Now().UTC())
	from := month.Start().AddDate(-historyYears, 0, 0)
	to := month.End()

	var failed int
	for _, universe := range j.universes {
		log := j.logger.WithFields(map[string]interface{}{
			"universe": universe,
			"month":    month.String(),
		})

		prices, volumes, err := j.data.LoadMatrices(ctx, universe, from, to)
		if err != nil {
			log.WithError(err).Error("Failed to load market data")
			failed++
			continue
		}

		if _, err := j.service.RebalanceMonth(ctx, universe, prices, volumes, month); err != nil {
			log.WithError(err).Error("Rebalance failed")
			failed++
			continue
		}
	}

	if failed > 0 {
		return fmt.Errorf("rebalance failed for %d of %d universes", failed, len(j.universes))
	}
	return nil
}
