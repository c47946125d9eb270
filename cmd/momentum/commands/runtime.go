package commands

import (
	"fmt"
	"time"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/engine"
	"github.com/quantmill/momentum/internal/marketdata"
	"github.com/quantmill/momentum/internal/scoring"
	"github.com/quantmill/momentum/pkg/config"
	"github.com/quantmill/momentum/pkg/logger"
)

// initRuntime loads configuration and builds the logger. Every command
// goes through here so flags and env handling stay in one place.
func initRuntime() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	return cfg, log, nil
}

// engineConfig maps the environment strategy block onto engine.Config.
func engineConfig(cfg *config.Config) (engine.Config, error) {
	criterion, err := scoring.ParseCriterion(cfg.Strategy.SortingCriterion)
	if err != nil {
		return engine.Config{}, err
	}

	ec := engine.DefaultConfig()
	ec.TopN = cfg.Strategy.TopN
	ec.LookbackMonths = cfg.Strategy.LookbackMonths
	ec.Criterion = criterion
	ec.Absolute = cfg.Strategy.AbsoluteStdDev
	ec.StopLossPercent = cfg.Strategy.StopLossPercent
	ec.MinMonthlyValue = cfg.Strategy.MinMonthlyValue
	return ec, nil
}

// loadCSVMatrices reads the configured price and volume exports.
// Zeros are forward filled only up to the cutoff so months after the
// export's end stay empty instead of repeating the last close.
func loadCSVMatrices(cfg *config.Config, log *logger.Logger, cutoff time.Time) (*marketdata.Matrix, *marketdata.Matrix, error) {
	loader := marketdata.NewLoader(cutoff, log)

	prices, err := loader.LoadFile(cfg.PriceDataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load prices: %w", err)
	}
	volumes, err := loader.LoadFile(cfg.VolumeDataPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load volumes: %w", err)
	}
	return prices, volumes, nil
}

// parseMonth parses a YYYY-MM flag value.
func parseMonth(s string) (contracts.MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return contracts.MonthKey{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return contracts.MonthKeyOf(t), nil
}
