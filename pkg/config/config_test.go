package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}
	if cfg.Strategy.TopN != 30 {
		t.Errorf("Expected TopN to be 30, got %d", cfg.Strategy.TopN)
	}
	if cfg.Strategy.SortingCriterion != "m_score" {
		t.Errorf("Expected SortingCriterion to be m_score, got %s", cfg.Strategy.SortingCriterion)
	}
	if !cfg.Strategy.AbsoluteStdDev {
		t.Error("Expected AbsoluteStdDev to default to true")
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("Expected DB MaxConns to be 10, got %d", cfg.Database.MaxConns)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("ENV", "production")
	os.Setenv("TOP_N_STOCKS", "15")
	os.Setenv("INDEX_LIST", "NIFTY50, NIFTY500")
	os.Setenv("SORTING_CRITERION", "ttm")
	os.Setenv("STOP_LOSS_PERCENT", "10")

	defer func() {
		os.Unsetenv("ENV")
		os.Unsetenv("TOP_N_STOCKS")
		os.Unsetenv("INDEX_LIST")
		os.Unsetenv("SORTING_CRITERION")
		os.Unsetenv("STOP_LOSS_PERCENT")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}
	if cfg.Strategy.TopN != 15 {
		t.Errorf("Expected TopN to be 15, got %d", cfg.Strategy.TopN)
	}
	if len(cfg.Strategy.Universes) != 2 || cfg.Strategy.Universes[1] != "NIFTY500" {
		t.Errorf("Expected two trimmed universes, got %v", cfg.Strategy.Universes)
	}
	if cfg.Strategy.SortingCriterion != "ttm" {
		t.Errorf("Expected SortingCriterion to be ttm, got %s", cfg.Strategy.SortingCriterion)
	}
	if cfg.Strategy.StopLossPercent != 10 {
		t.Errorf("Expected StopLossPercent to be 10, got %v", cfg.Strategy.StopLossPercent)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"ENV":               "sandbox",
		"TOP_N_STOCKS":      "-5",
		"SORTING_CRITERION": "sharpe",
		"STOP_LOSS_PERCENT": "-1",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			os.Setenv(key, value)
			defer os.Unsetenv(key)

			if _, err := Load(); err == nil {
				t.Errorf("Expected validation error for %s=%s", key, value)
			}
		})
	}
}
