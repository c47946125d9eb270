package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// ⭐ SSOT: every environment variable is read here and nowhere else.
type Config struct {
	Env string // development, staging, production

	// Database
	Database DatabaseConfig

	// Market data files (date x symbol CSV exports)
	PriceDataPath  string
	VolumeDataPath string

	// Strategy
	Strategy StrategyConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// StrategyConfig holds the default rebalancing strategy parameters for
// the CLI. The engine itself takes an explicit engine.Config so library
// callers are never coupled to the environment.
type StrategyConfig struct {
	Version          string   // strategy version tag, e.g. "V3"
	Universes        []string // index universe names, e.g. NIFTY50,NIFTY500
	TopN             int      // holdings per month
	LookbackMonths   int      // trailing return window
	SortingCriterion string   // "ttm" or "m_score"
	AbsoluteStdDev   bool     // downside-only volatility for m_score
	StopLossPercent  float64  // positive percent; 0 disables tracking
	MinMonthlyValue  float64  // liquidity filter threshold (mean of price*volume)
}

// Load reads configuration from environment variables.
// ⭐ SSOT: this is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		PriceDataPath:  getEnv("PRICE_DATA_PATH", "NSE_PRICE_DATA.csv"),
		VolumeDataPath: getEnv("VOLUME_DATA_PATH", "NSE_VOLUME_DATA.csv"),

		Strategy: StrategyConfig{
			Version:          getEnv("STRATEGY_VERSION", "V3"),
			Universes:        getEnvAsList("INDEX_LIST", "NIFTY500"),
			TopN:             getEnvAsInt("TOP_N_STOCKS", 30),
			LookbackMonths:   getEnvAsInt("LOOKBACK_MONTHS", 12),
			SortingCriterion: getEnv("SORTING_CRITERION", "m_score"),
			AbsoluteStdDev:   getEnvAsBool("ABSOLUTE_STD_DEV", true),
			StopLossPercent:  getEnvAsFloat("STOP_LOSS_PERCENT", 0),
			MinMonthlyValue:  getEnvAsFloat("MIN_MONTHLY_VALUE", 10_000_000),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Strategy.TopN <= 0 {
		return fmt.Errorf("TOP_N_STOCKS must be positive")
	}

	if c.Strategy.SortingCriterion != "ttm" && c.Strategy.SortingCriterion != "m_score" {
		return fmt.Errorf("SORTING_CRITERION must be one of: ttm, m_score")
	}

	if c.Strategy.StopLossPercent < 0 {
		return fmt.Errorf("STOP_LOSS_PERCENT must not be negative")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to the executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// Helper functions (private, only used within this file)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
