package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Backtest economics
	InitialCapital float64
	MinEV          float64

	// Calibrator
	CalibratorMinCount int
	CalibratorAlpha    float64 // Jeffreys-prior Beta posterior quantile used as the lower bound

	// Cost model
	TakerFee   float64
	GasCost    float64
	BorrowRate float64

	// Risk / exposure ledger
	KellyLambda float64
	MaxFraction float64
	CategoryCap float64
	NegRiskCap  float64
	MarketCap   float64

	// Feature join
	TimeCutHours float64

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string

	// Cache
	CacheNumCounters int64
	CacheMaxCost     int64
	CacheBufferItems int64
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Backtest economics defaults
		InitialCapital: getFloat64OrDefault("INITIAL_CAPITAL", 100000.0),
		MinEV:          getFloat64OrDefault("MIN_EV", 0.0),

		// Calibrator defaults
		CalibratorMinCount: getIntOrDefault("CALIBRATOR_MIN_COUNT", 2),
		CalibratorAlpha:    getFloat64OrDefault("CALIBRATOR_ALPHA", 0.05),

		// Cost model defaults
		TakerFee:   getFloat64OrDefault("TAKER_FEE", 0.01),
		GasCost:    getFloat64OrDefault("GAS_COST", 0.0),
		BorrowRate: getFloat64OrDefault("BORROW_RATE", 0.0),

		// Risk defaults
		KellyLambda: getFloat64OrDefault("KELLY_LAMBDA", 0.4),
		MaxFraction: getFloat64OrDefault("MAX_FRACTION", 0.25),
		CategoryCap: getFloat64OrDefault("CATEGORY_CAP", 0.4),
		NegRiskCap:  getFloat64OrDefault("NEG_RISK_CAP", 0.4),
		MarketCap:   getFloat64OrDefault("MARKET_CAP", 0.5),

		// Feature join defaults
		TimeCutHours: getFloat64OrDefault("TIME_CUT_HOURS", 4.0),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "backtest"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "backtest123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "polymarket_backtest"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		// Cache defaults
		CacheNumCounters: getInt64OrDefault("CACHE_NUM_COUNTERS", 1e7),
		CacheMaxCost:     getInt64OrDefault("CACHE_MAX_COST", 1<<26),
		CacheBufferItems: getInt64OrDefault("CACHE_BUFFER_ITEMS", 64),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() (err error) {
	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT cannot be empty")
	}

	if c.InitialCapital <= 0 {
		return fmt.Errorf("INITIAL_CAPITAL must be positive, got %f", c.InitialCapital)
	}

	if c.CalibratorMinCount < 1 {
		return fmt.Errorf("CALIBRATOR_MIN_COUNT must be at least 1, got %d", c.CalibratorMinCount)
	}

	if c.CalibratorAlpha <= 0 || c.CalibratorAlpha >= 1.0 {
		return fmt.Errorf("CALIBRATOR_ALPHA must be between 0 and 1.0, got %f", c.CalibratorAlpha)
	}

	if c.TakerFee < 0 {
		return fmt.Errorf("TAKER_FEE must be non-negative, got %f", c.TakerFee)
	}

	if c.KellyLambda <= 0 {
		return fmt.Errorf("KELLY_LAMBDA must be positive, got %f", c.KellyLambda)
	}

	if c.MaxFraction <= 0 || c.MaxFraction > 1.0 {
		return fmt.Errorf("MAX_FRACTION must be in (0, 1.0], got %f", c.MaxFraction)
	}

	for name, cap := range map[string]float64{
		"CATEGORY_CAP": c.CategoryCap,
		"NEG_RISK_CAP": c.NegRiskCap,
		"MARKET_CAP":   c.MarketCap,
	} {
		if cap <= 0 || cap > 1.0 {
			return fmt.Errorf("%s must be in (0, 1.0], got %f", name, cap)
		}
	}

	if c.TimeCutHours < 0 {
		return fmt.Errorf("TIME_CUT_HOURS must be non-negative, got %f", c.TimeCutHours)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

