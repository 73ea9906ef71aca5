package simulator

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the order-flow simulator
type Config struct {
	// Flow settings
	StartPrice     float64
	MaxDriftPct    float64 // largest per-tick move of the mid price, in percent
	SpreadPct      float64 // distance of the first quote level from the mid, in percent
	LevelStepPct   float64 // distance between quote levels, in percent
	NumLevels      int
	MinOrderSize   int64
	MaxOrderSize   int64
	IcebergRatio   float64 // fraction of generated orders that hide size
	PeakFraction   float64 // iceberg peak as a fraction of total size
	UpdateInterval time.Duration

	SimulatorID string
	Seed        int64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("START_PRICE", 5000.0)
	v.SetDefault("MAX_DRIFT_PERCENT", 0.2)
	v.SetDefault("SPREAD_PERCENT", 0.1)
	v.SetDefault("LEVEL_STEP_PERCENT", 0.05)
	v.SetDefault("NUM_LEVELS", 3)
	v.SetDefault("MIN_ORDER_SIZE", 100)
	v.SetDefault("MAX_ORDER_SIZE", 10000)
	v.SetDefault("ICEBERG_RATIO", 0.2)
	v.SetDefault("PEAK_FRACTION", 0.25)
	v.SetDefault("UPDATE_INTERVAL_MS", 500)
	v.SetDefault("SIMULATOR_ID", "sim-01")
	v.SetDefault("SEED", 0)

	// Allow environment variables
	v.AutomaticEnv()

	cfg := &Config{
		StartPrice:     v.GetFloat64("START_PRICE"),
		MaxDriftPct:    v.GetFloat64("MAX_DRIFT_PERCENT"),
		SpreadPct:      v.GetFloat64("SPREAD_PERCENT"),
		LevelStepPct:   v.GetFloat64("LEVEL_STEP_PERCENT"),
		NumLevels:      v.GetInt("NUM_LEVELS"),
		MinOrderSize:   v.GetInt64("MIN_ORDER_SIZE"),
		MaxOrderSize:   v.GetInt64("MAX_ORDER_SIZE"),
		IcebergRatio:   v.GetFloat64("ICEBERG_RATIO"),
		PeakFraction:   v.GetFloat64("PEAK_FRACTION"),
		UpdateInterval: time.Duration(v.GetInt("UPDATE_INTERVAL_MS")) * time.Millisecond,
		SimulatorID:    v.GetString("SIMULATOR_ID"),
		Seed:           v.GetInt64("SEED"),
	}

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.StartPrice <= 0 {
		return fmt.Errorf("START_PRICE must be positive")
	}
	if cfg.SpreadPct <= 0 {
		return fmt.Errorf("SPREAD_PERCENT must be positive")
	}
	if cfg.LevelStepPct <= 0 {
		return fmt.Errorf("LEVEL_STEP_PERCENT must be positive")
	}
	if cfg.NumLevels <= 0 {
		return fmt.Errorf("NUM_LEVELS must be positive")
	}
	if cfg.MinOrderSize <= 0 || cfg.MaxOrderSize < cfg.MinOrderSize {
		return fmt.Errorf("order size range [%d, %d] is invalid", cfg.MinOrderSize, cfg.MaxOrderSize)
	}
	if cfg.IcebergRatio < 0 || cfg.IcebergRatio > 1 {
		return fmt.Errorf("ICEBERG_RATIO must be within [0, 1]")
	}
	if cfg.PeakFraction <= 0 || cfg.PeakFraction > 1 {
		return fmt.Errorf("PEAK_FRACTION must be within (0, 1]")
	}
	if cfg.UpdateInterval <= 0 {
		return fmt.Errorf("UPDATE_INTERVAL_MS must be positive")
	}
	if cfg.SimulatorID == "" {
		return fmt.Errorf("SIMULATOR_ID must not be empty")
	}
	return nil
}
