package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the planner service configuration.
type Config struct {
	// Listen is the HTTP service address.
	Listen string `mapstructure:"listen"`
	// MissionFile is loaded at service startup when set.
	MissionFile string `mapstructure:"mission_file"`
	// ZonesFile is an optional no-fly zone GeoJSON file.
	ZonesFile string `mapstructure:"zones_file"`
	// SafetyMargin is how far the pathfinding graph is inset from the
	// flight boundary, in meters.
	SafetyMargin float64 `mapstructure:"safety_margin"`
	// CellSize is the search grid cell side in meters.
	CellSize float64 `mapstructure:"cell_size"`
	// ViewRadius is the vehicle's view radius in cells.
	ViewRadius int `mapstructure:"view_radius"`
	// SimplifyTolerance reduces no-fly zone ring complexity; zero
	// disables simplification.
	SimplifyTolerance float64 `mapstructure:"simplify_tolerance"`
}

// DefaultConfig returns the configuration used when no config file is
// present.
func DefaultConfig() *Config {
	return &Config{
		Listen:       ":8080",
		SafetyMargin: 30,
		CellSize:     30,
		ViewRadius:   2,
	}
}

// LoadConfig reads a planner config file. Settings the file leaves out
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigWithDefaults reads a planner config file, falling back to
// the defaults when the file does not exist.
func LoadConfigWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

func (c *Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.SafetyMargin < 0 {
		return fmt.Errorf("safety margin must not be negative, got %g", c.SafetyMargin)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("cell size must be positive, got %g", c.CellSize)
	}
	if c.ViewRadius < 1 {
		return fmt.Errorf("view radius must be at least 1, got %d", c.ViewRadius)
	}
	return nil
}

// configPath resolves the --config flag, defaulting to planner.yaml in
// the working directory.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "planner.yaml"
}
