// Package config loads runtime settings for the pagelayout command from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds command configuration
type Config struct {
	// Parallel page workers
	Workers int

	// Geometric tolerance in points
	Tolerance float64

	// Margin used when a page has no blocks, and the cap for every side
	NormalMargin float64

	// Rects thinner than this are border candidates
	MaxBorderWidth float64

	// Debug logging
	Debug bool

	// Directory for per-page debug plots; empty disables plotting
	PlotDir string
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Workers:        runtime.NumCPU(),
		Tolerance:      1.0,
		NormalMargin:   72.0,
		MaxBorderWidth: 6.0,
	}
}

// Load reads the given .env files (missing files are ignored) and then the
// PAGELAYOUT_* environment variables. Existing environment variables take
// precedence over .env entries.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	def := Default()
	cfg := &Config{
		Workers:        getEnvAsIntOrDefault("PAGELAYOUT_WORKERS", def.Workers),
		Tolerance:      getEnvAsFloatOrDefault("PAGELAYOUT_TOLERANCE", def.Tolerance),
		NormalMargin:   getEnvAsFloatOrDefault("PAGELAYOUT_NORMAL_MARGIN", def.NormalMargin),
		MaxBorderWidth: getEnvAsFloatOrDefault("PAGELAYOUT_MAX_BORDER_WIDTH", def.MaxBorderWidth),
		Debug:          getEnvAsBoolOrDefault("PAGELAYOUT_DEBUG", def.Debug),
		PlotDir:        getEnvOrDefault("PAGELAYOUT_PLOT_DIR", def.PlotDir),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Workers < 1 || c.Workers > 256 {
		return fmt.Errorf("PAGELAYOUT_WORKERS must be between 1 and 256, got %d", c.Workers)
	}

	if c.Tolerance < 0 {
		return fmt.Errorf("PAGELAYOUT_TOLERANCE must not be negative, got %g", c.Tolerance)
	}

	if c.NormalMargin <= 0 {
		return fmt.Errorf("PAGELAYOUT_NORMAL_MARGIN must be positive, got %g", c.NormalMargin)
	}

	if c.MaxBorderWidth <= 0 {
		return fmt.Errorf("PAGELAYOUT_MAX_BORDER_WIDTH must be positive, got %g", c.MaxBorderWidth)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
