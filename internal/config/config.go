// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// Defaults for values that are not set by file, environment or flags.
const (
	DefaultPort      = 8080
	DefaultRateLimit = 10.0 // requests per second per client
	DefaultRateBurst = 20
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or come from the
// environment and CLI flags.
type Config struct {
	// Sources
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Data        string `json:"data,omitempty"`         // Path to a JSON dataset, used when no database is set
	Catalog     string `json:"catalog,omitempty"`      // Path to a catalog override YAML

	// Ranking
	MinThreshold    *float64        `json:"min_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	Limit           int             `json:"limit,omitempty" validate:"gte=0,lte=1000"`
	Workers         int             `json:"workers,omitempty" validate:"gte=0"`
	Weights         ranking.Weights `json:"weights,omitempty"`
	OrganizationKey string          `json:"organization_key,omitempty" validate:"omitempty,oneof=first_word full_name"`

	// Server
	Port      int     `json:"port,omitempty" validate:"gte=0,lte=65535"`
	RateLimit float64 `json:"rate_limit,omitempty" validate:"gte=0"`
	RateBurst int     `json:"rate_burst,omitempty" validate:"gte=0"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"`  // Print detailed debug information
	LogJSON bool `json:"log_json,omitempty"` // Emit JSON logs instead of console output
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check that a data source is present since that is
// only required by commands that read records.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if !c.Weights.IsZero() {
		if err := c.Weights.Validate(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	// Validate file paths exist (if specified)
	if c.Data != "" {
		if _, err := os.Stat(c.Data); os.IsNotExist(err) {
			return fmt.Errorf("config error: data file not found: %s", c.Data)
		}
	}
	if c.Catalog != "" {
		if _, err := os.Stat(c.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("config error: catalog file not found: %s", c.Catalog)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults,
// then from built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Data == "" {
		result.Data = defaults.Data
	}
	if result.Catalog == "" {
		result.Catalog = defaults.Catalog
	}
	if result.OrganizationKey == "" {
		result.OrganizationKey = defaults.OrganizationKey
	}
	if result.OrganizationKey == "" {
		result.OrganizationKey = parsing.FirstWordPolicy.String()
	}

	// Numeric fields: use default if zero
	if result.MinThreshold == nil {
		result.MinThreshold = defaults.MinThreshold
	}
	if result.MinThreshold == nil {
		threshold := types.DefaultMinThreshold
		result.MinThreshold = &threshold
	}
	result.Limit = firstPositive(result.Limit, defaults.Limit, types.DefaultLimit)
	result.Workers = firstPositive(result.Workers, defaults.Workers)
	result.Port = firstPositive(result.Port, defaults.Port, DefaultPort)
	result.RateBurst = firstPositive(result.RateBurst, defaults.RateBurst, DefaultRateBurst)
	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}
	if result.RateLimit == 0 {
		result.RateLimit = DefaultRateLimit
	}
	if result.Weights.IsZero() {
		result.Weights = defaults.Weights
	}
	if result.Weights.IsZero() {
		result.Weights = ranking.DefaultWeights()
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Threshold returns the minimum threshold, or the default when unset.
func (c *Config) Threshold() float64 {
	if c.MinThreshold == nil {
		return types.DefaultMinThreshold
	}
	return *c.MinThreshold
}

// Policy returns the parsed organization key policy.
func (c *Config) Policy() (parsing.OrganizationPolicy, error) {
	return parsing.ParseOrganizationPolicy(c.OrganizationKey)
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
