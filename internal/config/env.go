package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by FromEnv.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvData        = "MATCHER_DATA"
	EnvCatalog     = "MATCHER_CATALOG"
	EnvPort        = "MATCHER_PORT"
	EnvWorkers     = "MATCHER_WORKERS"
)

// FromEnv builds a Config from environment variables. Unset variables leave
// fields at their zero value so the result can be merged as defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL: os.Getenv(EnvDatabaseURL),
		Data:        os.Getenv(EnvData),
		Catalog:     os.Getenv(EnvCatalog),
	}

	var err error
	if cfg.Port, err = intFromEnv(EnvPort); err != nil {
		return Config{}, err
	}
	if cfg.Workers, err = intFromEnv(EnvWorkers); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func intFromEnv(name string) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must be non-negative, got: %d", name, n)
	}
	return n, nil
}
