// Package config loads engine tuning and process settings from an optional
// YAML file and CASEFILE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/casefile/internal/catalog"
	"github.com/peterkuimelis/casefile/internal/game"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CASEFILE_"

// Config is the resolved process configuration.
type Config struct {
	Rules   game.Rules `yaml:"rules"`
	Catalog string     `yaml:"catalog" env:"CATALOG"` // content file; empty = built-in
	Seed    uint64     `yaml:"seed" env:"SEED"`       // 0 = pick one at startup
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{Rules: game.DefaultRules()}
}

// Load reads path over the defaults, then applies environment overrides
// and validates the rules. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config YAML: %w", err)
			}
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Rules.Validate(); err != nil {
		return Config{}, fmt.Errorf("rules: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CASEFILE_* variables. Unset variables
// leave the current value alone.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadCatalog returns the configured content file, or the built-in catalog.
func (c Config) LoadCatalog() (*game.Catalog, error) {
	if c.Catalog == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(c.Catalog)
}

// RunSeed returns Seed, or a clock-derived seed when it is 0.
func (c Config) RunSeed() uint64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return uint64(time.Now().UnixNano())
}
