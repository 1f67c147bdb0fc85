// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// HTTPAddr is the listen address for the websocket and health
	// endpoints.
	HTTPAddr string `env:"EMBERHOLLOW_HTTP_ADDR" envDefault:":8080"`

	// SavePath is the sqlite database file. ":memory:" keeps saves
	// for the process lifetime only.
	SavePath string `env:"EMBERHOLLOW_SAVE_PATH" envDefault:"emberhollow.db"`

	// TickInterval drives the simulation loop.
	TickInterval time.Duration `env:"EMBERHOLLOW_TICK_INTERVAL" envDefault:"100ms"`

	// AutosaveInterval bounds how much progress a crash can lose.
	AutosaveInterval time.Duration `env:"EMBERHOLLOW_AUTOSAVE_INTERVAL" envDefault:"30s"`

	// FleePenaltyPercent of current HP is lost when fleeing combat.
	FleePenaltyPercent float64 `env:"EMBERHOLLOW_FLEE_PENALTY_PERCENT" envDefault:"0"`

	// Seed fixes the random source for reproducible runs; zero draws
	// from the clock.
	Seed int64 `env:"EMBERHOLLOW_SEED" envDefault:"0"`

	// LogJSONPath, when set, mirrors events to an NDJSON file next to
	// the console sink.
	LogJSONPath string `env:"EMBERHOLLOW_LOG_JSON_PATH"`

	// LogLevel is the minimum severity ("debug", "info", "warn",
	// "error").
	LogLevel string `env:"EMBERHOLLOW_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave interval must be positive, got %s", c.AutosaveInterval)
	}
	if c.FleePenaltyPercent < 0 || c.FleePenaltyPercent > 100 {
		return fmt.Errorf("flee penalty must be within [0,100], got %v", c.FleePenaltyPercent)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
