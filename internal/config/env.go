// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mmynk/racha/internal/calculator"
)

// Config holds everything cmd/server needs at startup.
type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	DBPath   string `env:"DB_PATH" envDefault:"./data/racha.db"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// StatusOnAmountChange is "reset" or "carry".
	StatusOnAmountChange    string `env:"STATUS_ON_AMOUNT_CHANGE" envDefault:"reset"`
	IncludeIdleParticipants bool   `env:"INCLUDE_IDLE_PARTICIPANTS" envDefault:"false"`
	PruneStaleConfirmations bool   `env:"PRUNE_STALE_CONFIRMATIONS" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment and validates the enumerated values.
func Load() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.StatusPolicy(); err != nil {
		return nil, fmt.Errorf("STATUS_ON_AMOUNT_CHANGE: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}
	return &cfg, nil
}

// StatusPolicy returns the parsed amount-change policy.
func (c *Config) StatusPolicy() (calculator.StatusPolicy, error) {
	return calculator.ParseStatusPolicy(c.StatusOnAmountChange)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
