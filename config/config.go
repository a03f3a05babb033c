// Package config loads runtime settings from LIBRARY_* environment variables.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Prefix is prepended to every variable name below.
const Prefix = "LIBRARY_"

type Config struct {
	Database DatabaseConfig
	Log      LogConfig

	// PasswordScheme is the format newly registered secrets are stored in.
	PasswordScheme string `env:"PASSWORD_SCHEME, default=sha256" validate:"oneof=sha256 bcrypt"`
	LoanPeriodDays int    `env:"LOAN_PERIOD_DAYS, default=15"    validate:"gte=1"`
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER, default=sqlite3"   validate:"oneof=sqlite3 postgres"`
	DSN    string `env:"DB_DSN,    default=library.db" validate:"required"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL,  default=warn" validate:"oneof=trace debug info warn warning error"`
	Pretty bool   `env:"LOG_PRETTY, default=true"`
}

// LoanPeriod converts LoanPeriodDays to a duration.
func (c *Config) LoanPeriod() time.Duration {
	return time.Duration(c.LoanPeriodDays) * 24 * time.Hour
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads from l, which lets tests supply a fixed environment.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(Prefix, l),
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
