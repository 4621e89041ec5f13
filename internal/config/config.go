// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/multierr"

	"github.com/MJE43/fair-go/internal/engine"
)

// Config is the runtime configuration of the fair service and CLI.
type Config struct {
	HTTPAddr       string        `env:"FAIR_HTTP_ADDR" envDefault:":8080"`
	RequestTimeout time.Duration `env:"FAIR_REQUEST_TIMEOUT" envDefault:"60s"`
	DBPath         string        `env:"FAIR_DB_PATH" envDefault:"fair.db"`
	LogLevel       string        `env:"FAIR_LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"FAIR_LOG_FORMAT" envDefault:"console"`

	KeyringService   string `env:"FAIR_KEYRING_SERVICE" envDefault:"fair-go"`
	SeedFallbackPath string `env:"FAIR_SEED_FALLBACK_PATH"`

	CrashChainTip    string `env:"FAIR_CRASH_CHAIN_TIP"`
	CrashSalt        string `env:"FAIR_CRASH_SALT"`
	CrashChainLength int    `env:"FAIR_CRASH_CHAIN_LENGTH"`
	CrashHexLinks    bool   `env:"FAIR_CRASH_HEX_LINKS"`

	ScanWorkers  int    `env:"FAIR_SCAN_WORKERS" envDefault:"0"`
	ScanMaxRange uint64 `env:"FAIR_SCAN_MAX_RANGE" envDefault:"10000000"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	if c.HTTPAddr == "" {
		err = multierr.Append(err, errors.New("FAIR_HTTP_ADDR must not be empty"))
	}
	if c.RequestTimeout <= 0 {
		err = multierr.Append(err, errors.New("FAIR_REQUEST_TIMEOUT must be positive"))
	}
	if c.ScanWorkers < 0 {
		err = multierr.Append(err, errors.New("FAIR_SCAN_WORKERS must not be negative"))
	}
	if c.ScanMaxRange == 0 {
		err = multierr.Append(err, errors.New("FAIR_SCAN_MAX_RANGE must be positive"))
	}
	if c.CrashChainLength < 0 {
		err = multierr.Append(err, errors.New("FAIR_CRASH_CHAIN_LENGTH must not be negative"))
	}
	if c.CrashChainTip != "" {
		if _, perr := engine.ParseGameHash(c.CrashChainTip); perr != nil {
			err = multierr.Append(err, fmt.Errorf("FAIR_CRASH_CHAIN_TIP: %w", perr))
		}
	}
	return err
}

// CrashChain returns the operator chain, starting from the published Stake
// commitment and overriding whatever the environment sets.
func (c Config) CrashChain() engine.ChainConfig {
	chain := engine.StakeCrashChain()
	if c.CrashChainTip != "" {
		chain.Tip = c.CrashChainTip
	}
	if c.CrashSalt != "" {
		chain.Salt = c.CrashSalt
	}
	if c.CrashChainLength > 0 {
		chain.MaxLength = c.CrashChainLength
	}
	chain.HexLinks = c.CrashHexLinks
	return chain
}
