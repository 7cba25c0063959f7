/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config loads mediator configuration from file, environment, and
// flags via viper, the way bryk-io-pkg and blackhole-pro-blackhole wire
// their services.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the mediator's runtime configuration. Storage driver
// configuration is intentionally opaque (a DSN string) since persistence
// is out of scope for the core (spec.md §1).
type Config struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	PublicEndpoint  string        `mapstructure:"public_endpoint"`
	StorageDSN      string        `mapstructure:"storage_dsn"`
	LogLevel        string        `mapstructure:"log_level"`
	Breaker         BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig configures the default circuit breaker guarding outbound
// dependencies (spec.md §4.7).
type BreakerConfig struct {
	MaxRetries         int           `mapstructure:"max_retries"`
	HalfOpenMaxFailures int          `mapstructure:"half_open_max_failures"`
	ResetTimeout       time.Duration `mapstructure:"reset_timeout"`
}

// Defaults returns the configuration defaults applied before any file,
// environment, or flag override is read.
func Defaults() Config {
	return Config{
		ListenAddr:     ":8080",
		PublicEndpoint: "https://mediator.example.com",
		LogLevel:       "info",
		Breaker: BreakerConfig{
			MaxRetries:          0,
			HalfOpenMaxFailures: 1,
			ResetTimeout:        30 * time.Second,
		},
	}
}

// Load reads configuration from the given file path (if non-empty),
// overlaying MEDIATOR_-prefixed environment variables, on top of Defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetEnvPrefix("MEDIATOR")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("public_endpoint", cfg.PublicEndpoint)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("breaker.max_retries", cfg.Breaker.MaxRetries)
	v.SetDefault("breaker.half_open_max_failures", cfg.Breaker.HalfOpenMaxFailures)
	v.SetDefault("breaker.reset_timeout", cfg.Breaker.ResetTimeout)

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reading config file %q: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}
