// Package config loads command configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ProxyConfig configures cmd/crunchbase-proxy.
type ProxyConfig struct {
	APIKey    string `env:"CRUNCHBASE_API_KEY"`
	BaseURL   string `env:"CRUNCHBASE_BASE_URL" envDefault:"http://api.crunchbase.com"`
	Version   string `env:"CRUNCHBASE_VERSION" envDefault:"1"`
	Port      string `env:"PORT" envDefault:"8080"`
	UserAgent string `env:"USER_AGENT" envDefault:"crunchbase-client/1.0"`

	// RedisURL enables cache snapshots when set (host:port)
	RedisURL    string        `env:"REDIS_URL"`
	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL" envDefault:"0s"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// LoadProxyConfig reads ProxyConfig from the environment.
func LoadProxyConfig() (ProxyConfig, error) {
	var cfg ProxyConfig
	if err := ParseEnv(&cfg); err != nil {
		return ProxyConfig{}, err
	}
	if cfg.Port == "" {
		return ProxyConfig{}, fmt.Errorf("PORT must not be empty")
	}
	if cfg.RequestTimeout < 0 {
		return ProxyConfig{}, fmt.Errorf("REQUEST_TIMEOUT must be >= 0 (got %s)", cfg.RequestTimeout)
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c ProxyConfig) Addr() string {
	return ":" + c.Port
}
