package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// Config holds runtime settings for the authctl CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gRPC endpoint.
//   - RequestTimeout: deadline for a single call.
//   - Token: bearer token used by "me" when --token is not given.
type Config struct {
	ServerEndpointAddr string        `env:"SERVER_ADDR"`
	RequestTimeout     time.Duration `env:"TIMEOUT"`
	Token              string        `env:"TOKEN"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
}

// Load applies defaults, the JSON file at path (skipped when path is empty)
// and the environment, in that order.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "AUTHKEEPER_"}); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}

	return cfg, nil
}
