package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted. Fields
// missing from the file leave Config unchanged.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	BcryptCost            int            `json:"bcrypt_cost"`
	RedisURL              string         `json:"redis_url"`
	LoginMaxAttempts      int            `json:"login_max_attempts"`
	LoginWindow           timex.Duration `json:"login_window"`
	CORSAllowedOrigins    []string       `json:"cors_allowed_origins"`
	LogFormat             string         `json:"log_format"`
	Debug                 *bool          `json:"debug"`
	GinMode               string         `json:"gin_mode"`
}

// parseJson loads configuration values from the file named by the -c or
// -config flag. Without the flag nothing is loaded.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", common.ErrConfiguration, jsonConfigFile, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.GinMode, c.GinMode)

	if !c.TokenValidityDuration.IsZero() {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if !c.LoginWindow.IsZero() {
		config.LoginWindow = c.LoginWindow.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.LoginMaxAttempts != 0 {
		config.LoginMaxAttempts = c.LoginMaxAttempts
	}
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
