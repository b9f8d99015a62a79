package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/joho/godotenv"
)

const (
	envPrefix  = "AUTHKEEPER_"
	dotenvFile = ".env"
)

// parseEnv overlays AUTHKEEPER_* variables onto config. Variables from the
// optional dotenv file are visible too, but the process environment wins.
func parseEnv(config *Config, dotenvPath string) error {
	vars, err := environment(dotenvPath)
	if err != nil {
		return err
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: envPrefix, Environment: vars}); err != nil {
		return fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}
	return nil
}

func environment(dotenvPath string) (map[string]string, error) {
	vars := map[string]string{}

	if dotenvPath != "" {
		fileVars, err := godotenv.Read(dotenvPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("%w: reading %s: %w", common.ErrConfiguration, dotenvPath, err)
		default:
			for k, v := range fileVars {
				vars[k] = v
			}
		}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	return vars, nil
}
