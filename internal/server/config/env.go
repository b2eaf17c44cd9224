package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "AUTHSTUB_"

func parseEnv(cfg *Config, environ map[string]string) error {
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      envPrefix,
		Environment: environ,
	}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

func environ() map[string]string {
	return env.ToMap(os.Environ())
}
