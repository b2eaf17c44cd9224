// Package config handles configuration for the development auth service,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the development auth service.
//
// Fields:
//   - Addr: bind address for the REST endpoint.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - TokenTTL: access token lifetime.
//   - AdminEmail / AdminPassword: the account seeded with admin rights.
//   - UploadBaseURL: public root under which uploaded avatars are reported.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Addr          string        `env:"ADDR"`
	SecretKey     string        `env:"SECRET_KEY"`
	TokenTTL      time.Duration `env:"TOKEN_TTL"`
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	UploadBaseURL string        `env:"UPLOAD_BASE_URL"`
	LogLevel      string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8000"
	c.SecretKey = "secretKey"
	c.TokenTTL = 60 * time.Minute
	c.AdminEmail = "admin@nyayguru.local"
	c.AdminPassword = "Admin12345"
	c.UploadBaseURL = "http://localhost:8000"
	c.LogLevel = "info"
}

// Load applies defaults, then the JSON file named by -c/-config, then
// AUTHSTUB_* environment variables, then flags. Later sources win.
func Load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments and environment. It panics on
// malformed input.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:], environ())
	if err != nil {
		panic(err)
	}
	return cfg
}
