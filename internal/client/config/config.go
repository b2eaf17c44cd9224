package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the NyayGuru session client.
//
// Fields:
//   - APIBaseURL: root of the auth service REST API.
//   - StoragePath: SQLite file shared by all contexts of one "browser".
//   - AuthTimeout: hard bound on login and signup.
//   - RequestTimeout: bound on validation, logout and profile calls.
//   - SyncInterval: how often other contexts' writes are polled for.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL"`
	StoragePath    string        `env:"STORAGE_PATH"`
	AuthTimeout    time.Duration `env:"AUTH_TIMEOUT"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	SyncInterval   time.Duration `env:"SYNC_INTERVAL"`
	LogLevel       string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.StoragePath = "session.db"
	c.AuthTimeout = 20 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.SyncInterval = time.Second
	c.LogLevel = "info"
}

// Load applies defaults, then the JSON file named by -c/-config, then
// NYAYGURU_* environment variables, then flags. Later sources win.
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
