package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/nyayguru/internal/flagx"
	"github.com/dmitrijs2005/nyayguru/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations are
// timex.Duration so the file may say "20s" or give nanoseconds. Absent fields
// keep their current values.
type JsonConfig struct {
	APIBaseURL     *string         `json:"api_base_url"`
	StoragePath    *string         `json:"storage_path"`
	AuthTimeout    *timex.Duration `json:"auth_timeout"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	SyncInterval   *timex.Duration `json:"sync_interval"`
	LogLevel       *string         `json:"log_level"`
}

// parseJson overlays cfg with the file passed as -c or -config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.StoragePath, jc.StoragePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.AuthTimeout != nil {
		cfg.AuthTimeout = jc.AuthTimeout.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SyncInterval != nil {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
