package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/nyayguru/internal/flagx"
	"github.com/dmitrijs2005/nyayguru/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// TokenTTL is a timex.Duration, which accepts both "1h" and integer
// nanoseconds. Absent fields keep their current values.
type JsonConfig struct {
	Addr          *string         `json:"addr"`
	SecretKey     *string         `json:"secret_key"`
	TokenTTL      *timex.Duration `json:"token_ttl"`
	AdminEmail    *string         `json:"admin_email"`
	AdminPassword *string         `json:"admin_password"`
	UploadBaseURL *string         `json:"upload_base_url"`
	LogLevel      *string         `json:"log_level"`
}

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

	for dst, v := range map[*string]*string{
		&cfg.Addr:          jc.Addr,
		&cfg.SecretKey:     jc.SecretKey,
		&cfg.AdminEmail:    jc.AdminEmail,
		&cfg.AdminPassword: jc.AdminPassword,
		&cfg.UploadBaseURL: jc.UploadBaseURL,
		&cfg.LogLevel:      jc.LogLevel,
	} {
		if v != nil {
			*dst = *v
		}
	}
	if jc.TokenTTL != nil {
		cfg.TokenTTL = jc.TokenTTL.Duration
	}
	return nil
}
