// Package config loads runtime configuration for the NyayGuru session client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. NYAYGURU_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   auth service base URL
//	-s string   session storage file
//	-t int      login/signup timeout (seconds)
//	-i int      sync interval (milliseconds)
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:8000/api",
//	  "storage_path": "session.db",
//	  "auth_timeout": "20s",
//	  "request_timeout": "10s",
//	  "sync_interval": "1s",
//	  "log_level": "info"
//	}
//
// # Environment
//
//	NYAYGURU_API_BASE_URL, NYAYGURU_STORAGE_PATH, NYAYGURU_AUTH_TIMEOUT,
//	NYAYGURU_REQUEST_TIMEOUT, NYAYGURU_SYNC_INTERVAL, NYAYGURU_LOG_LEVEL
package config
