package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{name: "Test1 OK", args: []string{"-a", "http://h:1/api", "-s", "x.db", "-t", "7", "-i", "250"},
			expected: &Config{APIBaseURL: "http://h:1/api", StoragePath: "x.db", AuthTimeout: 7 * time.Second, SyncInterval: 250 * time.Millisecond}},
		{name: "Test2 foreign flags ignored", args: []string{"-c", "cfg.json", "-k", "secret", "-a", "http://h:2"},
			expected: &Config{APIBaseURL: "http://h:2"}},
		{name: "Test3 incorrect timeout", args: []string{"-t", "abc"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
