package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/kamdesk/internal/constants"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
api_url: https://helpdesk.example.com/
state_file: /tmp/kamdesk-state.yaml
log_level: DEBUG
output: json
timeout: 15s
`)
	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://helpdesk.example.com", cfg.APIURL)
	assert.Equal(t, "/tmp/kamdesk-state.yaml", cfg.StateFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, constants.DefaultOutput, cfg.Output)
	assert.Equal(t, constants.DefaultLogLevel, cfg.LogLevel)
	assert.Zero(t, cfg.Timeout)
	assert.Equal(t, "state.yaml", filepath.Base(cfg.StateFile))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api_url: http://file.example\noutput: yaml\n")
	t.Setenv("KAMDESK_API_URL", "http://env.example:9000")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example:9000", cfg.APIURL)
	assert.Equal(t, OutputYAML, cfg.Output)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad url", "api_url: ftp://x\n", "api_url"},
		{"no host", "api_url: localhost\n", "api_url"},
		{"bad level", "log_level: loud\n", "log_level"},
		{"bad output", "output: csv\n", "output"},
		{"negative timeout", "timeout: -1s\n", "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(New(), writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
