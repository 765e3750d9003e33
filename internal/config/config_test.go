package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", cfg.Client.BaseURL)
	assert.Equal(t, "campuslink_user", cfg.Session.UserKey)
	assert.Equal(t, "data-sync", cfg.Sync.Channel)
	assert.Equal(t, "ws://localhost:8090/ws/data-sync", cfg.RelayDialURL())
	assert.Equal(t, 15*time.Second, cfg.ClientTimeout())
	assert.Equal(t, time.Minute, cfg.RefreshInterval())
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
client:
  base_url: https://api.campus.example.com/api
  timeout: 30s
lifecycle:
  refresh_interval: 90s
logging:
  level: debug
`), 0o600))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "https://api.campus.example.com/api", cfg.Client.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.ClientTimeout())
	assert.Equal(t, 90*time.Second, cfg.RefreshInterval())
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults
	assert.Equal(t, "ws://localhost:8090", cfg.Sync.RelayURL)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client:\n  base_url: https://file.example.com/api\n"), 0o600))

	t.Setenv("API_BASE_URL", "https://env.example.com/api")
	t.Setenv("SYNC_CHANNEL", "campus-sync")

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/api", cfg.Client.BaseURL)
	assert.Equal(t, "campus-sync", cfg.Sync.Channel)
	assert.Equal(t, "ws://localhost:8090/ws/campus-sync", cfg.RelayDialURL())
}

func TestLoadConfigRejectsBadDurations(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}
