package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 5001, config.Server.Port)
	assert.Equal(t, "ws://localhost:8000/rpc", config.Storage.Address)
	assert.Equal(t, "*/10 * * * *", config.Update.Schedule)
	assert.Equal(t, 10*time.Minute, config.Update.GetInterval())
	assert.Equal(t, 2000, config.Update.HistoryCap)
	assert.False(t, config.IsProduction())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig("/nonexistent/market.toml")
	require.NoError(t, err)
	assert.Equal(t, 5001, config.Server.Port)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "market.toml")
	content := `
environment = "production"

[server]
port = 8080

[update]
schedule = "*/5 * * * *"
interval = "5m"
history_cap = 500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, config.IsProduction())
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "*/5 * * * *", config.Update.Schedule)
	assert.Equal(t, 5*time.Minute, config.Update.GetInterval())
	assert.Equal(t, 500, config.Update.HistoryCap)

	// Sections the file omits keep their defaults.
	assert.Equal(t, "ws://localhost:8000/rpc", config.Storage.Address)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MARKET_PORT", "9999")
	t.Setenv("MARKET_DB_ADDRESS", "ws://db.internal:8000/rpc")
	t.Setenv("MARKET_UPDATE_SCHEDULE", "0 * * * *")
	t.Setenv("MARKET_HISTORY_CAP", "100")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "ws://db.internal:8000/rpc", config.Storage.Address)
	assert.Equal(t, "0 * * * *", config.Update.Schedule)
	assert.Equal(t, 100, config.Update.HistoryCap)
}

func TestLoadConfigInvalidEnvValuesIgnored(t *testing.T) {
	t.Setenv("MARKET_PORT", "not-a-number")
	t.Setenv("MARKET_HISTORY_CAP", "-5")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5001, config.Server.Port)
	assert.Equal(t, 2000, config.Update.HistoryCap)
}

func TestGetTimeoutFallsBackOnBadDuration(t *testing.T) {
	c := StorageConfig{Timeout: "bogus"}
	assert.Equal(t, 30*time.Second, c.GetTimeout())
}

func TestGetIntervalFallsBackOnBadDuration(t *testing.T) {
	c := UpdateConfig{Interval: ""}
	assert.Equal(t, 10*time.Minute, c.GetInterval())
}
