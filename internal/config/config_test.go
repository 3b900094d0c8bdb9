package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsEveryError(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "replay"
	cfg.Engine.MinConfidence = 1.5
	cfg.Engine.LiquidityUtilizationCap = 0
	cfg.Scanner.Interval = duration{time.Second}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown mode "replay"`)
	assert.Contains(t, err.Error(), "min_confidence")
	assert.Contains(t, err.Error(), "liquidity_utilization_cap")
	assert.Contains(t, err.Error(), "interval must be at least 1m")
}

func TestValidateExpiryWindow(t *testing.T) {
	cfg := Defaults()
	cfg.Engine.MinTimeToExpiryHours = 48
	cfg.Engine.MaxTimeToExpiryHours = 24

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_time_to_expiry_hours must exceed")
}

func TestValidateEnabledBackends(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Enabled = true
	cfg.Postgres.Host = ""
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	cfg.S3.Enabled = true
	cfg.S3.Bucket = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: host")
	assert.Contains(t, err.Error(), "redis: addr")
	assert.Contains(t, err.Error(), "s3: bucket")

	// A DSN stands in for the discrete postgres connection fields.
	cfg.Postgres.DSN = "postgres://u:p@db:5432/arbscan"
	cfg.Redis.Addr = "localhost:6379"
	cfg.S3.Bucket = "cycles"
	assert.NoError(t, cfg.Validate())
}

func TestValidateTelegramPairing(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramToken = "123:abc"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram_token and telegram_chat_id")

	cfg.Notify.TelegramChatID = "-100200300"
	assert.NoError(t, cfg.Validate())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
mode = "scan"

[scanner]
interval = "5m"
min_volume_usd = 250.0

[engine]
fee_buffer_percentage = 1.0
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scan", cfg.Mode)
	assert.Equal(t, 5*time.Minute, cfg.Scanner.Interval.Duration)
	assert.Equal(t, 250.0, cfg.Scanner.MinVolumeUSD)
	assert.Equal(t, 1.0, cfg.Engine.FeeBufferPercentage)

	// Untouched sections keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Scanner.FetchTimeout.Duration)
	assert.Equal(t, 200, cfg.Kalshi.PageLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scanner]\ninterval = \"soon\"\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("mode = \"daemon\"\n"), 0o600))

	t.Setenv("ARBSCAN_MODE", "scan")
	t.Setenv("ARBSCAN_ENGINE_MIN_PROFIT_USD", "7.5")
	t.Setenv("ARBSCAN_SCANNER_INTERVAL", "2m")
	t.Setenv("ARBSCAN_REDIS_ENABLED", "true")
	t.Setenv("ARBSCAN_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scan", cfg.Mode)
	assert.Equal(t, 7.5, cfg.Engine.MinProfitUSD)
	assert.Equal(t, 2*time.Minute, cfg.Scanner.Interval.Duration)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sk-test", cfg.Oracle.ApiKey)
}

func TestEnvOverrideIgnoresGarbageNumbers(t *testing.T) {
	cfg := Defaults()
	t.Setenv("ARBSCAN_ENGINE_MIN_PROFIT_USD", "lots")
	applyEnvOverrides(&cfg)
	assert.Equal(t, 1.0, cfg.Engine.MinProfitUSD)
}
