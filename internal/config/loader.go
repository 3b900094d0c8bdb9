package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBSCAN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ARBSCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Kalshi ──
	setStr(&cfg.Kalshi.ApiKey, "ARBSCAN_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "ARBSCAN_KALSHI_RSA_PRIVATE_KEY_PATH")
	setStr(&cfg.Kalshi.BaseURL, "ARBSCAN_KALSHI_BASE_URL")
	setInt(&cfg.Kalshi.PageLimit, "ARBSCAN_KALSHI_PAGE_LIMIT")
	setInt(&cfg.Kalshi.MaxPages, "ARBSCAN_KALSHI_MAX_PAGES")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "ARBSCAN_POLYMARKET_GAMMA_HOST")
	setInt(&cfg.Polymarket.PageLimit, "ARBSCAN_POLYMARKET_PAGE_LIMIT")
	setInt(&cfg.Polymarket.MaxPages, "ARBSCAN_POLYMARKET_MAX_PAGES")

	// ── Scanner ──
	setDuration(&cfg.Scanner.Interval, "ARBSCAN_SCANNER_INTERVAL")
	setDuration(&cfg.Scanner.FetchTimeout, "ARBSCAN_SCANNER_FETCH_TIMEOUT")
	setFloat64(&cfg.Scanner.MinVolumeUSD, "ARBSCAN_SCANNER_MIN_VOLUME_USD")
	setInt(&cfg.Scanner.MaxDaysToExpiry, "ARBSCAN_SCANNER_MAX_DAYS_TO_EXPIRY")

	// ── Engine ──
	setFloat64(&cfg.Engine.MinProfitUSD, "ARBSCAN_ENGINE_MIN_PROFIT_USD")
	setFloat64(&cfg.Engine.MinProfitPercentage, "ARBSCAN_ENGINE_MIN_PROFIT_PERCENTAGE")
	setFloat64(&cfg.Engine.MinConfidence, "ARBSCAN_ENGINE_MIN_CONFIDENCE")
	setFloat64(&cfg.Engine.MaxTimeToExpiryHours, "ARBSCAN_ENGINE_MAX_TIME_TO_EXPIRY_HOURS")
	setFloat64(&cfg.Engine.MinTimeToExpiryHours, "ARBSCAN_ENGINE_MIN_TIME_TO_EXPIRY_HOURS")
	setFloat64(&cfg.Engine.MaxTradeSizeUSD, "ARBSCAN_ENGINE_MAX_TRADE_SIZE_USD")
	setFloat64(&cfg.Engine.LiquidityUtilizationCap, "ARBSCAN_ENGINE_LIQUIDITY_UTILIZATION_CAP")
	setFloat64(&cfg.Engine.FeeBufferPercentage, "ARBSCAN_ENGINE_FEE_BUFFER_PERCENTAGE")

	// ── Matcher ──
	setFloat64(&cfg.Matcher.ThresholdTolerance, "ARBSCAN_MATCHER_THRESHOLD_TOLERANCE")
	setFloat64(&cfg.Matcher.MinBaseSimilarity, "ARBSCAN_MATCHER_MIN_BASE_SIMILARITY")
	setFloat64(&cfg.Matcher.MinSemanticConfidence, "ARBSCAN_MATCHER_MIN_SEMANTIC_CONFIDENCE")

	// ── Oracle ──
	setStr(&cfg.Oracle.ApiKey, "ARBSCAN_ORACLE_API_KEY")
	setStr(&cfg.Oracle.ApiKey, "OPENAI_API_KEY") // conventional alias
	setStr(&cfg.Oracle.BaseURL, "ARBSCAN_ORACLE_BASE_URL")
	setStr(&cfg.Oracle.Model, "ARBSCAN_ORACLE_MODEL")
	setDuration(&cfg.Oracle.Timeout, "ARBSCAN_ORACLE_TIMEOUT")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "ARBSCAN_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "ARBSCAN_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ARBSCAN_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ARBSCAN_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ARBSCAN_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ARBSCAN_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ARBSCAN_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ARBSCAN_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ARBSCAN_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ARBSCAN_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ARBSCAN_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "ARBSCAN_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "ARBSCAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBSCAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBSCAN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARBSCAN_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ARBSCAN_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ARBSCAN_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.AlertDedupTTL, "ARBSCAN_REDIS_ALERT_DEDUP_TTL")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "ARBSCAN_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "ARBSCAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ARBSCAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "ARBSCAN_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "ARBSCAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ARBSCAN_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "ARBSCAN_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "ARBSCAN_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "ARBSCAN_S3_PREFIX")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ARBSCAN_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "ARBSCAN_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "ARBSCAN_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "ARBSCAN_SERVER_CORS_ORIGINS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ARBSCAN_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ARBSCAN_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARBSCAN_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "ARBSCAN_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "ARBSCAN_MODE")
	setStr(&cfg.LogLevel, "ARBSCAN_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
