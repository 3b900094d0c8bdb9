// Package config defines the top-level configuration for the arbitrage
// scanner and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by ARBSCAN_* environment
// variables.
type Config struct {
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Scanner    ScannerConfig    `toml:"scanner"`
	Engine     EngineConfig     `toml:"engine"`
	Matcher    MatcherConfig    `toml:"matcher"`
	Oracle     OracleConfig     `toml:"oracle"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// KalshiConfig holds Kalshi exchange API parameters.
type KalshiConfig struct {
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
	BaseURL           string `toml:"base_url"`
	PageLimit         int    `toml:"page_limit"`
	MaxPages          int    `toml:"max_pages"`
}

// PolymarketConfig holds Polymarket Gamma API parameters.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
	PageLimit int    `toml:"page_limit"`
	MaxPages  int    `toml:"max_pages"`
}

// ScannerConfig holds scan scheduling and venue fetch parameters.
type ScannerConfig struct {
	Interval        duration `toml:"interval"`
	FetchTimeout    duration `toml:"fetch_timeout"`
	MinVolumeUSD    float64  `toml:"min_volume_usd"`
	MaxDaysToExpiry int      `toml:"max_days_to_expiry"`
}

// EngineConfig holds the valuation and filter thresholds.
type EngineConfig struct {
	MinProfitUSD            float64 `toml:"min_profit_usd"`
	MinProfitPercentage     float64 `toml:"min_profit_percentage"`
	MinConfidence           float64 `toml:"min_confidence"`
	MaxTimeToExpiryHours    float64 `toml:"max_time_to_expiry_hours"`
	MinTimeToExpiryHours    float64 `toml:"min_time_to_expiry_hours"`
	MaxTradeSizeUSD         float64 `toml:"max_trade_size_usd"`
	LiquidityUtilizationCap float64 `toml:"liquidity_utilization_cap"`
	FeeBufferPercentage     float64 `toml:"fee_buffer_percentage"`
	// Slippage model: slippage% = base + scale * (size/liquidity)^exponent.
	SlippageBasePct  float64 `toml:"slippage_base_pct"`
	SlippageScalePct float64 `toml:"slippage_scale_pct"`
	SlippageExponent float64 `toml:"slippage_exponent"`
	// Recommendation policy.
	ExecuteMinProfitPct  float64 `toml:"execute_min_profit_pct"`
	ExecuteMinCertainty  float64 `toml:"execute_min_certainty"`
	SkipBelowProfitPct   float64 `toml:"skip_below_profit_pct"`
	SkipBelowExpiryHours float64 `toml:"skip_below_expiry_hours"`
}

// MatcherConfig holds cross-venue matching parameters.
type MatcherConfig struct {
	// ThresholdTolerance is the maximum allowed difference between two
	// normalized thresholds, in percentage points.
	ThresholdTolerance    float64 `toml:"threshold_tolerance"`
	MinBaseSimilarity     float64 `toml:"min_base_similarity"`
	MinSemanticConfidence float64 `toml:"min_semantic_confidence"`
	// CacheFloor is the minimum confidence a pair needs before it is written
	// to the advisory pair cache.
	CacheFloor float64 `toml:"cache_floor"`
}

// OracleConfig holds the optional OpenAI-backed semantic comparator
// settings. When ApiKey is empty the engine uses the built-in heuristic
// comparator instead.
type OracleConfig struct {
	ApiKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url"`
	Model   string   `toml:"model"`
	Timeout duration `toml:"timeout"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled       bool     `toml:"enabled"`
	Addr          string   `toml:"addr"`
	Password      string   `toml:"password"`
	DB            int      `toml:"db"`
	PoolSize      int      `toml:"pool_size"`
	MaxRetries    int      `toml:"max_retries"`
	TLSEnabled    bool     `toml:"tls_enabled"`
	AlertDedupTTL duration `toml:"alert_dedup_ttl"`
}

// S3Config holds S3-compatible object storage parameters for cycle archival.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	APIKey      string   `toml:"api_key"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Kalshi: KalshiConfig{
			BaseURL:   "https://api.elections.kalshi.com/trade-api/v2",
			PageLimit: 200,
			MaxPages:  10,
		},
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
			PageLimit: 250,
			MaxPages:  12,
		},
		Scanner: ScannerConfig{
			Interval:        duration{15 * time.Minute},
			FetchTimeout:    duration{30 * time.Second},
			MinVolumeUSD:    1_000,
			MaxDaysToExpiry: 14,
		},
		Engine: EngineConfig{
			MinProfitUSD:            1.0,
			MinProfitPercentage:     1.0,
			MinConfidence:           0.7,
			MaxTimeToExpiryHours:    24 * 14,
			MinTimeToExpiryHours:    1.0,
			MaxTradeSizeUSD:         10_000,
			LiquidityUtilizationCap: 0.10,
			FeeBufferPercentage:     2.0,
			SlippageBasePct:         0.5,
			SlippageScalePct:        15.0,
			SlippageExponent:        1.5,
			ExecuteMinProfitPct:     3.0,
			ExecuteMinCertainty:     80,
			SkipBelowProfitPct:      0.5,
			SkipBelowExpiryHours:    2.0,
		},
		Matcher: MatcherConfig{
			ThresholdTolerance:    0.05,
			MinBaseSimilarity:     0.55,
			MinSemanticConfidence: 0.6,
			CacheFloor:            0.8,
		},
		Oracle: OracleConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: duration{20 * time.Second},
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "arbscan",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:       false,
			Addr:          "localhost:6379",
			PoolSize:      20,
			MaxRetries:    3,
			AlertDedupTTL: duration{6 * time.Hour},
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "arbscan-cycles",
			ForcePathStyle: true,
			Prefix:         "opportunities",
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"opportunity", "cycle_error"},
		},
		Mode:     "daemon",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true, // run one cycle, print results, exit
	"daemon": true, // scan on an interval, serve the API, send alerts
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or contradictory values and
// returns a combined error describing every problem found. A config error is
// fatal: the engine refuses to run a cycle on bad thresholds rather than
// silently substituting defaults.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, daemon)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Kalshi
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if c.Kalshi.PageLimit < 1 || c.Kalshi.PageLimit > 1000 {
		errs = append(errs, fmt.Sprintf("kalshi: page_limit must be 1-1000, got %d", c.Kalshi.PageLimit))
	}

	// Polymarket
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.PageLimit < 1 {
		errs = append(errs, "polymarket: page_limit must be >= 1")
	}

	// Scanner
	if c.Scanner.Interval.Duration < time.Minute {
		errs = append(errs, "scanner: interval must be at least 1m")
	}
	if c.Scanner.FetchTimeout.Duration <= 0 {
		errs = append(errs, "scanner: fetch_timeout must be positive")
	}
	if c.Scanner.MinVolumeUSD < 0 {
		errs = append(errs, "scanner: min_volume_usd must not be negative")
	}
	if c.Scanner.MaxDaysToExpiry < 1 {
		errs = append(errs, "scanner: max_days_to_expiry must be >= 1")
	}

	// Engine
	if c.Engine.MinProfitUSD < 0 {
		errs = append(errs, "engine: min_profit_usd must not be negative")
	}
	if c.Engine.MinProfitPercentage < 0 {
		errs = append(errs, "engine: min_profit_percentage must not be negative")
	}
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 1 {
		errs = append(errs, fmt.Sprintf("engine: min_confidence must be in [0,1], got %g", c.Engine.MinConfidence))
	}
	if c.Engine.MinTimeToExpiryHours < 0 {
		errs = append(errs, "engine: min_time_to_expiry_hours must not be negative")
	}
	if c.Engine.MaxTimeToExpiryHours <= c.Engine.MinTimeToExpiryHours {
		errs = append(errs, "engine: max_time_to_expiry_hours must exceed min_time_to_expiry_hours")
	}
	if c.Engine.MaxTradeSizeUSD <= 0 {
		errs = append(errs, "engine: max_trade_size_usd must be > 0")
	}
	if c.Engine.LiquidityUtilizationCap <= 0 || c.Engine.LiquidityUtilizationCap > 1 {
		errs = append(errs, fmt.Sprintf("engine: liquidity_utilization_cap must be in (0,1], got %g", c.Engine.LiquidityUtilizationCap))
	}
	if c.Engine.FeeBufferPercentage < 0 || c.Engine.FeeBufferPercentage >= 100 {
		errs = append(errs, fmt.Sprintf("engine: fee_buffer_percentage must be in [0,100), got %g", c.Engine.FeeBufferPercentage))
	}
	if c.Engine.SlippageExponent <= 0 {
		errs = append(errs, "engine: slippage_exponent must be > 0")
	}
	if c.Engine.ExecuteMinProfitPct < c.Engine.SkipBelowProfitPct {
		errs = append(errs, "engine: execute_min_profit_pct must not be below skip_below_profit_pct")
	}

	// Matcher
	if c.Matcher.ThresholdTolerance <= 0 {
		errs = append(errs, "matcher: threshold_tolerance must be > 0")
	}
	if c.Matcher.MinBaseSimilarity < 0 || c.Matcher.MinBaseSimilarity > 1 {
		errs = append(errs, fmt.Sprintf("matcher: min_base_similarity must be in [0,1], got %g", c.Matcher.MinBaseSimilarity))
	}
	if c.Matcher.MinSemanticConfidence < 0 || c.Matcher.MinSemanticConfidence > 1 {
		errs = append(errs, fmt.Sprintf("matcher: min_semantic_confidence must be in [0,1], got %g", c.Matcher.MinSemanticConfidence))
	}

	// Oracle
	if c.Oracle.ApiKey != "" {
		if c.Oracle.BaseURL == "" {
			errs = append(errs, "oracle: base_url must not be empty when api_key is set")
		}
		if c.Oracle.Model == "" {
			errs = append(errs, "oracle: model must not be empty when api_key is set")
		}
		if c.Oracle.Timeout.Duration <= 0 {
			errs = append(errs, "oracle: timeout must be positive")
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Notify: Telegram needs both halves.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
