package config

import (
	"time"
)

// Variant identifies which front end is loading the configuration
type Variant string

const (
	VariantFile    Variant = "file"
	VariantConsole Variant = "console"
	VariantAPI     Variant = "api"
)

// Config represents the complete application configuration
type Config struct {
	Exchange ExchangeConfig `yaml:"exchange" mapstructure:"exchange"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Snapshot SnapshotConfig `yaml:"snapshot" mapstructure:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
}

// ExchangeConfig contains exchange configuration
type ExchangeConfig struct {
	Binance BinanceConfig `yaml:"binance" mapstructure:"binance"`
}

// BinanceConfig contains Binance Futures REST configuration
type BinanceConfig struct {
	BaseURL          string        `yaml:"base_url" mapstructure:"base_url"`
	ExchangeInfoPath string        `yaml:"exchange_info_path" mapstructure:"exchange_info_path"`
	UserAgent        string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxAttempts      int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	RetryDelay       time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
}

// OutputConfig contains file sink configuration
type OutputConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SnapshotConfig selects where the fallback symbol list comes from
type SnapshotConfig struct {
	Backend string      `yaml:"backend" mapstructure:"backend"`
	Redis   RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig contains Redis-specific configuration
type RedisConfig struct {
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Key      string        `yaml:"key" mapstructure:"key"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// LoggingConfig contains logging system configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig contains Prometheus export configuration
type MetricsConfig struct {
	// TextfilePath, when set, receives a node-exporter textfile at the end of one-shot runs
	TextfilePath string `yaml:"textfile_path" mapstructure:"textfile_path"`
}

// ServerConfig contains HTTP server configuration (symbols-api only)
type ServerConfig struct {
	Port            int             `yaml:"port" mapstructure:"port"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RateLimitConfig contains per-client API rate limiting configuration
type RateLimitConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Capacity   int     `yaml:"capacity" mapstructure:"capacity"`       // Burst size per client
	RefillRate float64 `yaml:"refill_rate" mapstructure:"refill_rate"` // Requests per second
	// TrustProxyHeaders keys clients on X-Forwarded-For / X-Real-IP. Only
	// enable it behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" mapstructure:"trust_proxy_headers"`
}

// GetDefaultConfig returns the default configuration shared by all front ends
func GetDefaultConfig() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			Binance: BinanceConfig{
				BaseURL:          "https://fapi.binance.com",
				ExchangeInfoPath: "/fapi/v1/exchangeInfo",
				UserAgent:        "Mozilla/5.0",
				Timeout:          30 * time.Second,
				MaxAttempts:      1,
				RetryDelay:       200 * time.Millisecond,
			},
		},
		Output: OutputConfig{
			Path: "pairs.json",
		},
		Snapshot: SnapshotConfig{
			Backend: "embedded",
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				Password: "",
				DB:       0,
				Key:      "usdt_perp_symbols:last_good",
				TTL:      0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 15 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:    true,
				Capacity:   20,
				RefillRate: 2,
			},
		},
	}
}

// DefaultsFor returns the defaults of a given front end. The file exporter
// waits up to 30s and identifies as a browser; the console lister gives up
// after 10s, uses its own User-Agent and only logs warnings.
func DefaultsFor(variant Variant) *Config {
	cfg := GetDefaultConfig()

	switch variant {
	case VariantConsole:
		cfg.Exchange.Binance.Timeout = 10 * time.Second
		cfg.Exchange.Binance.UserAgent = "spreadFut-script"
		// stdout carries the symbols; keep stderr quiet unless something fails
		cfg.Logging.Level = "warn"
	case VariantAPI:
		cfg.Exchange.Binance.Timeout = 10 * time.Second
	}

	return cfg
}
