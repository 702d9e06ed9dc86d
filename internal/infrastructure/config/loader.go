package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles configuration loading using Viper
type Loader struct {
	v          *viper.Viper
	variant    Variant
	configFile string
}

// NewLoader creates a new configuration loader for the given front end
func NewLoader(variant Variant) *Loader {
	return &Loader{
		v:       viper.New(),
		variant: variant,
	}
}

// WithConfigFile forces a specific config file instead of the search paths
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// BindFlags maps command line flags onto configuration keys. Flags that were
// not set on the command line do not override file or env values.
func (l *Loader) BindFlags(flags *pflag.FlagSet, mapping map[string]string) error {
	for configKey, flagName := range mapping {
		flag := flags.Lookup(flagName)
		if flag == nil {
			return fmt.Errorf("unknown flag %q for key %s", flagName, configKey)
		}
		if err := l.v.BindPFlag(configKey, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

// Load loads configuration from defaults, file, env vars and flags
func (l *Loader) Load() (*Config, error) {
	// 1. Configure Viper
	l.setupViper()

	// 2. Read configuration
	if err := l.v.ReadInConfig(); err != nil {
		// Without config.yaml we still have env vars and defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 3. Unmarshal into a struct
	config := &Config{}
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// ConfigFileUsed returns the config file that was read, if any
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// setupViper configures Viper to read files and env vars
func (l *Loader) setupViper() {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")

		l.v.AddConfigPath("./configs")
		l.v.AddConfigPath("../configs")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("/etc/usdt-perp-symbols")
	}

	l.registerDefaults(DefaultsFor(l.variant))

	// Automatic environment variables: PERP_SYMBOLS_OUTPUT_PATH, ...
	l.v.AutomaticEnv()
	l.v.SetEnvPrefix("PERP_SYMBOLS")
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l.bindEnvVars()
}

// registerDefaults makes every key known to viper so AutomaticEnv can resolve it
func (l *Loader) registerDefaults(d *Config) {
	l.v.SetDefault("exchange.binance.base_url", d.Exchange.Binance.BaseURL)
	l.v.SetDefault("exchange.binance.exchange_info_path", d.Exchange.Binance.ExchangeInfoPath)
	l.v.SetDefault("exchange.binance.user_agent", d.Exchange.Binance.UserAgent)
	l.v.SetDefault("exchange.binance.timeout", d.Exchange.Binance.Timeout)
	l.v.SetDefault("exchange.binance.max_attempts", d.Exchange.Binance.MaxAttempts)
	l.v.SetDefault("exchange.binance.retry_delay", d.Exchange.Binance.RetryDelay)

	l.v.SetDefault("output.path", d.Output.Path)

	l.v.SetDefault("snapshot.backend", d.Snapshot.Backend)
	l.v.SetDefault("snapshot.redis.addr", d.Snapshot.Redis.Addr)
	l.v.SetDefault("snapshot.redis.password", d.Snapshot.Redis.Password)
	l.v.SetDefault("snapshot.redis.db", d.Snapshot.Redis.DB)
	l.v.SetDefault("snapshot.redis.key", d.Snapshot.Redis.Key)
	l.v.SetDefault("snapshot.redis.ttl", d.Snapshot.Redis.TTL)

	l.v.SetDefault("logging.level", d.Logging.Level)
	l.v.SetDefault("logging.format", d.Logging.Format)

	l.v.SetDefault("metrics.textfile_path", d.Metrics.TextfilePath)

	l.v.SetDefault("server.port", d.Server.Port)
	l.v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	l.v.SetDefault("server.rate_limit.enabled", d.Server.RateLimit.Enabled)
	l.v.SetDefault("server.rate_limit.capacity", d.Server.RateLimit.Capacity)
	l.v.SetDefault("server.rate_limit.refill_rate", d.Server.RateLimit.RefillRate)
	l.v.SetDefault("server.rate_limit.trust_proxy_headers", d.Server.RateLimit.TrustProxyHeaders)
}

// bindEnvVars maps short environment variable names to configuration keys
func (l *Loader) bindEnvVars() {
	envMappings := map[string]string{
		"exchange.binance.base_url":     "BINANCE_BASE_URL",
		"exchange.binance.timeout":      "BINANCE_TIMEOUT",
		"exchange.binance.user_agent":   "BINANCE_USER_AGENT",
		"exchange.binance.max_attempts": "BINANCE_MAX_ATTEMPTS",
		"output.path":                   "OUTPUT_PATH",
		"snapshot.backend":              "SNAPSHOT_BACKEND",
		"snapshot.redis.addr":           "REDIS_ADDR",
		"snapshot.redis.password":       "REDIS_PASSWORD",
		"snapshot.redis.db":             "REDIS_DB",
		"logging.level":                 "LOG_LEVEL",
		"logging.format":                "LOG_FORMAT",
		"metrics.textfile_path":         "METRICS_TEXTFILE",
		"server.port":                   "PORT",
		"server.rate_limit.enabled":     "RATE_LIMIT_ENABLED",
	}

	for configKey, envVar := range envMappings {
		// Keep the prefixed name working next to the short alias
		prefixed := "PERP_SYMBOLS_" + strings.ToUpper(strings.ReplaceAll(configKey, ".", "_"))
		_ = l.v.BindEnv(configKey, prefixed, envVar)
	}
}
