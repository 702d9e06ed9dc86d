package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validator valida la configuración cargada
type Validator struct{}

// NewValidator crea una nueva instancia del validador
func NewValidator() *Validator {
	return &Validator{}
}

// Validate valida toda la configuración
func (v *Validator) Validate(config *Config) error {
	if err := v.validateBinance(config.Exchange.Binance); err != nil {
		return fmt.Errorf("exchange config validation failed: %w", err)
	}

	if err := v.validateOutput(config.Output); err != nil {
		return fmt.Errorf("output config validation failed: %w", err)
	}

	if err := v.validateSnapshot(config.Snapshot); err != nil {
		return fmt.Errorf("snapshot config validation failed: %w", err)
	}

	if err := v.validateLogging(config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

// ValidateServer valida la configuración del servidor HTTP (solo symbols-api)
func (v *Validator) ValidateServer(config ServerConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d, must be between 1-65535", config.Port)
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got: %v", config.ShutdownTimeout)
	}

	if config.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown_timeout too long: %v, max 5 minutes", config.ShutdownTimeout)
	}

	return v.validateRateLimit(config.RateLimit)
}

// validateRateLimit valida el rate limiting por cliente; deshabilitado no se revisa
func (v *Validator) validateRateLimit(config RateLimitConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.Capacity < 1 {
		return fmt.Errorf("rate_limit capacity must be at least 1, got: %d", config.Capacity)
	}

	if config.RefillRate <= 0 {
		return fmt.Errorf("rate_limit refill_rate must be positive, got: %v", config.RefillRate)
	}

	return nil
}

// validateBinance valida la configuración específica de Binance
func (v *Validator) validateBinance(config BinanceConfig) error {
	if err := v.validateURL(config.BaseURL, "binance base_url"); err != nil {
		return err
	}

	if !strings.HasPrefix(config.ExchangeInfoPath, "/") {
		return fmt.Errorf("binance exchange_info_path must start with '/', got: %q", config.ExchangeInfoPath)
	}

	if strings.TrimSpace(config.UserAgent) == "" {
		return fmt.Errorf("binance user_agent cannot be empty")
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("binance timeout must be positive, got: %v", config.Timeout)
	}

	if config.Timeout > 5*time.Minute {
		return fmt.Errorf("binance timeout too long: %v, max 5 minutes", config.Timeout)
	}

	if config.MaxAttempts < 1 || config.MaxAttempts > 10 {
		return fmt.Errorf("binance max_attempts must be between 1-10, got: %d", config.MaxAttempts)
	}

	if config.MaxAttempts > 1 && config.RetryDelay <= 0 {
		return fmt.Errorf("binance retry_delay must be positive when retries are enabled, got: %v", config.RetryDelay)
	}

	return nil
}

// validateOutput valida la ruta del archivo de salida
func (v *Validator) validateOutput(config OutputConfig) error {
	if strings.TrimSpace(config.Path) == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if strings.HasSuffix(config.Path, "/") {
		return fmt.Errorf("output path must be a file, got directory: %s", config.Path)
	}
	return nil
}

// validateSnapshot valida el backend del snapshot de respaldo
func (v *Validator) validateSnapshot(config SnapshotConfig) error {
	validBackends := []string{"embedded", "redis"}
	if !contains(validBackends, config.Backend) {
		return fmt.Errorf("invalid snapshot backend: %s, must be one of: %v", config.Backend, validBackends)
	}

	if strings.EqualFold(config.Backend, "redis") {
		return v.validateRedis(config.Redis)
	}

	return nil
}

// validateRedis valida la configuración de Redis
func (v *Validator) validateRedis(config RedisConfig) error {
	if config.Addr == "" {
		return fmt.Errorf("redis addr cannot be empty")
	}

	if !strings.Contains(config.Addr, ":") {
		return fmt.Errorf("invalid redis addr format: %s, expected host:port", config.Addr)
	}

	if config.DB < 0 || config.DB > 15 {
		return fmt.Errorf("invalid redis DB: %d, must be between 0-15", config.DB)
	}

	if config.Key == "" {
		return fmt.Errorf("redis key cannot be empty")
	}

	if config.TTL < 0 {
		return fmt.Errorf("redis ttl cannot be negative, got: %v", config.TTL)
	}

	return nil
}

// validateLogging valida la configuración de logging
func (v *Validator) validateLogging(config LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, config.Level) {
		return fmt.Errorf("invalid log level: %s, must be one of: %v", config.Level, validLevels)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid log format: %s, must be one of: %v", config.Format, validFormats)
	}

	return nil
}

// validateURL valida que una URL sea válida para HTTP/HTTPS
func (v *Validator) validateURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %s, error: %v", fieldName, rawURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid %s scheme: %s, must be http or https", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s must have a host", fieldName)
	}

	return nil
}

// contains verifica si un slice contiene un elemento
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
