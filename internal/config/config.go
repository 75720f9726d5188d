package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath      = "CONFIG_PATH"
	EnvDBConnection    = "DB_CONNECTION"
	EnvJWTSecret       = "JWT_SECRET"
	EnvJWTExpiry       = "JWT_EXPIRY"
	EnvExchangeRateURL = "EXCHANGE_RATE_URL"
	EnvRedisAddr       = "REDIS_ADDR"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// ExchangeConfig holds the USD quote endpoint settings.
type ExchangeConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig holds messaging-metrics collection settings.
type MetricsConfig struct {
	HistoricSince string        `yaml:"historic-since"`
	Timeout       time.Duration `yaml:"timeout"`
}

// RateLimitConfig holds login rate limit settings.
type RateLimitConfig struct {
	LoginPerSecond int    `yaml:"login-per-second"`
	RedisAddr      string `yaml:"redis-addr"`
	RedisPassword  string `yaml:"redis-password"`
	RedisDB        int    `yaml:"redis-db"`
	RedisPrefix    string `yaml:"redis-prefix"`
}

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 30 * 24 * time.Hour

// LoadJWTConfig loads JWT settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	result := JWTConfig{Expiry: defaultJWTExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.JWT
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// Exchange defaults applied when the config omits quote settings.
const (
	defaultExchangeURL     = "https://dolarapi.com/v1/dolares/blue"
	defaultExchangeTimeout = 5 * time.Second
)

// LoadExchangeConfig loads USD quote endpoint settings from the YAML config file.
func LoadExchangeConfig(configPath string) (ExchangeConfig, error) {
	// fileConfig maps the YAML fields needed for exchange settings.
	type fileConfig struct {
		Exchange ExchangeConfig `yaml:"exchange"`
	}

	result := ExchangeConfig{URL: defaultExchangeURL, Timeout: defaultExchangeTimeout}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if url := strings.TrimSpace(cfg.Exchange.URL); url != "" {
				result.URL = url
			}
			if cfg.Exchange.Timeout > 0 {
				result.Timeout = cfg.Exchange.Timeout
			}
		}
	}

	if url := strings.TrimSpace(os.Getenv(EnvExchangeRateURL)); url != "" {
		result.URL = url
	}
	return result, nil
}

// Metrics defaults applied when the config omits collection settings.
const (
	defaultMetricsHistoricSince = "2024-12-12"
	defaultMetricsTimeout       = 10 * time.Second
)

// LoadMetricsConfig loads messaging-metrics settings from the YAML config file.
func LoadMetricsConfig(configPath string) (MetricsConfig, error) {
	// fileConfig maps the YAML fields needed for metrics settings.
	type fileConfig struct {
		Metrics MetricsConfig `yaml:"metrics"`
	}

	result := MetricsConfig{HistoricSince: defaultMetricsHistoricSince, Timeout: defaultMetricsTimeout}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if since := strings.TrimSpace(cfg.Metrics.HistoricSince); since != "" {
				result.HistoricSince = since
			}
			if cfg.Metrics.Timeout > 0 {
				result.Timeout = cfg.Metrics.Timeout
			}
		}
	}

	if _, errParse := time.Parse("2006-01-02", result.HistoricSince); errParse != nil {
		return result, fmt.Errorf("invalid metrics.historic-since %q: %w", result.HistoricSince, errParse)
	}
	return result, nil
}

// defaultLoginPerSecond bounds login attempts per identity and second.
const defaultLoginPerSecond = 5

// LoadRateLimitConfig loads login rate limit settings from the YAML config file.
func LoadRateLimitConfig(configPath string) (RateLimitConfig, error) {
	// fileConfig maps the YAML fields needed for rate limit settings.
	type fileConfig struct {
		RateLimit RateLimitConfig `yaml:"ratelimit"`
	}

	result := RateLimitConfig{LoginPerSecond: defaultLoginPerSecond}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.RateLimit
		}
	}

	if addr := strings.TrimSpace(os.Getenv(EnvRedisAddr)); addr != "" {
		result.RedisAddr = addr
	}
	if result.LoginPerSecond <= 0 {
		result.LoginPerSecond = defaultLoginPerSecond
	}
	return result, nil
}
