// Package config loads cache facade settings from a YAML file or the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
)

const (
	defaultRetryCount               = 5
	defaultReconnectIntervalMinutes = 60
	defaultExpirationSeconds        = 120
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the top-level configuration.
type Config struct {
	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`
}

// CacheConfig holds the facade settings.
type CacheConfig struct {
	Name                     string        `yaml:"name"`
	ConnectionString         string        `yaml:"connection_string"` // redis URL or host:port,option=value
	RetryCount               int           `yaml:"retry_count"`
	ReconnectIntervalMinutes int           `yaml:"reconnect_interval_minutes"`
	DefaultExpirationSeconds int           `yaml:"default_expiration_seconds"`
	DialTimeout              time.Duration `yaml:"dial_timeout"`
	KeepBackendOnFallback    bool          `yaml:"keep_backend_on_fallback"`
	Serializer               string        `yaml:"serializer"` // json | msgpack | cbor
}

func (c CacheConfig) ReconnectInterval() time.Duration {
	return time.Duration(c.ReconnectIntervalMinutes) * time.Minute
}

func (c CacheConfig) DefaultExpiration() time.Duration {
	return time.Duration(c.DefaultExpirationSeconds) * time.Second
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

func defaults() *Config {
	return &Config{
		Cache: CacheConfig{
			RetryCount:               defaultRetryCount,
			ReconnectIntervalMinutes: defaultReconnectIntervalMinutes,
			DefaultExpirationSeconds: defaultExpirationSeconds,
			DialTimeout:              5 * time.Second,
			Serializer:               "json",
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
// Unset variables are left as is.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := string(match[2 : len(match)-1])
		if val, ok := os.LookupEnv(name); ok {
			return []byte(val)
		}
		return match
	})
}

// Load reads and parses a YAML config file, expanding environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	data = expandEnv(data)

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// FromEnv builds the configuration from environment variables after loading
// the given .env files (".env" when none are named). Missing files are ignored.
func FromEnv(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	cfg := defaults()
	var err error
	c := &cfg.Cache
	c.Name = getEnv("CACHE_NAME", c.Name)
	c.ConnectionString = getEnv("CACHE_CONNECTION_STRING", c.ConnectionString)
	c.Serializer = getEnv("CACHE_SERIALIZER", c.Serializer)
	if c.RetryCount, err = getEnvAsInt("CACHE_RETRY_COUNT", c.RetryCount); err != nil {
		return nil, err
	}
	if c.ReconnectIntervalMinutes, err = getEnvAsInt("CACHE_RECONNECT_INTERVAL_MINUTES", c.ReconnectIntervalMinutes); err != nil {
		return nil, err
	}
	if c.DefaultExpirationSeconds, err = getEnvAsInt("CACHE_DEFAULT_EXPIRATION_SECONDS", c.DefaultExpirationSeconds); err != nil {
		return nil, err
	}
	if v := os.Getenv("CACHE_DIAL_TIMEOUT"); v != "" {
		if c.DialTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("CACHE_DIAL_TIMEOUT: %w", err)
		}
	}
	if v := os.Getenv("CACHE_KEEP_BACKEND_ON_FALLBACK"); v != "" {
		if c.KeepBackendOnFallback, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("CACHE_KEEP_BACKEND_ON_FALLBACK: %w", err)
		}
	}
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	return cfg, nil
}

// Validate reports the first problem with the cache settings.
func (c *Config) Validate() error {
	cc := c.Cache
	switch {
	case strings.TrimSpace(cc.ConnectionString) == "":
		return fmt.Errorf("%w: cache.connection_string is empty", ErrInvalid)
	case cc.RetryCount < 0:
		return fmt.Errorf("%w: cache.retry_count must not be negative", ErrInvalid)
	case cc.ReconnectIntervalMinutes < 0:
		return fmt.Errorf("%w: cache.reconnect_interval_minutes must not be negative", ErrInvalid)
	case cc.DefaultExpirationSeconds < 0:
		return fmt.Errorf("%w: cache.default_expiration_seconds must not be negative", ErrInvalid)
	case cc.DialTimeout < 0:
		return fmt.Errorf("%w: cache.dial_timeout must not be negative", ErrInvalid)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
