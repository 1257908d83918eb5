package schema_registry

import (
	"context"
	"time"
)

// Config holds configuration for the schema registry client and the schema
// retriever built on top of it.
type Config struct {
	// URL is the schema registry endpoint (e.g., "http://localhost:8081")
	URL string `yaml:"url" envconfig:"SCHEMA_REGISTRY_URL"`

	// Username for basic auth (optional)
	Username string `yaml:"username" envconfig:"SCHEMA_REGISTRY_USERNAME"`

	// Password for basic auth (optional)
	Password string `yaml:"password" json:"-" envconfig:"SCHEMA_REGISTRY_PASSWORD"` //nolint:gosec

	// Timeout for HTTP requests
	// Default: 30s
	Timeout time.Duration `yaml:"timeout" envconfig:"SCHEMA_REGISTRY_TIMEOUT"`

	// CacheRefresh is how long a resolved schema is served before it is
	// fetched again. Default: 5m
	CacheRefresh time.Duration `yaml:"cache_refresh" envconfig:"SCHEMA_REGISTRY_CACHE_REFRESH"`

	// CacheRetry is how long a failed lookup is remembered. Default: 30s
	CacheRetry time.Duration `yaml:"cache_retry" envconfig:"SCHEMA_REGISTRY_CACHE_RETRY"`

	// CleanInterval is the period of the stale cache cleanup. Default: 1h
	CleanInterval time.Duration `yaml:"clean_interval" envconfig:"SCHEMA_REGISTRY_CLEAN_INTERVAL"`
}

// Default values for configuration
const (
	DefaultTimeout       = 30 * time.Second
	DefaultCacheRefresh  = 5 * time.Minute
	DefaultCacheRetry    = 30 * time.Second
	DefaultCleanInterval = time.Hour
)

func (c Config) withDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CacheRefresh == 0 {
		c.CacheRefresh = DefaultCacheRefresh
	}
	if c.CacheRetry == 0 {
		c.CacheRetry = DefaultCacheRetry
	}
	if c.CleanInterval == 0 {
		c.CleanInterval = DefaultCleanInterval
	}
	return c
}

// Logger is an interface that matches the logger.LoggerClient methods used here.
// It provides context-aware structured logging with optional error and field parameters.
type Logger interface {
	// InfoWithContext logs an informational message with trace context.
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// WarnWithContext logs a warning message with trace context.
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// ErrorWithContext logs an error message with trace context.
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
