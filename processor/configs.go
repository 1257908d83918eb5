package processor

import (
	"context"
	"time"
)

// Config controls record authorization and the caching of JSON schema
// mappings.
type Config struct {
	// CheckSourceID authorizes records by project, user and source. When
	// disabled the source is ignored.
	CheckSourceID bool `yaml:"check_source_id" envconfig:"AUTH_CHECK_SOURCE_ID"`

	// MappingRefresh is how long a resolved schema mapping is reused.
	// Default: 1h
	MappingRefresh time.Duration `yaml:"mapping_refresh" envconfig:"PROCESSOR_MAPPING_REFRESH"`

	// MappingRetry is how long a failed schema resolution is remembered.
	// Default: 2m
	MappingRetry time.Duration `yaml:"mapping_retry" envconfig:"PROCESSOR_MAPPING_RETRY"`

	// CleanInterval is the period of the stale mapping cleanup.
	// Default: 2h
	CleanInterval time.Duration `yaml:"clean_interval" envconfig:"PROCESSOR_CLEAN_INTERVAL"`
}

// Default values for configuration
const (
	DefaultMappingRefresh = time.Hour
	DefaultMappingRetry   = 2 * time.Minute
	DefaultCleanInterval  = 2 * time.Hour
)

func (c Config) withDefaults() Config {
	if c.MappingRefresh == 0 {
		c.MappingRefresh = DefaultMappingRefresh
	}
	if c.MappingRetry == 0 {
		c.MappingRetry = DefaultMappingRetry
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
