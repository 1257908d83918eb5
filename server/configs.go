package server

import (
	"context"
	"time"
)

// Config defines the HTTP surface of the gateway.
type Config struct {
	// Address is the listen address of the HTTP server.
	// Default: ":8090"
	Address string `yaml:"address" envconfig:"SERVER_ADDRESS"`

	// BasePath mounts every route under a prefix, e.g. "/kafka".
	BasePath string `yaml:"base_path" envconfig:"SERVER_BASE_PATH"`

	// MaxRequestSize bounds request bodies after decompression, in bytes.
	// Default: 24 MiB
	MaxRequestSize int64 `yaml:"max_request_size" envconfig:"SERVER_MAX_REQUEST_SIZE"`

	// ReadTimeout bounds reading a full request including its body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`

	// WriteTimeout bounds processing and writing a response.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`

	// IdleTimeout closes idle keep-alive connections.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout" envconfig:"SERVER_IDLE_TIMEOUT"`
}

// Default values for configuration
const (
	DefaultAddress        = ":8090"
	DefaultMaxRequestSize = 24 << 20
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultIdleTimeout    = 120 * time.Second
)

func (c Config) withDefaults() Config {
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.MaxRequestSize <= 0 {
		c.MaxRequestSize = DefaultMaxRequestSize
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
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
