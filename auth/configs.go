package auth

import (
	"context"
)

// Config defines how bearer tokens are verified and how record identities
// are authorized against them.
type Config struct {
	// Issuer is the expected "iss" claim. Empty disables the issuer check.
	Issuer string `yaml:"issuer" envconfig:"AUTH_ISSUER"`

	// ResourceName is the expected audience of the token.
	// Default: "res_gateway"
	ResourceName string `yaml:"resource_name" envconfig:"AUTH_RESOURCE_NAME"`

	// CheckSourceID requires every record to name a source registered in the
	// token. When disabled, records are authorized by project and user only.
	CheckSourceID bool `yaml:"check_source_id" envconfig:"AUTH_CHECK_SOURCE_ID"`

	// PublicKeys verify token signatures.
	PublicKeys KeyConfig `yaml:"public_keys" ignored:"true"`
}

// KeyConfig lists the public keys accepted for token signatures, in PEM format.
type KeyConfig struct {
	ECDSA []string `yaml:"ecdsa" envconfig:"AUTH_PUBLIC_KEYS_ECDSA"`
	RSA   []string `yaml:"rsa" envconfig:"AUTH_PUBLIC_KEYS_RSA"`
}

// IsConfigured reports whether at least one key is present.
func (k KeyConfig) IsConfigured() bool {
	return len(k.ECDSA) > 0 || len(k.RSA) > 0
}

const (
	// DefaultResourceName is the audience the gateway expects in its tokens.
	DefaultResourceName = "res_gateway"

	// ScopeMeasurementCreate allows submitting measurements.
	ScopeMeasurementCreate = "MEASUREMENT.CREATE"

	// RoleParticipant marks the projects a subject participates in.
	RoleParticipant = "ROLE_PARTICIPANT"
)

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ResourceName:  DefaultResourceName,
		CheckSourceID: true,
	}
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
