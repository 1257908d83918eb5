package kafka

import (
	"context"
	"time"
)

// Config defines the configuration of the producer pool and the topic
// metadata service. Both share the broker list and the TLS/SASL settings.
type Config struct {
	// Brokers is a list of Kafka broker addresses
	Brokers []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`

	// PoolSize is the number of idle producers kept for reuse.
	// Producers created beyond this size are closed after use.
	// Default: 20
	PoolSize int `yaml:"pool_size" envconfig:"KAFKA_POOL_SIZE"`

	// MaxRequests is the number of publish calls allowed in flight at once.
	// Calls beyond this limit are rejected immediately.
	// Default: 200
	MaxRequests int64 `yaml:"max_requests" envconfig:"KAFKA_MAX_REQUESTS"`

	// RequiredAcks determines how many replica acknowledgments to wait for
	// Options:
	//   RequireNone (0): Don't wait for acknowledgment
	//   RequireOne (1): Wait for leader only
	//   RequireAll (-1): Wait for all in-sync replicas
	// Default: RequireAll (-1)
	RequiredAcks int `yaml:"required_acks" envconfig:"KAFKA_REQUIRED_ACKS"`

	// WriteTimeout bounds a single publish, including acknowledgements.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"KAFKA_WRITE_TIMEOUT"`

	// MaxAttempts is the maximum number of attempts to deliver a message
	// Default: 3
	MaxAttempts int `yaml:"max_attempts" envconfig:"KAFKA_MAX_ATTEMPTS"`

	// CompressionCodec specifies the compression algorithm to use
	// Options: "" (no compression), gzip, snappy, lz4, zstd
	CompressionCodec string `yaml:"compression_codec" envconfig:"KAFKA_COMPRESSION_CODEC"`

	// AdminTimeout bounds a single metadata request.
	// Default: 3s
	AdminTimeout time.Duration `yaml:"admin_timeout" envconfig:"KAFKA_ADMIN_TIMEOUT"`

	// Topic cache windows. A topic list miss is retried after TopicListRetry
	// instead of waiting for TopicListRefresh.
	TopicListRefresh time.Duration `yaml:"topic_list_refresh" envconfig:"KAFKA_TOPIC_LIST_REFRESH"`
	TopicListRetry   time.Duration `yaml:"topic_list_retry" envconfig:"KAFKA_TOPIC_LIST_RETRY"`
	TopicInfoRefresh time.Duration `yaml:"topic_info_refresh" envconfig:"KAFKA_TOPIC_INFO_REFRESH"`
	TopicInfoRetry   time.Duration `yaml:"topic_info_retry" envconfig:"KAFKA_TOPIC_INFO_RETRY"`

	// TLS contains TLS/SSL configuration
	TLS TLSConfig `yaml:"tls" ignored:"true"`

	// SASL contains SASL authentication configuration
	SASL SASLConfig `yaml:"sasl" ignored:"true"`
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

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	// Enabled determines whether to use TLS/SSL for the connection
	Enabled bool `yaml:"enabled" envconfig:"KAFKA_TLS_ENABLED"`

	// CACertPath is the file path to the CA certificate for verifying the broker
	CACertPath string `yaml:"ca_cert_path" envconfig:"KAFKA_TLS_CA_CERT_PATH"`

	// ClientCertPath is the file path to the client certificate
	ClientCertPath string `yaml:"client_cert_path" envconfig:"KAFKA_TLS_CLIENT_CERT_PATH"`

	// ClientKeyPath is the file path to the client certificate's private key
	ClientKeyPath string `yaml:"client_key_path" envconfig:"KAFKA_TLS_CLIENT_KEY_PATH"`

	// InsecureSkipVerify controls whether to skip verification of the server's certificate
	// WARNING: Setting this to true is insecure and should only be used in testing
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" envconfig:"KAFKA_TLS_INSECURE_SKIP_VERIFY"`
}

// SASLConfig contains SASL authentication configuration parameters.
type SASLConfig struct {
	// Enabled determines whether to use SASL authentication
	Enabled bool `yaml:"enabled" envconfig:"KAFKA_SASL_ENABLED"`

	// Mechanism specifies the SASL mechanism to use
	// Options: "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512"
	Mechanism string `yaml:"mechanism" envconfig:"KAFKA_SASL_MECHANISM"`

	// Username is the SASL username
	Username string `yaml:"username" envconfig:"KAFKA_SASL_USERNAME"`

	// Password is the SASL password
	Password string `yaml:"password" envconfig:"KAFKA_SASL_PASSWORD"` //nolint:gosec
}

// Default values for configuration
const (
	DefaultPoolSize     = 20
	DefaultMaxRequests  = 200
	DefaultRequiredAcks = -1 // WaitForAll
	DefaultMaxAttempts  = 3
	DefaultWriteTimeout = 10 * time.Second
	DefaultAdminTimeout = 3 * time.Second

	DefaultTopicListRefresh = 10 * time.Second
	DefaultTopicListRetry   = 2 * time.Second
	DefaultTopicInfoRefresh = 30 * time.Minute
	DefaultTopicInfoRetry   = 2 * time.Second

	// Producer acknowledgment modes
	RequireNone = 0  // Fire-and-forget (no acknowledgment)
	RequireOne  = 1  // Wait for leader only
	RequireAll  = -1 // Wait for all in-sync replicas (most durable)
)

// withDefaults fills every zero field with its default.
func (c Config) withDefaults() Config {
	if c.PoolSize == 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.MaxRequests == 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = DefaultRequiredAcks
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.AdminTimeout == 0 {
		c.AdminTimeout = DefaultAdminTimeout
	}
	if c.TopicListRefresh == 0 {
		c.TopicListRefresh = DefaultTopicListRefresh
	}
	if c.TopicListRetry == 0 {
		c.TopicListRetry = DefaultTopicListRetry
	}
	if c.TopicInfoRefresh == 0 {
		c.TopicInfoRefresh = DefaultTopicInfoRefresh
	}
	if c.TopicInfoRetry == 0 {
		c.TopicInfoRetry = DefaultTopicInfoRetry
	}
	return c
}
