package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
	franzsasl "github.com/twmb/franz-go/pkg/sasl"
	franzplain "github.com/twmb/franz-go/pkg/sasl/plain"
	franzscram "github.com/twmb/franz-go/pkg/sasl/scram"
)

// messageWriter is the part of *kafka.Writer used by the producer pool.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ messageWriter = (*kafka.Writer)(nil)

// writerFactory creates the writer of a new pooled producer.
type writerFactory func() (messageWriter, error)

// dialSettings are the TLS and SASL settings shared by all connections.
type dialSettings struct {
	tls       *tls.Config
	mechanism sasl.Mechanism
}

func newDialSettings(cfg Config) (dialSettings, error) {
	var (
		d   dialSettings
		err error
	)
	if cfg.TLS.Enabled {
		d.tls, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return d, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}
	if cfg.SASL.Enabled {
		d.mechanism, err = createSASLMechanism(cfg.SASL)
		if err != nil {
			return d, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
	}
	return d, nil
}

// createErrorLogger forwards kafka-go internal errors to logger.
func createErrorLogger(logger Logger) kafka.LoggerFunc {
	if logger == nil {
		return func(string, ...interface{}) {}
	}
	return func(msg string, args ...interface{}) {
		formattedMsg := msg
		if len(args) > 0 {
			formattedMsg = fmt.Sprintf(msg, args...)
		}
		logger.ErrorWithContext(context.Background(), "Kafka internal error", nil, map[string]interface{}{
			"error": formattedMsg,
		})
	}
}

// createWriter creates a Kafka writer that is not bound to a topic; every
// message carries its own topic.
func createWriter(cfg Config, dial dialSettings, logger Logger) *kafka.Writer {
	transport := &kafka.Transport{
		TLS:  dial.tls,
		SASL: dial.mechanism,
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Transport:    transport,
		ErrorLogger:  createErrorLogger(logger),
	}

	// Set compression
	switch cfg.CompressionCodec {
	case "gzip":
		w.Compression = compress.Gzip
	case "snappy":
		w.Compression = compress.Snappy
	case "lz4":
		w.Compression = compress.Lz4
	case "zstd":
		w.Compression = compress.Zstd
	}

	return w
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	// Load CA certificate
	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	// Load client certificate
	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// createSASLMechanism creates a kafka-go SASL mechanism for producers
func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.Mechanism)
	}
}

// createAdminSASLMechanism creates the franz-go equivalent of
// createSASLMechanism for the metadata client
func createAdminSASLMechanism(cfg SASLConfig) (franzsasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return franzplain.Auth{User: cfg.Username, Pass: cfg.Password}.AsMechanism(), nil
	case "SCRAM-SHA-256":
		return franzscram.Auth{User: cfg.Username, Pass: cfg.Password}.AsSha256Mechanism(), nil
	case "SCRAM-SHA-512":
		return franzscram.Auth{User: cfg.Username, Pass: cfg.Password}.AsSha512Mechanism(), nil
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.Mechanism)
	}
}
