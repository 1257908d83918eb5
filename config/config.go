package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/aalemi-dev/kafka-gateway/auth"
	"github.com/aalemi-dev/kafka-gateway/kafka"
	"github.com/aalemi-dev/kafka-gateway/logger"
	"github.com/aalemi-dev/kafka-gateway/metrics"
	"github.com/aalemi-dev/kafka-gateway/processor"
	"github.com/aalemi-dev/kafka-gateway/schema_registry"
	"github.com/aalemi-dev/kafka-gateway/server"
	"github.com/aalemi-dev/kafka-gateway/tracer"
)

// ErrInvalidConfig is returned when a loaded configuration cannot run the
// gateway.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete gateway configuration, one section per component.
type Config struct {
	Server         server.Config          `yaml:"server"`
	Kafka          kafka.Config           `yaml:"kafka"`
	SchemaRegistry schema_registry.Config `yaml:"schema_registry"`
	Auth           auth.Config            `yaml:"auth"`
	Processor      processor.Config       `yaml:"processor"`
	Logger         logger.Config          `yaml:"logger"`
	Metrics        metrics.Config         `yaml:"metrics"`
	Tracer         tracer.Config          `yaml:"tracer"`
}

// Default returns the configuration used for anything a file or the
// environment does not set. Components fill their own zero values.
func Default() *Config {
	return &Config{Auth: auth.DefaultConfig()}
}

// Load reads the YAML file at path, if path is not empty, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Source checking is a single setting shared by token validation and
	// record authorization.
	cfg.Processor.CheckSourceID = cfg.Auth.CheckSourceID

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// applyEnv processes each section on its own so variables keep the names
// in their envconfig tags instead of getting a section prefix.
func (c *Config) applyEnv() error {
	sections := []interface{}{
		&c.Server,
		&c.Kafka, &c.Kafka.TLS, &c.Kafka.SASL,
		&c.SchemaRegistry,
		&c.Auth, &c.Auth.PublicKeys,
		&c.Processor,
		&c.Logger,
		&c.Metrics,
		&c.Tracer,
	}
	for _, s := range sections {
		if err := envconfig.Process("", s); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
	}
	return nil
}

// Validate reports every setting the gateway cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers is required"))
	}
	if c.SchemaRegistry.URL == "" {
		errs = append(errs, errors.New("schema_registry.url is required"))
	}
	if !c.Auth.PublicKeys.IsConfigured() {
		errs = append(errs, errors.New("auth.public_keys needs at least one key"))
	}
	if c.Server.MaxRequestSize < 0 {
		errs = append(errs, errors.New("server.max_request_size must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Sections exposes every section as its own fx value.
type Sections struct {
	fx.Out

	Server         server.Config
	Kafka          kafka.Config
	SchemaRegistry schema_registry.Config
	Auth           auth.Config
	Processor      processor.Config
	Logger         logger.Config
	Metrics        metrics.Config
	Tracer         tracer.Config
}

// Provide splits cfg into the per-component configs consumed by each
// package's FXModule.
func (c *Config) Provide() Sections {
	return Sections{
		Server:         c.Server,
		Kafka:          c.Kafka,
		SchemaRegistry: c.SchemaRegistry,
		Auth:           c.Auth,
		Processor:      c.Processor,
		Logger:         c.Logger,
		Metrics:        c.Metrics,
		Tracer:         c.Tracer,
	}
}
