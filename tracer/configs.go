package tracer

// Config controls the OpenTelemetry tracer provider.
type Config struct {
	// ServiceName is reported as service.name on every span.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv is reported as deployment.environment.
	AppEnv string `yaml:"app_env" envconfig:"TRACER_APP_ENV"`

	// EnableExport sends spans to an OTLP HTTP collector. Without it spans
	// are still created and propagated but never leave the process.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`

	// Endpoint is the collector URL, e.g. http://otel-collector:4318. Empty
	// falls back to the OTEL_EXPORTER_OTLP_* environment variables.
	Endpoint string `yaml:"endpoint" envconfig:"TRACER_ENDPOINT"`

	// SampleRatio is the fraction of new traces sampled, between 0 and 1.
	// Requests that arrive with a sampled parent are always sampled.
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"TRACER_SAMPLE_RATIO"`
}

func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = "kafka-gateway"
	}
	if c.SampleRatio <= 0 || c.SampleRatio > 1 {
		c.SampleRatio = 1
	}
	return c
}
