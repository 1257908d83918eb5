package logger

// Log levels accepted by Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Encodings accepted by Config.Encoding.
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// Config controls the gateway's structured logger.
type Config struct {
	// Level is the minimum level written. Unknown values fall back to info.
	Level string `yaml:"level" envconfig:"LOGGER_LEVEL"`

	// Encoding is either "json" (default) or "console".
	Encoding string `yaml:"encoding" envconfig:"LOGGER_ENCODING"`

	// EnableTracing adds trace_id and span_id of the active span to entries
	// written through the *WithContext methods.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`

	// ServiceName fills the "service" field of every entry.
	ServiceName string `yaml:"service_name" envconfig:"LOGGER_SERVICE_NAME"`

	// CallerSkip is the number of wrapper frames to skip when reporting the
	// caller. Zero means 1.
	CallerSkip int `yaml:"caller_skip" envconfig:"LOGGER_CALLER_SKIP"`
}

func (c Config) withDefaults() Config {
	if c.Level == "" {
		c.Level = Info
	}
	if c.Encoding == "" {
		c.Encoding = EncodingJSON
	}
	if c.ServiceName == "" {
		c.ServiceName = "kafka-gateway"
	}
	if c.CallerSkip <= 0 {
		c.CallerSkip = 1
	}
	return c
}
