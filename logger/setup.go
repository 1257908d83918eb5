package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerClient wraps a zap.Logger with the map based field API used
// throughout the gateway.
type LoggerClient struct {
	// Zap is exposed for code that needs zap directly, such as fx event
	// logging.
	Zap *zap.Logger

	tracingEnabled bool
}

// NewLoggerClient builds a logger writing to stderr.
//
// Every entry carries the process id and the service name. Timestamps are
// ISO8601 and levels are upper case.
func NewLoggerClient(cfg Config) (*LoggerClient, error) {
	cfg = cfg.withDefaults()

	if cfg.Encoding != EncodingJSON && cfg.Encoding != EncodingConsole {
		return nil, fmt.Errorf("logger: unsupported encoding %q", cfg.Encoding)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(cfg.Level)),
		Encoding:         cfg.Encoding,
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	zl, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(cfg.CallerSkip+1))
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	return &LoggerClient{Zap: zl, tracingEnabled: cfg.EnableTracing}, nil
}

// ParseLevel maps a configured level name to a zap level.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning, "warn":
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// Named returns a child logger whose entries carry a "component" field.
func (l *LoggerClient) Named(component string) *LoggerClient {
	return &LoggerClient{
		Zap:            l.Zap.With(zap.String("component", component)),
		tracingEnabled: l.tracingEnabled,
	}
}
