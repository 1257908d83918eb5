package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/aalemi-dev/kafka-gateway/auth"
	"github.com/aalemi-dev/kafka-gateway/config"
	"github.com/aalemi-dev/kafka-gateway/kafka"
	"github.com/aalemi-dev/kafka-gateway/logger"
	"github.com/aalemi-dev/kafka-gateway/metrics"
	"github.com/aalemi-dev/kafka-gateway/processor"
	"github.com/aalemi-dev/kafka-gateway/schema_registry"
	"github.com/aalemi-dev/kafka-gateway/server"
	"github.com/aalemi-dev/kafka-gateway/tracer"
)

func main() {
	path := flag.String("config", os.Getenv("GATEWAY_CONFIG"), "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fx.New(options(cfg)...).Run()
}

func options(cfg *config.Config) []fx.Option {
	return []fx.Option{
		fx.Supply(cfg),
		fx.Provide(cfg.Provide),
		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx").Zap}
		}),

		logger.FXModule,
		fx.Provide(componentLoggers),
		metrics.FXModule,
		tracer.FXModule,

		auth.FXModule,
		kafka.FXModule,
		schema_registry.FXModule,
		processor.FXModule,
		server.FXModule,
	}
}

// Loggers gives every component a child logger tagged with its name.
type Loggers struct {
	fx.Out

	Auth           auth.Logger
	Kafka          kafka.Logger
	SchemaRegistry schema_registry.Logger
	Processor      processor.Logger
	Server         server.Logger
	Metrics        metrics.Logger
	Tracer         tracer.Logger
}

func componentLoggers(l *logger.LoggerClient) Loggers {
	return Loggers{
		Auth:           l.Named("auth"),
		Kafka:          l.Named("kafka"),
		SchemaRegistry: l.Named("schema_registry"),
		Processor:      l.Named("processor"),
		Server:         l.Named("server"),
		Metrics:        l.Named("metrics"),
		Tracer:         l.Named("tracer"),
	}
}
