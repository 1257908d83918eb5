package server

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/kafka-gateway/auth"
	"github.com/aalemi-dev/kafka-gateway/kafka"
	"github.com/aalemi-dev/kafka-gateway/metrics"
	"github.com/aalemi-dev/kafka-gateway/observability"
	"github.com/aalemi-dev/kafka-gateway/processor"
	"github.com/aalemi-dev/kafka-gateway/tracer"
)

// FXModule is an fx.Module that provides the HTTP server and runs it for the
// application lifetime.
//
// Usage:
//
//	app := fx.New(
//	    auth.FXModule,
//	    kafka.FXModule,
//	    schema_registry.FXModule,
//	    processor.FXModule,
//	    server.FXModule,
//	    fx.Provide(func() server.Config { return server.Config{Address: ":8090"} }),
//	)
var FXModule = fx.Module("server",
	fx.Provide(NewServerWithDI),
	fx.Invoke(RegisterServerLifecycle),
)

// ServerParams groups the dependencies needed to create the HTTP server
type ServerParams struct {
	fx.In

	Config    Config
	Verifier  auth.Verifier
	Topics    *kafka.TopicService
	Publisher kafka.Publisher
	JSON      *processor.AvroProcessor
	Binary    *processor.BinaryConverter
	Logger    Logger                   `optional:"true"`
	Observer  observability.Observer   `optional:"true"`
	Tracer    tracer.Tracer            `optional:"true"`
	Metrics   metrics.MetricsCollector `optional:"true"`
}

// NewServerWithDI creates the HTTP server using dependency injection.
func NewServerWithDI(params ServerParams) *Server {
	s := NewServer(params.Config, Deps{
		Verifier:  params.Verifier,
		Topics:    params.Topics,
		Health:    params.Topics,
		Publisher: params.Publisher,
		JSON:      params.JSON,
		Binary:    params.Binary,
	})
	if params.Logger != nil {
		s.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		s.WithObserver(params.Observer)
	}
	if params.Tracer != nil {
		s.WithTracer(params.Tracer)
	}
	if params.Metrics != nil {
		s.WithMetrics(params.Metrics)
	}
	return s
}

// ServerLifecycleParams groups the dependencies needed for server lifecycle management
type ServerLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Server    *Server
}

// RegisterServerLifecycle starts listening when the application starts and
// drains in-flight requests on shutdown.
func RegisterServerLifecycle(params ServerLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return params.Server.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return params.Server.Stop(ctx)
		},
	})
}
