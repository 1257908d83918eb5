package schema_registry

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/kafka-gateway/observability"
)

// FXModule is an fx.Module that provides the Schema Registry client and the
// cached schema retriever.
//
// The module provides:
// 1. *Client (concrete type) for direct use
// 2. Registry interface for dependency injection
// 3. *Retriever, whose stale cache cleanup runs for the application lifetime
//
// Usage:
//
//	app := fx.New(
//	    schema_registry.FXModule,
//	    fx.Provide(
//	        func() schema_registry.Config {
//	            return schema_registry.Config{
//	                URL:      "http://localhost:8081",
//	                Username: "user",
//	                Password: "pass",
//	            }
//	        },
//	    ),
//	)
var FXModule = fx.Module("schema_registry",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(c *Client) Registry { return c },
			fx.As(new(Registry)),
		),
		NewRetrieverWithDI,
	),
	fx.Invoke(RegisterSchemaRegistryLifecycle),
)

// SchemaRegistryParams groups the dependencies needed to create a Schema Registry client
type SchemaRegistryParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI builds the registry client from injected config, attaching
// the logger and observer when the application provides them.
func NewClientWithDI(params SchemaRegistryParams) (*Client, error) {
	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}
	client.logger = params.Logger
	client.observer = params.Observer
	return client, nil
}

// RetrieverParams groups the dependencies needed to create a Retriever
type RetrieverParams struct {
	fx.In

	Config   Config
	Registry Registry
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewRetrieverWithDI creates the schema retriever using dependency injection.
func NewRetrieverWithDI(params RetrieverParams) *Retriever {
	r := NewRetriever(params.Registry, params.Config)
	if params.Logger != nil {
		r.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		r.WithObserver(params.Observer)
	}
	return r
}

// SchemaRegistryLifecycleParams groups the dependencies needed for Schema Registry lifecycle management
type SchemaRegistryLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Retriever *Retriever
	Logger    Logger `optional:"true"`
}

// RegisterSchemaRegistryLifecycle registers the schema retriever with the fx lifecycle system.
//
// The function:
//  1. On application start: starts the periodic stale cache cleanup
//  2. On application stop: stops the cleanup and waits for it to exit
func RegisterSchemaRegistryLifecycle(params SchemaRegistryLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Retriever.Start()
			if params.Logger != nil {
				params.Logger.InfoWithContext(ctx, "Schema retriever started", nil, map[string]interface{}{
					"clean_interval": params.Retriever.cfg.CleanInterval.String(),
				})
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return params.Retriever.Stop(ctx)
		},
	})
}
