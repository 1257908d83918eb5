package processor

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/kafka-gateway/observability"
	"github.com/aalemi-dev/kafka-gateway/schema_registry"
	"github.com/aalemi-dev/kafka-gateway/tracer"
)

// FXModule is an fx.Module that provides the record processors.
//
// The module provides:
// 1. *Pipeline, shared by both processors
// 2. *AvroProcessor, whose mapping cleanup runs for the application lifetime
// 3. *BinaryConverter
//
// It requires a Config and a *schema_registry.Retriever.
var FXModule = fx.Module("processor",
	fx.Provide(
		NewPipelineWithDI,
		NewAvroProcessorWithDI,
		NewBinaryConverterWithDI,
	),
	fx.Invoke(RegisterProcessorLifecycle),
)

// PipelineParams groups the dependencies needed to create a Pipeline
type PipelineParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   tracer.Tracer          `optional:"true"`
}

// NewPipelineWithDI creates the authorization pipeline using dependency injection.
func NewPipelineWithDI(params PipelineParams) *Pipeline {
	p := NewPipeline(params.Config.CheckSourceID)
	if params.Logger != nil {
		p.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		p.WithObserver(params.Observer)
	}
	if params.Tracer != nil {
		p.WithTracer(params.Tracer)
	}
	return p
}

// ProcessorParams groups the dependencies needed to create the processors
type ProcessorParams struct {
	fx.In

	Config    Config
	Retriever *schema_registry.Retriever
	Pipeline  *Pipeline
	Logger    Logger                 `optional:"true"`
	Observer  observability.Observer `optional:"true"`
}

// NewAvroProcessorWithDI creates the Avro JSON processor using dependency injection.
func NewAvroProcessorWithDI(params ProcessorParams) *AvroProcessor {
	p := NewAvroProcessor(params.Config, params.Retriever, params.Pipeline)
	if params.Logger != nil {
		p.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		p.WithObserver(params.Observer)
	}
	return p
}

// NewBinaryConverterWithDI creates the binary record set converter using dependency injection.
func NewBinaryConverterWithDI(params ProcessorParams) *BinaryConverter {
	c := NewBinaryConverter(params.Retriever, params.Pipeline)
	if params.Logger != nil {
		c.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		c.WithObserver(params.Observer)
	}
	return c
}

// ProcessorLifecycleParams groups the dependencies needed for processor lifecycle management
type ProcessorLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Processor *AvroProcessor
	Logger    Logger `optional:"true"`
}

// RegisterProcessorLifecycle starts the schema mapping cleanup with the
// application and stops it on shutdown.
func RegisterProcessorLifecycle(params ProcessorLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Processor.Start()
			if params.Logger != nil {
				params.Logger.InfoWithContext(ctx, "Schema mapping cleanup started", nil, map[string]interface{}{
					"clean_interval": params.Processor.cfg.CleanInterval.String(),
				})
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return params.Processor.Stop(ctx)
		},
	})
}
