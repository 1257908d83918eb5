package tracer

import (
	"context"

	"go.uber.org/fx"
)

// Logger is the subset of logging used by the tracer lifecycle.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// FXModule provides *TracerClient and Tracer from a Config and shuts the
// provider down, flushing pending spans, when the application stops.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
		fx.Annotate(
			func(t *TracerClient) Tracer { return t },
			fx.As(new(Tracer)),
		),
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// LifecycleParams groups the dependencies of RegisterTracerLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *TracerClient
	Logger    Logger `optional:"true"`
}

// RegisterTracerLifecycle shuts the tracer down on stop.
func RegisterTracerLifecycle(p LifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if p.Logger != nil {
				p.Logger.InfoWithContext(ctx, "Shutting down tracer", nil)
			}
			return p.Client.Shutdown(ctx)
		},
	})
}
