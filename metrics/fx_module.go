package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/fx"

	"github.com/aalemi-dev/kafka-gateway/observability"
)

// Logger is the subset of logging used by the metrics endpoints.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// FXModule provides *Metrics, MetricsCollector and an observability.Observer
// backed by the application registry, and serves both endpoints while the
// application runs.
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		fx.Annotate(
			func(m *Metrics) MetricsCollector { return m },
			fx.As(new(MetricsCollector)),
		),
		fx.Annotate(
			func(c MetricsCollector) observability.Observer { return NewObserver(c) },
			fx.As(new(observability.Observer)),
		),
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// LifecycleParams groups the dependencies of RegisterMetricsLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    Logger `optional:"true"`
}

// RegisterMetricsLifecycle binds both endpoints on start, so a taken port
// fails startup, and shuts them down on stop.
func RegisterMetricsLifecycle(p LifecycleParams) {
	servers := []struct {
		name string
		srv  *http.Server
	}{
		{"system", p.Metrics.SystemServer},
		{"application", p.Metrics.ApplicationServer},
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var started []*http.Server
			for _, s := range servers {
				if s.srv == nil {
					continue
				}
				ln, err := net.Listen("tcp", s.srv.Addr)
				if err != nil {
					for _, srv := range started {
						_ = srv.Close()
					}
					return err
				}
				started = append(started, s.srv)
				if p.Logger != nil {
					p.Logger.InfoWithContext(ctx, "Serving metrics", nil, map[string]interface{}{
						"endpoint": s.name,
						"address":  ln.Addr().String(),
					})
				}
				go func(name string, srv *http.Server) {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && p.Logger != nil {
						p.Logger.ErrorWithContext(context.Background(), "Metrics server failed", err,
							map[string]interface{}{"endpoint": name})
					}
				}(s.name, s.srv)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var errs []error
			for _, s := range servers {
				if s.srv != nil {
					errs = append(errs, s.srv.Shutdown(ctx))
				}
			}
			return errors.Join(errs...)
		},
	})
}
