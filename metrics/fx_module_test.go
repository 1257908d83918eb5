package metrics_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/aalemi-dev/kafka-gateway/metrics"
	"github.com/aalemi-dev/kafka-gateway/observability"
)

func TestFXModule(t *testing.T) {
	var (
		m         *metrics.Metrics
		collector metrics.MetricsCollector
		observer  observability.Observer
	)

	app := fxtest.New(t,
		metrics.FXModule,
		fx.Provide(func() metrics.Config {
			return metrics.Config{
				SystemMetricsAddress:      "127.0.0.1:0",
				ApplicationMetricsAddress: "127.0.0.1:0",
			}
		}),
		fx.Populate(&m, &collector, &observer),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Same(t, m, collector)
	assert.IsType(t, &metrics.OperationObserver{}, observer)
}

func TestRegisterMetricsLifecycle_PortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	app := fx.New(
		fx.NopLogger,
		metrics.FXModule,
		fx.Provide(func() metrics.Config {
			return metrics.Config{
				SystemMetricsAddress:      metrics.Disabled,
				ApplicationMetricsAddress: ln.Addr().String(),
			}
		}),
	)
	require.NoError(t, app.Err())
	assert.Error(t, app.Start(t.Context()))
}

func TestRegisterMetricsLifecycle_NoServers(t *testing.T) {
	app := fxtest.New(t,
		fx.Provide(func() *metrics.Metrics {
			return metrics.NewMetrics(metrics.Config{
				SystemMetricsAddress:      metrics.Disabled,
				ApplicationMetricsAddress: metrics.Disabled,
			})
		}),
		fx.Invoke(metrics.RegisterMetricsLifecycle),
	)
	app.RequireStart()
	app.RequireStop()
}
