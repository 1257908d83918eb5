package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalemi-dev/kafka-gateway/metrics"
)

func disabledEndpoints() metrics.Config {
	return metrics.Config{
		SystemMetricsAddress:      metrics.Disabled,
		ApplicationMetricsAddress: metrics.Disabled,
		ServiceName:               "test-gateway",
	}
}

func TestNewMetrics_Defaults(t *testing.T) {
	m := metrics.NewMetrics(metrics.Config{})
	require.NotNil(t, m.SystemServer)
	require.NotNil(t, m.ApplicationServer)
	assert.Equal(t, metrics.DefaultSystemMetricsAddress, m.SystemServer.Addr)
	assert.Equal(t, metrics.DefaultApplicationMetricsAddress, m.ApplicationServer.Addr)
}

func TestNewMetrics_Disabled(t *testing.T) {
	m := metrics.NewMetrics(disabledEndpoints())
	assert.Nil(t, m.SystemServer)
	assert.Nil(t, m.ApplicationServer)
	assert.NotNil(t, m.SystemRegistry)
	assert.NotNil(t, m.ApplicationRegistry)

	// Metrics are still collected without an endpoint.
	m.CreateCounter("gateway_test_total", "test", nil).Inc()
	assert.Equal(t, 1, testutil.CollectAndCount(m.ApplicationRegistry, "gateway_test_total"))
}

func TestCreateMetrics(t *testing.T) {
	m := metrics.NewMetrics(disabledEndpoints())

	counter := m.CreateCounter("gateway_records_total", "records", []string{"topic"})
	counter.WithLabelValues("battery").Inc()
	counter.WithLabelValues("battery").Add(2)

	gauge := m.CreateGauge("gateway_in_flight", "in flight", nil)
	gauge.Inc()
	gauge.Inc()
	gauge.Dec()
	gauge.Add(4)

	hist := m.CreateHistogram("gateway_latency_seconds", "latency", []string{"route"}, []float64{0.1, 1})
	hist.WithLabelValues("/topics").Observe(0.5)

	expected := `
# HELP gateway_records_total records
# TYPE gateway_records_total counter
gateway_records_total{service="test-gateway",topic="battery"} 3
# HELP gateway_in_flight in flight
# TYPE gateway_in_flight gauge
gateway_in_flight{service="test-gateway"} 5
`
	require.NoError(t, testutil.GatherAndCompare(m.ApplicationRegistry, strings.NewReader(expected),
		"gateway_records_total", "gateway_in_flight"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ApplicationRegistry, "gateway_latency_seconds"))
}

func TestCreateMetricsIsIdempotent(t *testing.T) {
	m := metrics.NewMetrics(disabledEndpoints())

	first := m.CreateCounter("gateway_requests_total", "requests", []string{"status"})
	second := m.CreateCounter("gateway_requests_total", "requests", []string{"status"})
	first.WithLabelValues("200").Inc()
	second.WithLabelValues("200").Inc()

	expected := `
# HELP gateway_requests_total requests
# TYPE gateway_requests_total counter
gateway_requests_total{service="test-gateway",status="200"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.ApplicationRegistry, strings.NewReader(expected),
		"gateway_requests_total"))

	assert.Panics(t, func() {
		m.CreateCounter("gateway_requests_total", "requests", []string{"other"})
	})
}

func TestEndpointsServeRegistries(t *testing.T) {
	m := metrics.NewMetrics(metrics.Config{ServiceName: "test-gateway"})
	m.CreateCounter("gateway_endpoint_total", "endpoint", nil).Inc()

	scrape := func(srv *http.Server) string {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		return string(body)
	}

	app := scrape(m.ApplicationServer)
	assert.Contains(t, app, `gateway_endpoint_total{service="test-gateway"} 1`)
	assert.NotContains(t, app, "go_goroutines")

	system := scrape(m.SystemServer)
	assert.Contains(t, system, "go_goroutines")
	assert.NotContains(t, system, "gateway_endpoint_total")
}

func TestMetricsImplementsCollector(t *testing.T) {
	var _ metrics.MetricsCollector = metrics.NewMetrics(disabledEndpoints())
}
