package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aalemi-dev/kafka-gateway/logger"
	"github.com/aalemi-dev/kafka-gateway/metrics"
	"github.com/aalemi-dev/kafka-gateway/observability"
)

type recordingObserver struct {
	events []observability.OperationContext
}

func (r *recordingObserver) ObserveOperation(ctx observability.OperationContext) {
	r.events = append(r.events, ctx)
}

func TestRequestMetrics(t *testing.T) {
	m := metrics.NewMetrics(metrics.Config{
		SystemMetricsAddress:      metrics.Disabled,
		ApplicationMetricsAddress: metrics.Disabled,
		ServiceName:               "gateway",
	})
	ts := newTestServer(t, Config{})
	ts.WithMetrics(m)

	ts.do(http.MethodGet, "/", nil, nil)
	ts.do(http.MethodGet, "/", nil, nil)
	ts.do(http.MethodGet, "/health", nil, nil)

	expected := `
# HELP gateway_http_requests_total HTTP requests served by the gateway
# TYPE gateway_http_requests_total counter
gateway_http_requests_total{method="GET",route="/",service="gateway",status="200"} 2
gateway_http_requests_total{method="GET",route="/health",service="gateway",status="200"} 1
# HELP gateway_http_requests_in_flight HTTP requests currently being served
# TYPE gateway_http_requests_in_flight gauge
gateway_http_requests_in_flight{service="gateway"} 0
`
	require.NoError(t, testutil.GatherAndCompare(m.ApplicationRegistry, strings.NewReader(expected),
		"gateway_http_requests_total", "gateway_http_requests_in_flight"))
	assert.Equal(t, 2, testutil.CollectAndCount(m.ApplicationRegistry, "gateway_http_request_duration_seconds"))
}

func TestAccessLogAndObserver(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	events := &recordingObserver{}

	ts := newTestServer(t, Config{})
	ts.WithLogger(&logger.LoggerClient{Zap: zap.New(core)}).WithObserver(events)

	ts.do(http.MethodGet, "/health", nil, nil)

	access := logs.FilterMessage("HTTP request").All()
	require.Len(t, access, 1)
	fields := access[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/health", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])

	require.Len(t, events.events, 1)
	assert.Equal(t, "server", events.events[0].Component)
	assert.Equal(t, "/health", events.events[0].Resource)
	assert.NoError(t, events.events[0].Error)
}
