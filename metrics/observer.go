package metrics

import (
	"github.com/aalemi-dev/kafka-gateway/observability"
)

// OperationObserver records every observed operation as
// gateway_operations_total{component,operation,status} and
// gateway_operation_duration_seconds{component,operation}.
type OperationObserver struct {
	operations Counter
	duration   Histogram
	size       Histogram
}

// NewObserver registers the operation series in collector.
func NewObserver(collector MetricsCollector) *OperationObserver {
	return &OperationObserver{
		operations: collector.CreateCounter("gateway_operations_total",
			"Completed gateway operations by component and outcome",
			[]string{"component", "operation", "status"}),
		duration: collector.CreateHistogram("gateway_operation_duration_seconds",
			"Duration of gateway operations",
			[]string{"component", "operation"},
			[]float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}),
		size: collector.CreateHistogram("gateway_operation_size",
			"Records or bytes handled per gateway operation",
			[]string{"component", "operation"},
			[]float64{1, 10, 100, 1000, 10000, 100000, 1e6, 1e7}),
	}
}

func (o *OperationObserver) ObserveOperation(ctx observability.OperationContext) {
	o.operations.WithLabelValues(ctx.Component, ctx.Operation, ctx.Status()).Inc()
	o.duration.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())
	if ctx.Size > 0 {
		o.size.WithLabelValues(ctx.Component, ctx.Operation).Observe(float64(ctx.Size))
	}
}

var _ observability.Observer = (*OperationObserver)(nil)
