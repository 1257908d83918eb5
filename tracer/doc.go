// Package tracer provides OpenTelemetry tracing for the gateway.
//
// The HTTP server continues the caller's trace from the W3C traceparent
// header and starts one span per request. The authorization pipeline and
// the Kafka publish step add child spans, so a slow ingest can be split
// into permission checks and broker acknowledgements.
//
// Spans are exported over OTLP HTTP only when Config.EnableExport is set:
//
//	tracer:
//	  enable_export: true
//	  endpoint: http://otel-collector:4318
//	  sample_ratio: 0.1
//
// Components depend on the Tracer and Span interfaces rather than on the
// OpenTelemetry API:
//
//	ctx, span := t.StartSpan(ctx, "kafka.publish")
//	defer span.End()
//	span.SetAttributes(map[string]interface{}{"messaging.destination": topic})
//	if err := publish(ctx); err != nil {
//	    span.RecordError(err)
//	}
package tracer
