package tracer

import (
	"context"
)

// Tracer creates spans and moves trace context across process boundaries.
type Tracer interface {
	// StartSpan starts a span named name. The caller must End it.
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// GetCarrier serializes the trace context of ctx into headers.
	GetCarrier(ctx context.Context) map[string]string

	// SetCarrierOnContext returns ctx carrying the remote trace context in
	// carrier.
	SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context
}

// Span is a single traced operation.
type Span interface {
	End()

	// SetAttributes adds attributes to the span. Values other than strings,
	// ints, floats, bools and string slices are formatted with fmt.Sprint.
	SetAttributes(attrs map[string]interface{})

	// RecordError records err and marks the span as failed. A nil err is
	// ignored.
	RecordError(err error)
}
