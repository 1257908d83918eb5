package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordingClient(t *testing.T) (*TracerClient, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	client, err := newClientWithContext(context.Background(),
		Config{ServiceName: "test", AppEnv: "test"}, sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)
	return client, recorder
}

func attributeMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestStartSpan(t *testing.T) {
	client, recorder := newRecordingClient(t)

	parentCtx, parent := client.StartSpan(context.Background(), "HTTP POST")
	childCtx, child := client.StartSpan(parentCtx, "processor.process")
	child.End()
	parent.End()

	assert.True(t, trace.SpanFromContext(childCtx).IsRecording())
	assert.Equal(t,
		trace.SpanFromContext(parentCtx).SpanContext().TraceID(),
		trace.SpanFromContext(childCtx).SpanContext().TraceID())

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "processor.process", ended[0].Name())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
	assert.Equal(t, instrumentationName, ended[0].InstrumentationScope().Name)
}

func TestSetAttributes(t *testing.T) {
	client, recorder := newRecordingClient(t)

	_, span := client.StartSpan(context.Background(), "attrs")
	span.SetAttributes(map[string]interface{}{
		"str":     "battery",
		"int":     42,
		"int64":   int64(100),
		"float64": 3.5,
		"bool":    true,
		"slice":   []string{"a", "b"},
		"other":   struct{ N int }{7},
	})
	span.SetAttributes(nil)
	span.End()

	require.Len(t, recorder.Ended(), 1)
	attrs := attributeMap(recorder.Ended()[0])
	assert.Equal(t, "battery", attrs["str"].AsString())
	assert.Equal(t, int64(42), attrs["int"].AsInt64())
	assert.Equal(t, int64(100), attrs["int64"].AsInt64())
	assert.Equal(t, 3.5, attrs["float64"].AsFloat64())
	assert.True(t, attrs["bool"].AsBool())
	assert.Equal(t, []string{"a", "b"}, attrs["slice"].AsStringSlice())
	assert.Equal(t, "{7}", attrs["other"].AsString())
}

func TestRecordError(t *testing.T) {
	client, recorder := newRecordingClient(t)

	_, span := client.StartSpan(context.Background(), "fails")
	span.RecordError(nil)
	span.RecordError(errors.New("broker down"))
	span.End()

	require.Len(t, recorder.Ended(), 1)
	ended := recorder.Ended()[0]
	assert.Equal(t, codes.Error, ended.Status().Code)
	assert.Equal(t, "broker down", ended.Status().Description)
	assert.Len(t, ended.Events(), 1)
}

func TestCarrierRoundTrip(t *testing.T) {
	client, _ := newRecordingClient(t)

	assert.NotContains(t, client.GetCarrier(context.Background()), "traceparent")

	ctx, span := client.StartSpan(context.Background(), "carrier")
	defer span.End()

	carrier := client.GetCarrier(ctx)
	require.Contains(t, carrier, "traceparent")

	restored := trace.SpanContextFromContext(client.SetCarrierOnContext(context.Background(), carrier))
	assert.True(t, restored.IsValid())
	assert.True(t, restored.IsRemote())
	assert.Equal(t, trace.SpanContextFromContext(ctx).TraceID(), restored.TraceID())
}

func TestSetCarrierOnContext_Empty(t *testing.T) {
	client, _ := newRecordingClient(t)
	ctx := client.SetCarrierOnContext(context.Background(), map[string]string{})
	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
}
