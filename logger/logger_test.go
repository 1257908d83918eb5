package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level, tracingEnabled bool) (*LoggerClient, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &LoggerClient{Zap: zap.New(core), tracingEnabled: tracingEnabled}, logs
}

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestNewLoggerClient(t *testing.T) {
	l, err := NewLoggerClient(Config{})
	require.NoError(t, err)
	assert.NotNil(t, l.Zap)
	assert.True(t, l.Zap.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Zap.Core().Enabled(zapcore.DebugLevel))

	l, err = NewLoggerClient(Config{Level: Debug, Encoding: EncodingConsole, EnableTracing: true})
	require.NoError(t, err)
	assert.True(t, l.Zap.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.tracingEnabled)

	_, err = NewLoggerClient(Config{Encoding: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		Debug:     zapcore.DebugLevel,
		Info:      zapcore.InfoLevel,
		Warning:   zapcore.WarnLevel,
		"warn":    zapcore.WarnLevel,
		Error:     zapcore.ErrorLevel,
		"unknown": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for name, want := range cases {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, Info, cfg.Level)
	assert.Equal(t, EncodingJSON, cfg.Encoding)
	assert.Equal(t, "kafka-gateway", cfg.ServiceName)
	assert.Equal(t, 1, cfg.CallerSkip)
}

func TestLevels(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel, false)
	l.Debug("d", nil)
	l.Info("i", nil)
	l.Warn("w", nil)
	l.Error("e", nil)

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestDisabledLevelIsDropped(t *testing.T) {
	l, logs := newObservedLogger(zapcore.InfoLevel, false)
	l.Debug("hidden", nil, map[string]interface{}{"k": "v"})
	l.DebugWithContext(context.Background(), "hidden", nil)
	assert.Zero(t, logs.Len())
}

func TestFields(t *testing.T) {
	l, logs := newObservedLogger(zapcore.InfoLevel, false)
	l.Error("Cannot publish records", errors.New("broker down"),
		map[string]interface{}{"topic": "android_phone_battery"},
		map[string]interface{}{"records": 3})

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "broker down", fields["error"])
	assert.Equal(t, "android_phone_battery", fields["topic"])
	assert.EqualValues(t, 3, fields["records"])
}

func TestNilFieldMapIsIgnored(t *testing.T) {
	l, logs := newObservedLogger(zapcore.InfoLevel, false)
	l.Info("msg", nil, nil)
	require.Equal(t, 1, logs.Len())
	assert.Empty(t, logs.All()[0].ContextMap())
}

func TestTracingFields(t *testing.T) {
	ctx := spanContext(t)

	l, logs := newObservedLogger(zapcore.InfoLevel, true)
	l.InfoWithContext(ctx, "traced", nil)
	l.InfoWithContext(context.Background(), "untraced", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entries[0].ContextMap()["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entries[0].ContextMap()["span_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")

	disabled, logs := newObservedLogger(zapcore.InfoLevel, false)
	disabled.WarnWithContext(ctx, "not traced", nil)
	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "trace_id")
}

func TestNamed(t *testing.T) {
	l, logs := newObservedLogger(zapcore.InfoLevel, true)
	l.Named("processor").ErrorWithContext(spanContext(t), "failed", nil)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "processor", fields["component"])
	assert.Contains(t, fields, "trace_id")
}

func TestLoggerClientImplementsLogger(t *testing.T) {
	var _ Logger = &LoggerClient{}
}
