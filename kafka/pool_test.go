package kafka

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalemi-dev/kafka-gateway/apperr"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	block    chan struct{}
	entered  chan struct{}
	closed   atomic.Bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.entered != nil {
		w.entered <- struct{}{}
	}
	if w.block != nil {
		<-w.block
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed.Store(true)
	return nil
}

type writerRecorder struct {
	mu      sync.Mutex
	writers []*fakeWriter
	build   func() *fakeWriter
}

func (r *writerRecorder) factory() (messageWriter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := &fakeWriter{}
	if r.build != nil {
		w = r.build()
	}
	r.writers = append(r.writers, w)
	return w, nil
}

func (r *writerRecorder) created() []*fakeWriter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*fakeWriter{}, r.writers...)
}

func newTestPool(t *testing.T, cfg Config, rec *writerRecorder) *ProducerPool {
	t.Helper()
	cfg.Brokers = []string{"localhost:9092"}
	pool, err := NewProducerPool(cfg)
	require.NoError(t, err)
	pool.newWriter = rec.factory
	return pool
}

type failingSerializer struct{}

func (failingSerializer) Serialize(interface{}) ([]byte, error) {
	return nil, errors.New("value does not match schema")
}

func testBatch(values ...string) Batch {
	b := Batch{
		Topic:           "test-topic",
		KeySerializer:   BytesSerializer{},
		ValueSerializer: BytesSerializer{},
	}
	for _, v := range values {
		b.Records = append(b.Records, Record{Key: "k", Value: v})
	}
	return b
}

func TestNewProducerPoolRequiresBrokers(t *testing.T) {
	_, err := NewProducerPool(Config{})
	assert.Error(t, err)
}

func TestPublishReusesProducer(t *testing.T) {
	rec := &writerRecorder{}
	pool := newTestPool(t, Config{}, rec)

	require.NoError(t, pool.Publish(context.Background(), testBatch("a", "b")))
	require.NoError(t, pool.Publish(context.Background(), testBatch("c")))

	writers := rec.created()
	require.Len(t, writers, 1)
	assert.Equal(t, 1, pool.Idle())
	assert.False(t, writers[0].closed.Load())

	msgs := writers[0].messages
	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.Equal(t, "test-topic", m.Topic)
		assert.Equal(t, []byte("k"), m.Key)
	}
	assert.Equal(t, []byte("c"), msgs[2].Value)
}

func TestPublishRejectsWhenNoPermitLeft(t *testing.T) {
	block := make(chan struct{})
	entered := make(chan struct{}, 1)
	rec := &writerRecorder{build: func() *fakeWriter {
		return &fakeWriter{block: block, entered: entered}
	}}
	pool := newTestPool(t, Config{MaxRequests: 1}, rec)

	done := make(chan error, 1)
	go func() { done <- pool.Publish(context.Background(), testBatch("a")) }()
	<-entered

	err := pool.Publish(context.Background(), testBatch("b"))
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	assert.Equal(t, "Too many open Kafka requests", appErr.Message)

	close(block)
	require.NoError(t, <-done)

	// the permit is released once the first call returns
	require.NoError(t, pool.Publish(context.Background(), testBatch("c")))
}

func TestPublishClosesProducersBeyondPoolSize(t *testing.T) {
	block := make(chan struct{})
	entered := make(chan struct{}, 2)
	rec := &writerRecorder{build: func() *fakeWriter {
		return &fakeWriter{block: block, entered: entered}
	}}
	pool := newTestPool(t, Config{PoolSize: 1, MaxRequests: 2}, rec)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, pool.Publish(context.Background(), testBatch("a")))
		}()
	}
	<-entered
	<-entered
	close(block)
	wg.Wait()

	writers := rec.created()
	require.Len(t, writers, 2)
	assert.Equal(t, 1, pool.Idle())
	closed := 0
	for _, w := range writers {
		if w.closed.Load() {
			closed++
		}
	}
	assert.Equal(t, 1, closed)
}

func TestPublishFailureHandling(t *testing.T) {
	tests := []struct {
		name     string
		writeErr error
		batch    Batch
		status   int
		code     string
		reused   bool
	}{
		{
			name:   "serialization failure keeps the producer",
			batch:  Batch{Topic: "t", KeySerializer: BytesSerializer{}, ValueSerializer: failingSerializer{}, Records: []Record{{Key: "k", Value: 1}}},
			status: http.StatusBadRequest,
			code:   "bad_serialization",
			reused: true,
		},
		{
			name:     "timeout discards the producer",
			writeErr: context.DeadlineExceeded,
			status:   http.StatusGatewayTimeout,
			code:     "kafka_timeout",
		},
		{
			name:     "fenced producer is discarded",
			writeErr: kafka.InvalidProducerEpoch,
			status:   http.StatusBadGateway,
			code:     "bad_gateway",
		},
		{
			name:     "authorization failure is discarded",
			writeErr: kafka.TopicAuthorizationFailed,
			status:   http.StatusBadGateway,
			code:     "bad_gateway",
		},
		{
			name:     "unknown failure is discarded",
			writeErr: errors.New("broker went away"),
			status:   http.StatusInternalServerError,
			code:     "kafka_send_failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &writerRecorder{build: func() *fakeWriter {
				return &fakeWriter{err: tt.writeErr}
			}}
			pool := newTestPool(t, Config{}, rec)

			batch := tt.batch
			if batch.Topic == "" {
				batch = testBatch("a")
			}
			err := pool.Publish(context.Background(), batch)
			appErr, ok := apperr.As(err)
			require.True(t, ok, "expected *apperr.Error, got %v", err)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.code, appErr.Code)

			writers := rec.created()
			require.Len(t, writers, 1)
			assert.Equal(t, !tt.reused, writers[0].closed.Load())
			if tt.reused {
				assert.Equal(t, 1, pool.Idle())
				assert.Empty(t, writers[0].messages)
			} else {
				assert.Equal(t, 0, pool.Idle())
			}
		})
	}
}

func TestCloseDrainsIdleProducers(t *testing.T) {
	rec := &writerRecorder{}
	pool := newTestPool(t, Config{}, rec)
	require.NoError(t, pool.Publish(context.Background(), testBatch("a")))

	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close())

	writers := rec.created()
	require.Len(t, writers, 1)
	assert.True(t, writers[0].closed.Load())
	assert.Equal(t, 0, pool.Idle())

	err := pool.Publish(context.Background(), testBatch("b"))
	assert.Equal(t, http.StatusServiceUnavailable, apperr.StatusOf(err))
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPublishReportsOperation(t *testing.T) {
	obs := &TestObserver{}
	rec := &writerRecorder{}
	pool := newTestPool(t, Config{}, rec).WithObserver(obs)

	require.NoError(t, pool.Publish(context.Background(), testBatch("ab")))

	ops := obs.GetOperationsByType("produce")
	require.Len(t, ops, 1)
	assert.Equal(t, "kafka", ops[0].Component)
	assert.Equal(t, "test-topic", ops[0].Resource)
	assert.Equal(t, int64(3), ops[0].Size)
	assert.NoError(t, ops[0].Error)
}
