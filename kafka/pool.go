package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/semaphore"

	"github.com/aalemi-dev/kafka-gateway/apperr"
	"github.com/aalemi-dev/kafka-gateway/observability"
)

// producer is a pooled writer. It is either in the free list or checked out
// by exactly one Publish call.
type producer struct {
	id     string
	writer messageWriter
}

// ProducerPool publishes record batches through a bounded set of reusable
// producers. Admission is limited by a counting semaphore sized independently
// of the pool, so a call may create a producer beyond the pool size; such a
// producer is closed instead of returned.
//
// ProducerPool implements the Publisher interface.
type ProducerPool struct {
	cfg Config

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional logging for producer lifecycle events
	logger Logger

	permits   *semaphore.Weighted
	free      chan *producer
	newWriter writerFactory

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewProducerPool creates an empty pool. Producers are created lazily on the
// first Publish calls.
//
// Example:
//
//	pool, err := kafka.NewProducerPool(cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
func NewProducerPool(cfg Config) (*ProducerPool, error) {
	cfg = cfg.withDefaults()
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	dial, err := newDialSettings(cfg)
	if err != nil {
		return nil, err
	}

	p := &ProducerPool{
		cfg:     cfg,
		permits: semaphore.NewWeighted(cfg.MaxRequests),
		free:    make(chan *producer, cfg.PoolSize),
	}
	p.newWriter = func() (messageWriter, error) {
		return createWriter(p.cfg, dial, p.logger), nil
	}
	return p, nil
}

// WithObserver attaches an observer to the pool for tracking publish operations.
func (p *ProducerPool) WithObserver(observer observability.Observer) *ProducerPool {
	p.observer = observer
	return p
}

// WithLogger attaches a logger to the pool for producer lifecycle events.
func (p *ProducerPool) WithLogger(logger Logger) *ProducerPool {
	p.logger = logger
	return p
}

// Publish sends every record of batch and waits for all acknowledgements.
// It fails immediately with 503 when MaxRequests calls are already in flight.
func (p *ProducerPool) Publish(ctx context.Context, batch Batch) (err error) {
	start := time.Now()
	var size int64
	defer func() {
		p.observeOperation("produce", batch.Topic, "", time.Since(start), err, size)
	}()

	if p.closed.Load() {
		return apperr.ServiceUnavailable("kafka_unavailable", "Kafka producer pool is closed").WithCause(ErrPoolClosed)
	}
	if !p.permits.TryAcquire(1) {
		return apperr.ServiceUnavailable("too_many_requests", "Too many open Kafka requests")
	}
	defer p.permits.Release(1)

	prod, err := p.acquire()
	if err != nil {
		return apperr.Internal("kafka_send_failure", "Failed to create Kafka producer").WithCause(err)
	}

	msgs, size, sendErr := encodeBatch(batch)
	if sendErr == nil {
		sendErr = prod.writer.WriteMessages(ctx, msgs...)
	}

	appErr, reusable := ClassifyError(sendErr)
	if reusable {
		p.release(ctx, prod)
	} else {
		p.discard(ctx, prod)
	}
	if appErr != nil {
		p.logError(ctx, "Failed to send records to Kafka", sendErr, map[string]interface{}{
			"topic":       batch.Topic,
			"producer_id": prod.id,
			"records":     len(batch.Records),
			"reused":      reusable,
		})
		return appErr
	}
	return nil
}

func encodeBatch(batch Batch) ([]kafka.Message, int64, error) {
	msgs := make([]kafka.Message, len(batch.Records))
	var size int64
	for i, r := range batch.Records {
		key, err := serialize(batch.KeySerializer, r.Key)
		if err != nil {
			return nil, 0, err
		}
		value, err := serialize(batch.ValueSerializer, r.Value)
		if err != nil {
			return nil, 0, err
		}
		msgs[i] = kafka.Message{Topic: batch.Topic, Key: key, Value: value}
		size += int64(len(key) + len(value))
	}
	return msgs, size, nil
}

// acquire takes an idle producer or creates a new one.
func (p *ProducerPool) acquire() (*producer, error) {
	select {
	case prod := <-p.free:
		return prod, nil
	default:
	}
	w, err := p.newWriter()
	if err != nil {
		return nil, err
	}
	return &producer{id: uuid.NewString(), writer: w}, nil
}

// release returns prod to the free list, or closes it when the pool is full
// or closed.
func (p *ProducerPool) release(ctx context.Context, prod *producer) {
	if !p.closed.Load() {
		select {
		case p.free <- prod:
			// Close may have drained the list between the check and the send
			if p.closed.Load() {
				p.drain(ctx)
			}
			return
		default:
		}
	}
	p.discard(ctx, prod)
}

func (p *ProducerPool) discard(ctx context.Context, prod *producer) {
	if err := prod.writer.Close(); err != nil {
		p.logWarn(ctx, "Failed to close Kafka producer", err, map[string]interface{}{
			"producer_id": prod.id,
		})
	}
}

func (p *ProducerPool) drain(ctx context.Context) {
	for {
		select {
		case prod := <-p.free:
			p.discard(ctx, prod)
		default:
			return
		}
	}
}

// Idle returns the number of producers in the free list.
func (p *ProducerPool) Idle() int {
	return len(p.free)
}

// Close stops accepting new publish calls and closes every idle producer.
// Producers still checked out are closed when their call returns.
func (p *ProducerPool) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.logInfo(context.Background(), "Closing Kafka producer pool", nil)
		p.drain(context.Background())
	})
	return nil
}

func (p *ProducerPool) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (p *ProducerPool) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

func (p *ProducerPool) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
