package kafka

import (
	"context"

	"go.uber.org/fx"

	"github.com/aalemi-dev/kafka-gateway/observability"
)

// FXModule is an fx.Module that provides the producer pool, the metadata
// admin client and the topic service.
//
// The module provides:
// 1. *ProducerPool and the Publisher interface
// 2. Admin, a franz-go metadata client
// 3. *TopicService and the TopicLister interface
// 4. Lifecycle management that drains the pool and closes the admin client
//
// Usage:
//
//	app := fx.New(
//	    kafka.FXModule,
//	    // other modules...
//	)
var FXModule = fx.Module("kafka",
	fx.Provide(
		NewProducerPoolWithDI,
		fx.Annotate(
			func(p *ProducerPool) Publisher { return p },
			fx.As(new(Publisher)),
		),
		NewAdminWithDI,
		NewTopicServiceWithDI,
		fx.Annotate(
			func(s *TopicService) TopicLister { return s },
			fx.As(new(TopicLister)),
		),
	),
	fx.Invoke(RegisterKafkaLifecycle),
)

// KafkaParams groups the dependencies shared by the Kafka components
type KafkaParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"` // Optional logger from logger package
	Observer observability.Observer `optional:"true"` // Optional observer for metrics/tracing
}

// NewProducerPoolWithDI creates the producer pool using dependency injection.
// The optional logger and observer are attached when provided.
func NewProducerPoolWithDI(params KafkaParams) (*ProducerPool, error) {
	pool, err := NewProducerPool(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		pool.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		pool.WithObserver(params.Observer)
	}
	return pool, nil
}

// NewAdminWithDI creates the metadata admin client using dependency injection.
func NewAdminWithDI(params KafkaParams) (Admin, error) {
	return NewAdmin(params.Config, params.Logger)
}

// TopicServiceParams groups the dependencies needed to create a TopicService
type TopicServiceParams struct {
	fx.In

	Config   Config
	Admin    Admin
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewTopicServiceWithDI creates the topic service using dependency injection.
func NewTopicServiceWithDI(params TopicServiceParams) *TopicService {
	svc := NewTopicService(params.Config, params.Admin)
	if params.Logger != nil {
		svc.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		svc.WithObserver(params.Observer)
	}
	return svc
}

// KafkaLifecycleParams groups the dependencies needed for Kafka lifecycle management
type KafkaLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Pool      *ProducerPool
	Admin     Admin
	Logger    Logger `optional:"true"`
}

// RegisterKafkaLifecycle registers the Kafka components with the fx lifecycle
// system.
//
// The function:
//  1. On application start: logs the configured brokers
//  2. On application stop: closes every idle producer and the admin client
func RegisterKafkaLifecycle(params KafkaLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Pool.logInfo(ctx, "Kafka producer pool started", map[string]interface{}{
				"brokers":      params.Pool.cfg.Brokers,
				"pool_size":    params.Pool.cfg.PoolSize,
				"max_requests": params.Pool.cfg.MaxRequests,
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := params.Pool.Close()
			params.Admin.Close()
			if params.Logger != nil {
				params.Logger.InfoWithContext(ctx, "Kafka admin client closed", nil)
			}
			return err
		},
	})
}
