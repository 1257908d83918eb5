// Package kafka publishes record batches to Apache Kafka and serves cached
// topic metadata.
//
// # Architecture
//
// The package follows the "accept interfaces, return structs" Go idiom:
//   - Publisher interface: implemented by *ProducerPool
//   - TopicLister interface: implemented by *TopicService
//   - Admin interface: metadata requests, implemented with franz-go
//   - FX module provides both the concrete types and the interfaces
//
// # Producer pool
//
// ProducerPool keeps up to Config.PoolSize idle segmentio/kafka-go writers.
// Every Publish call first takes one of Config.MaxRequests permits without
// waiting; when none is left the call fails with 503 "Too many open Kafka
// requests". It then takes an idle producer or creates a new one, serializes
// the batch and waits for all acknowledgements.
//
// After the call the producer is returned to the pool or closed, depending on
// how the call ended:
//
//	success, serialization failure        -> returned (closed if the pool is full)
//	fencing, sequence, authn/authz errors  -> closed, 502 bad_gateway
//	timeouts                               -> closed, 504 kafka_timeout
//	anything else                          -> closed, 500 kafka_send_failure
//
// # Basic Usage
//
//	pool, err := kafka.NewProducerPool(kafka.Config{
//		Brokers: []string{"localhost:9092"},
//	})
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	err = pool.Publish(ctx, kafka.Batch{
//		Topic:           "android_empatica_e4_acceleration",
//		KeySerializer:   keySerializer,
//		ValueSerializer: valueSerializer,
//		Records:         records,
//	})
//	if err != nil {
//		status := apperr.StatusOf(err)
//		...
//	}
//
// # Topic metadata
//
// TopicService caches the topic list (refresh every 10s) and the partitions of
// each topic (refresh every 30 minutes). A failed lookup is remembered for the
// retry window (2s) so a broker outage does not turn every request into a
// metadata call. ContainsTopic refreshes the list early when a topic is
// missing, at most once per retry window, so newly created topics become
// visible quickly. Topics whose name starts with '_' are never listed.
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		kafka.FXModule,
//		fx.Provide(func(cfg *config.Config) kafka.Config { return cfg.Kafka }),
//	)
//
// # Security
//
// TLS and SASL (PLAIN, SCRAM-SHA-256, SCRAM-SHA-512) settings in Config apply
// to both the producers and the admin client.
package kafka
