package server

import (
	"context"

	"github.com/aalemi-dev/kafka-gateway/auth"
	"github.com/aalemi-dev/kafka-gateway/kafka"
	"github.com/aalemi-dev/kafka-gateway/processor"
)

// HealthChecker reports whether Kafka is reachable.
//
// This interface is implemented by *kafka.TopicService.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// Deps are the services behind the HTTP routes.
type Deps struct {
	Verifier  auth.Verifier
	Topics    kafka.TopicLister
	Health    HealthChecker
	Publisher kafka.Publisher

	// JSON handles Avro JSON payloads, Binary handles binary record sets.
	JSON   processor.RecordProcessor
	Binary processor.RecordProcessor
}

var _ HealthChecker = (*kafka.TopicService)(nil)
