package kafka

import (
	"time"

	"github.com/aalemi-dev/kafka-gateway/observability"
)

func observe(observer observability.Observer, operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if observer != nil {
		observer.ObserveOperation(observability.OperationContext{
			Component:   "kafka",
			Operation:   operation,
			Resource:    resource,
			SubResource: subResource,
			Duration:    duration,
			Error:       err,
			Size:        size,
		})
	}
}

// observeOperation safely calls the observer if it's not nil.
// This helper reduces boilerplate in operation methods.
func (p *ProducerPool) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	observe(p.observer, operation, resource, subResource, duration, err, size)
}

func (s *TopicService) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	observe(s.observer, operation, resource, subResource, duration, err, size)
}
