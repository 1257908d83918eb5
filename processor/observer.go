package processor

import (
	"time"

	"github.com/aalemi-dev/kafka-gateway/observability"
)

func observe(observer observability.Observer, operation, resource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if observer == nil {
		return
	}
	observer.ObserveOperation(observability.OperationContext{
		Component: "processor",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
		Metadata:  metadata,
	})
}

// observeOperation notifies the observer about an operation if one is configured.
//
// Notes:
//   - resource: topic name
//   - size: number of records
func (p *Pipeline) observeOperation(operation, resource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	observe(p.observer, operation, resource, duration, err, size, metadata)
}

func (p *AvroProcessor) observeOperation(operation, resource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	observe(p.observer, operation, resource, duration, err, size, metadata)
}

func (c *BinaryConverter) observeOperation(operation, resource string, duration time.Duration, err error, size int64) {
	observe(c.observer, operation, resource, duration, err, size, nil)
}
