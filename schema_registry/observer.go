package schema_registry

import (
	"time"

	"github.com/aalemi-dev/kafka-gateway/observability"
)

func observe(observer observability.Observer, operation, resource, subResource string, duration time.Duration, err error, metadata map[string]interface{}) {
	if observer == nil {
		return
	}
	observer.ObserveOperation(observability.OperationContext{
		Component:   "schema_registry",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Metadata:    metadata,
	})
}

// observeOperation notifies the observer about an operation if one is configured.
//
// Notes:
//   - resource: subject name (for subject-specific operations) or "registry" (for ID lookups)
//   - subResource: schema ID or version information
func (c *Client) observeOperation(operation, resource, subResource string, duration time.Duration, err error, metadata map[string]interface{}) {
	if c == nil {
		return
	}
	observe(c.observer, operation, resource, subResource, duration, err, metadata)
}

func (r *Retriever) observeOperation(operation, resource, subResource string, duration time.Duration, err error, metadata map[string]interface{}) {
	observe(r.observer, operation, resource, subResource, duration, err, metadata)
}
