package observability

import "time"

// Observer receives an event for every completed gateway operation: token
// verification, schema lookups, record processing, Kafka publishes and HTTP
// requests. Components work without one.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component is the package that performed the operation, e.g. "kafka",
	// "schema_registry", "processor", "auth" or "server".
	Component string

	// Operation is what was done, e.g. "publish", "get_by_id", "process".
	Operation string

	// Resource is the main object operated on, usually a topic or subject.
	Resource string

	// SubResource narrows Resource, e.g. a schema version.
	SubResource string

	Duration time.Duration

	// Error is nil for successful operations.
	Error error

	// Size is the number of records or bytes involved, when known.
	Size int64

	// Metadata holds operation specific details.
	Metadata map[string]interface{}
}

// Status is "error" when the operation failed and "ok" otherwise.
func (c OperationContext) Status() string {
	if c.Error != nil {
		return "error"
	}
	return "ok"
}
