package auth

import (
	"time"

	"github.com/aalemi-dev/kafka-gateway/observability"
)

// observeOperation safely calls the observer if it's not nil.
func (v *TokenValidator) observeOperation(operation, resource string, duration time.Duration, err error) {
	if v.observer != nil {
		v.observer.ObserveOperation(observability.OperationContext{
			Component: "auth",
			Operation: operation,
			Resource:  resource,
			Duration:  duration,
			Error:     err,
		})
	}
}
