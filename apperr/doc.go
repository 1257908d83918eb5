// Package apperr defines the single error type that crosses package boundaries
// in the gateway.
//
// Every client-visible failure is an *Error carrying a Kind, an HTTP status,
// a short machine-readable code and a human-readable message. Validation
// errors raised while mapping or decoding records embed the full parsing
// context in the message, so they can be returned to the client unchanged.
//
// Errors from infrastructure packages (kafka, schema_registry) are classified
// into an *Error at the boundary where the gateway decides what the client sees:
//
//	if err := pool.Publish(ctx, topic, records); err != nil {
//	    status := apperr.StatusOf(err)
//	    ...
//	}
package apperr
