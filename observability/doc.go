// Package observability defines the Observer hook shared by the gateway's
// components.
//
// Every long-lived component (the token validator, the schema retriever,
// the record processors, the producer pool and the HTTP server) accepts an
// optional Observer through a WithObserver builder or an optional fx
// parameter, and reports each completed operation as an OperationContext:
//
//	start := time.Now()
//	err := pool.Publish(ctx, batch)
//	observer.ObserveOperation(observability.OperationContext{
//	    Component: "kafka",
//	    Operation: "publish",
//	    Resource:  batch.Topic,
//	    Duration:  time.Since(start),
//	    Error:     err,
//	    Size:      int64(len(batch.Records)),
//	})
//
// The metrics package turns these events into Prometheus series. Multi
// combines several observers into one.
package observability
