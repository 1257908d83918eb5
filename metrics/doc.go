// Package metrics exposes the gateway's Prometheus metrics.
//
// Two registries are served on separate endpoints. The system endpoint
// (":9090" by default) carries Go runtime, process and build metrics. The
// application endpoint (":9091") carries:
//
//	gateway_http_requests_total{method,route,status}
//	gateway_http_request_duration_seconds{method,route}
//	gateway_http_requests_in_flight
//	gateway_operations_total{component,operation,status}
//	gateway_operation_duration_seconds{component,operation}
//	gateway_operation_size{component,operation}
//
// The operation series come from OperationObserver, which implements
// observability.Observer and is handed to every component by FXModule. All
// series carry a constant "service" label.
//
// Either endpoint is disabled with the address "off":
//
//	metrics:
//	  system_metrics_address: "off"
//	  application_metrics_address: ":9091"
package metrics
