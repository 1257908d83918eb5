package metrics

// MetricsCollector creates application metrics without exposing Prometheus
// types. Creating a metric that already exists with the same name and
// labels returns the existing one.
type MetricsCollector interface {
	// CreateCounter creates a monotonically increasing counter.
	CreateCounter(name, help string, labels []string) Counter

	// CreateHistogram creates a histogram with the given bucket bounds.
	// Nil buckets use the Prometheus defaults.
	CreateHistogram(name, help string, labels []string, buckets []float64) Histogram

	// CreateGauge creates a value that can go up and down.
	CreateGauge(name, help string, labels []string) Gauge
}
