package metrics

// Default listen addresses of the two metrics endpoints.
const (
	DefaultSystemMetricsAddress      = ":9090"
	DefaultApplicationMetricsAddress = ":9091"
)

// Disabled turns an endpoint off when used as its address.
const Disabled = "off"

// Config controls the two Prometheus endpoints of the gateway.
//
// The system endpoint exposes Go runtime, process and build metrics. The
// application endpoint exposes the gateway's own series: HTTP requests and
// one counter and histogram per observed component operation.
type Config struct {
	// SystemMetricsAddress defaults to ":9090". "off" disables it.
	SystemMetricsAddress string `yaml:"system_metrics_address" envconfig:"METRICS_SYSTEM_ADDRESS"`

	// ApplicationMetricsAddress defaults to ":9091". "off" disables the
	// HTTP endpoint; application metrics are still collected.
	ApplicationMetricsAddress string `yaml:"application_metrics_address" envconfig:"METRICS_APPLICATION_ADDRESS"`

	// ServiceName is added as a constant "service" label to every series.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}

func (c Config) withDefaults() Config {
	if c.SystemMetricsAddress == "" {
		c.SystemMetricsAddress = DefaultSystemMetricsAddress
	}
	if c.ApplicationMetricsAddress == "" {
		c.ApplicationMetricsAddress = DefaultApplicationMetricsAddress
	}
	if c.ServiceName == "" {
		c.ServiceName = "kafka-gateway"
	}
	return c
}
