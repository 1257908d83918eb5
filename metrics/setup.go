package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a system and an application registry, each optionally
// served on its own HTTP endpoint.
type Metrics struct {
	// SystemServer is nil when the system endpoint is disabled.
	SystemServer *http.Server

	// ApplicationServer is nil when the application endpoint is disabled.
	ApplicationServer *http.Server

	SystemRegistry      *prometheus.Registry
	ApplicationRegistry *prometheus.Registry

	// registerer adds the service label to application metrics.
	registerer prometheus.Registerer
}

// NewMetrics creates both registries. The system registry is populated
// with the Go, process and build info collectors.
func NewMetrics(cfg Config) *Metrics {
	cfg = cfg.withDefaults()
	labels := prometheus.Labels{"service": cfg.ServiceName}

	m := &Metrics{
		SystemRegistry:      prometheus.NewRegistry(),
		ApplicationRegistry: prometheus.NewRegistry(),
	}
	prometheus.WrapRegistererWith(labels, m.SystemRegistry).MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m.registerer = prometheus.WrapRegistererWith(labels, m.ApplicationRegistry)

	m.SystemServer = newServer(cfg.SystemMetricsAddress, m.SystemRegistry)
	m.ApplicationServer = newServer(cfg.ApplicationMetricsAddress, m.ApplicationRegistry)
	return m
}

func newServer(addr string, registry *prometheus.Registry) *http.Server {
	if addr == Disabled {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
}

// register registers c, or returns the collector already registered under
// the same descriptor.
func (m *Metrics) register(c prometheus.Collector) prometheus.Collector {
	if err := m.registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}
