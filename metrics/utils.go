package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func (m *Metrics) CreateCounter(name, help string, labels []string) Counter {
	vec := m.register(prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels))
	return &counterVec{vec: vec.(*prometheus.CounterVec)}
}

func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) Histogram {
	vec := m.register(prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels))
	return &histogramVec{vec: vec.(*prometheus.HistogramVec)}
}

func (m *Metrics) CreateGauge(name, help string, labels []string) Gauge {
	vec := m.register(prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels))
	return &gaugeVec{vec: vec.(*prometheus.GaugeVec)}
}
