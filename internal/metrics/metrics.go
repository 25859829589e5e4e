// Package metrics provides Prometheus instrumentation for the aggregation
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus metrics tracked by the engine.
type Collector struct {
	eventsTotal          *prometheus.CounterVec
	applyDuration        *prometheus.HistogramVec
	insightsTotal        *prometheus.CounterVec
	publishFailuresTotal prometheus.Counter
	registry             *prometheus.Registry
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalflow_events_total",
			Help: "Total lifecycle events processed by kind and status",
		},
		[]string{"kind", "status"},
	)

	applyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitalflow_apply_duration_seconds",
			Help:    "Duration of event application by kind",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5},
		},
		[]string{"kind"},
	)

	insightsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalflow_insights_total",
			Help: "Total insights generated by type",
		},
		[]string{"type"},
	)

	publishFailuresTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vitalflow_insight_publish_failures_total",
			Help: "Total insight publications that failed and were discarded",
		},
	)

	registry.MustRegister(eventsTotal)
	registry.MustRegister(applyDuration)
	registry.MustRegister(insightsTotal)
	registry.MustRegister(publishFailuresTotal)

	return &Collector{
		eventsTotal:          eventsTotal,
		applyDuration:        applyDuration,
		insightsTotal:        insightsTotal,
		publishFailuresTotal: publishFailuresTotal,
		registry:             registry,
	}
}

// RecordEvent records the completion of one event application.
func (c *Collector) RecordEvent(kind, status string, seconds float64) {
	c.eventsTotal.WithLabelValues(kind, status).Inc()
	c.applyDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordInsight records one generated insight.
func (c *Collector) RecordInsight(insightType string) {
	c.insightsTotal.WithLabelValues(insightType).Inc()
}

// RecordPublishFailure records one discarded insight publication.
func (c *Collector) RecordPublishFailure() {
	c.publishFailuresTotal.Inc()
}

// Registry returns the Prometheus registry for HTTP exposure.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
