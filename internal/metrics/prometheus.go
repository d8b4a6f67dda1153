package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "no_writer"

// Collectors exposes recorded events as Prometheus metrics on a private registry.
type Collectors struct {
	registry   *prometheus.Registry
	events     *prometheus.CounterVec
	reasons    *prometheus.CounterVec
	processing *prometheus.HistogramVec
}

// NewCollectors creates and registers the event collectors.
func NewCollectors() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Pipeline events by type and provider.",
		}, []string{"event_type", "provider"}),
		reasons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decline_reasons_total",
			Help:      "Generated declines by reason code.",
		}, []string{"reason"}),
		processing: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_seconds",
			Help:      "Stage processing time.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"event_type"}),
	}
	c.registry.MustRegister(c.events, c.reasons, c.processing)
	return c
}

// Observe updates the collectors for one event.
func (c *Collectors) Observe(e Event) {
	provider := e.LLMProvider
	if provider == "" {
		provider = "none"
	}
	c.events.WithLabelValues(string(e.Type), provider).Inc()
	if e.Type == EventGeneration && e.DeclineReason != "" {
		c.reasons.WithLabelValues(e.DeclineReason).Inc()
	}
	if e.ProcessingTimeMS > 0 {
		c.processing.WithLabelValues(string(e.Type)).Observe(e.ProcessingTimeMS / 1000)
	}
}

// Registry returns the underlying registry.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the Prometheus text exposition.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
