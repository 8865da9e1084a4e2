package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics records outbox publisher activity.
type OutboxMetrics struct {
	published *prometheus.CounterVec
	failures  *prometheus.CounterVec
	lag       prometheus.Histogram
}

// NewOutboxMetrics registers the outbox publisher metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events successfully published, by event type.",
	}, []string{"event_type"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Outbox publish attempts that failed, by event type.",
	}, []string{"event_type"})
	lag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_publish_lag_seconds",
		Help:    "Delay between event creation and publish.",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	})
	reg.MustRegister(published, failures, lag)
	return &OutboxMetrics{
		published: published,
		failures:  failures,
		lag:       lag,
	}
}

// IncPublished increments the publish counter for the event type.
func (o *OutboxMetrics) IncPublished(eventType string) {
	if o == nil || o.published == nil {
		return
	}
	o.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailure increments the failure counter for the event type.
func (o *OutboxMetrics) IncFailure(eventType string) {
	if o == nil || o.failures == nil {
		return
	}
	o.failures.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// ObserveLag records the delay between event creation and publish.
func (o *OutboxMetrics) ObserveLag(lag time.Duration) {
	if o == nil || o.lag == nil {
		return
	}
	o.lag.Observe(lag.Seconds())
}
