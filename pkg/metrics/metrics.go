// Package metrics holds the Prometheus collectors of the service. Each
// Metrics value owns its registry, so tests can build as many as they need.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess     = "success"
	OutcomeConflict    = "conflict"
	OutcomeUnavailable = "unavailable"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	AvailabilityDuration *prometheus.HistogramVec
	SlotsReturned        prometheus.Histogram
	ProviderFailures     *prometheus.CounterVec

	BookingOutcomes *prometheus.CounterVec

	KafkaPublished       *prometheus.CounterVec
	KafkaPublishDuration *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		AvailabilityDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "availability_duration_seconds",
			Help:      "Time spent resolving availability, split by degraded results.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"degraded"}),
		SlotsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "availability_slots_returned",
			Help:      "Number of slots offered per availability request.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		ProviderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_failures_total",
			Help:      "Schedule and calendar provider calls that failed or timed out.",
		}, []string{"kind", "app_id"}),

		BookingOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_attempts_total",
			Help:      "Booking write operations by operation and outcome.",
		}, []string{"operation", "outcome"}),

		KafkaPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_published_total",
			Help:      "Kafka publish attempts by topic and result.",
		}, []string{"topic", "result"}),
		KafkaPublishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_duration_seconds",
			Help:      "Kafka publish latency by topic.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"topic"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.AvailabilityDuration,
		m.SlotsReturned,
		m.ProviderFailures,
		m.BookingOutcomes,
		m.KafkaPublished,
		m.KafkaPublishDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveAvailability(degraded bool, slots int, elapsed time.Duration) {
	m.AvailabilityDuration.WithLabelValues(strconv.FormatBool(degraded)).Observe(elapsed.Seconds())
	m.SlotsReturned.Observe(float64(slots))
}

func (m *Metrics) ProviderFailed(kind, appID string) {
	m.ProviderFailures.WithLabelValues(kind, appID).Inc()
}

func (m *Metrics) BookingOutcome(operation, outcome string) {
	m.BookingOutcomes.WithLabelValues(operation, outcome).Inc()
}
