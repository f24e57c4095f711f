/*
Package metrics exposes Prometheus instruments for the relay hubs and the HTTP API.

All instruments hang off a Metrics value registered on a caller-supplied
Registerer; a nil *Metrics is valid and records nothing, which keeps unit tests
free of global registry state.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "relayhub"

// Metrics holds every instrument of the process.
type Metrics struct {
	// Connections is the number of live connections per hub kind.
	Connections *prometheus.GaugeVec

	// EventsRelayed counts frames enqueued to recipients, by hub kind and event name.
	EventsRelayed *prometheus.CounterVec

	// SendFailures counts recipients whose send queue rejected a frame.
	SendFailures *prometheus.CounterVec

	// EventsRejected counts inbound frames dropped, by hub kind and reason.
	EventsRejected *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates the instruments and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "connections",
			Help:      "Number of live WebSocket connections per hub.",
		}, []string{"hub"}),
		EventsRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "events_relayed_total",
			Help:      "Frames enqueued to recipients, by hub and event.",
		}, []string{"hub", "event"}),
		SendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "send_failures_total",
			Help:      "Recipients whose send queue rejected a frame.",
		}, []string{"hub"}),
		EventsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "events_rejected_total",
			Help:      "Inbound frames dropped, by hub and reason.",
		}, []string{"hub", "reason"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status_code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
	}

	reg.MustRegister(
		m.Connections,
		m.EventsRelayed,
		m.SendFailures,
		m.EventsRejected,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

// ConnectionOpened increments the live connection gauge of hub.
func (m *Metrics) ConnectionOpened(hub string) {
	if m == nil {
		return
	}
	m.Connections.WithLabelValues(hub).Inc()
}

// ConnectionClosed decrements the live connection gauge of hub.
func (m *Metrics) ConnectionClosed(hub string) {
	if m == nil {
		return
	}
	m.Connections.WithLabelValues(hub).Dec()
}

// EventRelayed records n successful enqueues of event.
func (m *Metrics) EventRelayed(hub, event string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.EventsRelayed.WithLabelValues(hub, event).Add(float64(n))
}

// SendFailed records one rejected enqueue.
func (m *Metrics) SendFailed(hub string) {
	if m == nil {
		return
	}
	m.SendFailures.WithLabelValues(hub).Inc()
}

// EventRejected records one dropped inbound frame.
func (m *Metrics) EventRejected(hub, reason string) {
	if m == nil {
		return
	}
	m.EventsRejected.WithLabelValues(hub, reason).Inc()
}

// Middleware records request count and latency labelled by chi route pattern.
// /metrics itself is not recorded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := strconv.Itoa(ww.Status())
		m.HTTPRequests.WithLabelValues(r.Method, route, status).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the exposition format for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
