package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHubInstruments(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ConnectionOpened("chat")
	m.ConnectionOpened("chat")
	m.ConnectionClosed("chat")
	m.EventRelayed("chat", "chat_message", 3)
	m.EventRelayed("chat", "chat_message", 0)
	m.SendFailed("document")
	m.EventRejected("chat", "malformed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections.WithLabelValues("chat")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsRelayed.WithLabelValues("chat", "chat_message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SendFailures.WithLabelValues("document")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsRejected.WithLabelValues("chat", "malformed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ConnectionOpened("chat")
		m.ConnectionClosed("chat")
		m.EventRelayed("chat", "x", 1)
		m.SendFailed("chat")
		m.EventRejected("chat", "x")
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/analytics/{userId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/analytics/u1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/analytics/u2", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/analytics/{userId}", "200")))
}
