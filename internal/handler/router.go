/*
Package handler provides the HTTP handlers and routing setup for the relay server.

This file defines the main Router, applying necessary middleware like logging, CORS,
metrics and IP-based rate limiting before delegating requests to specific handlers
(REST and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"relayhub/internal/app/relay"
	"relayhub/internal/pkg/auth/jwt"
	"relayhub/internal/pkg/limiter"
	"relayhub/internal/pkg/logx"
	"relayhub/internal/pkg/metrics"
	"relayhub/internal/pkg/resp"
)

const (
	// ConnectRate and ConnectBurst bound WebSocket upgrades per IP.
	ConnectRate  = 1
	ConnectBurst = 10

	// TrackRate and TrackBurst bound track-time submissions per IP.
	TrackRate  = 5
	TrackBurst = 30

	// AuthRate and AuthBurst bound account requests per IP.
	AuthRate  = 0.2
	AuthBurst = 5
)

// serviceName is reported by /health.
const serviceName = "Relay Hub Server"

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and per-route middleware.
// The returned stop func ends the limiters' sweepers and must be called once the server is done.
func Router(deps *AppDeps) (http.Handler, func()) {
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)
	trackLimiter := limiter.NewIPRateLimiter(rate.Limit(TrackRate), TrackBurst)
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)

	r := chi.NewRouter()

	wsUpgrader := newUpgrader(deps)

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", UserIDHeader},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(deps.Metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Relay server is running!"))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		logx.Debug("Health check endpoint hit")

		data := map[string]string{
			"status":  "ok",
			"service": serviceName,
		}
		resp.RespondSuccess(w, r, data)
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Get("/hub/stats", HandleHubStats(deps))

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(authLimiter.Middleware)
			auth.Post("/register", HandleRegister(deps))
			auth.Post("/login", HandleLogin(deps))
			auth.Post("/guest", HandleGuest(deps))
		})

		api.With(trackLimiter.Middleware).Post("/track-time", HandleTrackTime(deps))

		api.Get("/analytics/{userId}", HandleAnalytics(deps))
		api.Post("/analytics/{userId}/export", HandleExportReport(deps))

		api.Get("/classifications", HandleListClassifications(deps))
		api.Put("/classifications", HandleSetClassification(deps))
		api.Delete("/classifications/{domain}", HandleRemoveClassification(deps))
	})

	r.Get("/ws/chat", HandleWebSocket(relay.KindChat, wsUpgrader, connectLimiter, deps))
	r.Get("/ws/document", HandleWebSocket(relay.KindDocument, wsUpgrader, connectLimiter, deps))

	stop := func() {
		connectLimiter.Stop()
		trackLimiter.Stop()
		authLimiter.Stop()
	}

	return r, stop
}

// newUpgrader accepts any origin in development and the configured ones otherwise.
func newUpgrader(deps *AppDeps) websocket.Upgrader {
	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}
}
