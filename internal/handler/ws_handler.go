package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"relayhub/internal/app/relay"
	"relayhub/internal/pkg/errs"
	"relayhub/internal/pkg/limiter"
	"relayhub/internal/pkg/logx"
	"relayhub/internal/pkg/randx"
	"relayhub/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc that upgrades the request and
// attaches the connection to the hub of kind. The optional `username` query
// parameter is the declared display name.
func HandleWebSocket(kind relay.Kind, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.Allow(ip) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", logx.AnonymizeIP(ip), "hub", string(kind))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		hub := deps.Manager.Hub(kind)
		if hub == nil {
			logx.Error(nil, "WebSocket connection rejected: Hub not running.", "hub", string(kind))
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		username := r.URL.Query().Get("username")
		connectionID := randx.ConnectionID()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket", "hub", string(kind))
			return
		}

		client := relay.NewClient(hub, conn, connectionID, username)

		go client.WritePump()

		if err := hub.Connect(client); err != nil {
			logx.Warn("WebSocket connection dropped: Hub stopped.", "hub", string(kind), "connection_id", connectionID)
			_ = client.Close()
			return
		}

		logx.Info("WebSocket connection established and client registered", "hub", string(kind), "connection_id", connectionID)

		client.ReadPump()
	}
}
