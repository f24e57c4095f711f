package handler

import (
	"net/http"

	"relayhub/internal/pkg/resp"
)

// HandleHubStats reports the roster size and document length of every hub.
func HandleHubStats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"hubs": deps.Manager.Stats(),
		})
	}
}
