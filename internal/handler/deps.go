package handler

import (
	"github.com/prometheus/client_golang/prometheus"

	"relayhub/internal/app/relay"
	"relayhub/internal/app/tracker"
	"relayhub/internal/configs"
	"relayhub/internal/pkg/metrics"
)

// AppDeps carries everything the handlers need.
type AppDeps struct {
	Manager *relay.Manager
	Config  *configs.AppConfig
	Tracker *tracker.Service

	// Accounts is the store registered users are kept in.
	Accounts tracker.Store

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}
