package relay

import (
	"sync"

	"github.com/rs/zerolog"

	"relayhub/internal/pkg/logx"
	"relayhub/internal/pkg/metrics"
)

// Manager owns the chat hub and the document hub of the process.
type Manager struct {
	hubs map[Kind]*Hub

	// order fixes the iteration order of Stats.
	order []Kind

	// wg waits for the hub loops during Shutdown.
	wg sync.WaitGroup

	shutdownOnce sync.Once

	logger zerolog.Logger
}

// NewManager creates and starts one hub per kind.
func NewManager(m *metrics.Metrics) *Manager {
	mgr := &Manager{
		hubs:   make(map[Kind]*Hub),
		order:  []Kind{KindChat, KindDocument},
		logger: logx.Component("Manager"),
	}

	for _, kind := range mgr.order {
		hub := NewHub(kind, m)
		mgr.hubs[kind] = hub

		mgr.wg.Add(1)
		go func() {
			defer mgr.wg.Done()
			hub.Run()
		}()
	}

	mgr.logger.Info().Int("hubs", len(mgr.hubs)).Msg("Relay hubs started.")

	return mgr
}

// Hub returns the hub of kind, or nil.
func (m *Manager) Hub(kind Kind) *Hub {
	return m.hubs[kind]
}

// Stats returns a snapshot of every running hub.
func (m *Manager) Stats() []Snapshot {
	stats := make([]Snapshot, 0, len(m.order))

	for _, kind := range m.order {
		s, err := m.hubs[kind].Snapshot()
		if err != nil {
			m.logger.Debug().Err(err).Str("hub", string(kind)).Msg("Snapshot of stopped hub skipped.")
			continue
		}
		stats = append(stats, s)
	}

	return stats
}

// Shutdown stops every hub and waits for their loops to release all connections.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.logger.Info().Msg("Shutting down relay hubs...")

		for _, hub := range m.hubs {
			hub.Stop()
		}
		m.wg.Wait()

		m.logger.Info().Msg("Manager shutdown complete.")
	})
}
