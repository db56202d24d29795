package api

import (
	"net/http"
)

// StatsProvider reports the board service state: whether the pool runs,
// the current run id, fighters loaded, boards stored and queue depth.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler serves GET /stats. The snapshot changes with every refresh,
// so responses are never cached.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler returns a handler reading from statsProvider.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats writes the provider's snapshot as JSON.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
