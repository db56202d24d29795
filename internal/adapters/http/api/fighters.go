package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/fightmatch/internal/domain/types"
	"github.com/okian/fightmatch/pkg/logger"
)

// FighterDependencies looks up single fighters.
type FighterDependencies interface {
	Fighter(ctx context.Context, fighterID string) (types.FighterView, error)
	Opponents(ctx context.Context, fighterID string, limit int) (types.OpponentsView, error)
}

// FighterHandler handles per-fighter requests.
type FighterHandler struct {
	deps     FighterDependencies
	maxLimit int
	log      logger.Logger
}

// NewFighterHandler creates a new fighter handler.
func NewFighterHandler(deps FighterDependencies, maxLimit int, log logger.Logger) *FighterHandler {
	return &FighterHandler{deps: deps, maxLimit: maxLimit, log: log}
}

// HandleFighter handles GET /api/v1/fighters/{id}.
func (h *FighterHandler) HandleFighter(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Fighter(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		fail(w, r, h.log, "api.get_fighter", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleOpponents handles GET /api/v1/fighters/{id}/opponents?limit=.
func (h *FighterHandler) HandleOpponents(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_opponents"
	limit, err := limitParam(r, h.maxLimit)
	if err != nil {
		fail(w, r, h.log, op, err)
		return
	}
	view, err := h.deps.Opponents(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")), limit)
	if err != nil {
		fail(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
