package api

import (
	"context"
	"net/http"

	model "github.com/okian/fightmatch/internal/domain/model"
	"github.com/okian/fightmatch/pkg/logger"
)

// BoardDependencies reads the stored division boards.
type BoardDependencies interface {
	Divisions(ctx context.Context) []string
	Rankings(ctx context.Context, division string, limit int) ([]model.RankedFighter, error)
	Matchups(ctx context.Context, division string, limit int) ([]model.Matchup, error)
}

type divisionsResponse struct {
	Divisions []string `json:"divisions"`
}

type rankingsResponse struct {
	Division string                `json:"division"`
	Rankings []model.RankedFighter `json:"rankings"`
}

type matchupsResponse struct {
	Division string          `json:"division"`
	Matchups []model.Matchup `json:"matchups"`
}

// BoardHandler serves divisions, rankings and matchups.
type BoardHandler struct {
	deps     BoardDependencies
	maxLimit int
	log      logger.Logger
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(deps BoardDependencies, maxLimit int, log logger.Logger) *BoardHandler {
	return &BoardHandler{deps: deps, maxLimit: maxLimit, log: log}
}

// HandleDivisions handles GET /api/v1/divisions.
func (h *BoardHandler) HandleDivisions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, divisionsResponse{Divisions: h.deps.Divisions(r.Context())})
}

// HandleRankings handles GET /api/v1/rankings?division=&limit=.
func (h *BoardHandler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	division, limit, err := h.query(r)
	if err != nil {
		fail(w, r, h.log, op, err)
		return
	}
	ranked, err := h.deps.Rankings(r.Context(), division, limit)
	if err != nil {
		fail(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rankingsResponse{Division: division, Rankings: ranked})
}

// HandleMatchups handles GET /api/v1/matchups?division=&limit=.
func (h *BoardHandler) HandleMatchups(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_matchups"
	division, limit, err := h.query(r)
	if err != nil {
		fail(w, r, h.log, op, err)
		return
	}
	ms, err := h.deps.Matchups(r.Context(), division, limit)
	if err != nil {
		fail(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, matchupsResponse{Division: division, Matchups: ms})
}

func (h *BoardHandler) query(r *http.Request) (string, int, error) {
	division, err := divisionParam(r)
	if err != nil {
		return "", 0, err
	}
	limit, err := limitParam(r, h.maxLimit)
	if err != nil {
		return "", 0, err
	}
	return division, limit, nil
}
