// Package api serves the division boards over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/okian/fightmatch/pkg/logger"
)

const defaultRateWindow = time.Minute

// Dependencies required by HTTP handlers.
type Dependencies interface {
	HealthDependencies
	BoardDependencies
	FighterDependencies
	RefreshDependencies
}

// Server wires HTTP routes for the board API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	boardHandler   *BoardHandler
	fighterHandler *FighterHandler
	refreshHandler *RefreshHandler

	log        logger.Logger
	rateLimit  int
	rateWindow time.Duration
	maxLimit   int
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		log:        logger.Nop(),
		rateWindow: defaultRateWindow,
		maxLimit:   MaxLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.boardHandler = NewBoardHandler(deps, s.maxLimit, s.log)
	s.fighterHandler = NewFighterHandler(deps, s.maxLimit, s.log)
	s.refreshHandler = NewRefreshHandler(deps, s.log)
	return s
}

// Register attaches all routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Handle("/metrics", s.healthHandler.MetricsHandler())
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Route("/api/v1", func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.LimitByIP(s.rateLimit, s.rateWindow))
		}
		r.Get("/divisions", s.boardHandler.HandleDivisions)
		r.Get("/rankings", s.boardHandler.HandleRankings)
		r.Get("/matchups", s.boardHandler.HandleMatchups)
		r.Get("/fighters/{id}", s.fighterHandler.HandleFighter)
		r.Get("/fighters/{id}/opponents", s.fighterHandler.HandleOpponents)
		r.Post("/refresh", s.refreshHandler.HandleRefresh)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err and writes it. Server-side failures are logged.
func fail(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}
