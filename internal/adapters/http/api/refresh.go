package api

import (
	"context"
	"net/http"

	"github.com/okian/fightmatch/internal/domain/types"
	"github.com/okian/fightmatch/pkg/logger"
)

// RefreshDependencies recomputes the boards.
type RefreshDependencies interface {
	Refresh(ctx context.Context) (types.RefreshResult, error)
}

// RefreshHandler handles board recomputation requests.
type RefreshHandler struct {
	deps RefreshDependencies
	log  logger.Logger
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies, log logger.Logger) *RefreshHandler {
	return &RefreshHandler{deps: deps, log: log}
}

// HandleRefresh handles POST /api/v1/refresh. It answers once every
// division board of the new run has been computed.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Refresh(r.Context())
	if err != nil {
		fail(w, r, h.log, "api.refresh", err)
		return
	}
	h.log.Info(r.Context(), "refresh served",
		logger.String("runId", res.RunID),
		logger.Int("boards", res.Boards),
		logger.Int("failed", len(res.Failed)),
	)
	writeJSON(w, http.StatusOK, res)
}
