package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/fightmatch/internal/adapters/dataset"
	"github.com/okian/fightmatch/internal/adapters/mq/queue"
	"github.com/okian/fightmatch/internal/adapters/repository"
	service "github.com/okian/fightmatch/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrMissingDivision = errors.New("division is required")
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrMissingDivision),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrRefreshInProgress):
		return http.StatusConflict, "refresh_in_progress"
	case errors.Is(err, queue.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, dataset.ErrNoData),
		errors.Is(err, service.ErrNotStarted),
		errors.Is(err, queue.ErrQueueClosed):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
