package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by Fetch.
var (
	ErrFetchFailed = errors.New("fetch failed")
	ErrCircuitOpen = errors.New("source circuit open")
)

// StatusError is a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}
