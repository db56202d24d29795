package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// limitParam reads ?limit=. Missing means DefaultLimit; values above
// ceiling are clamped.
func limitParam(r *http.Request, ceiling int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return min(DefaultLimit, ceiling), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: limit must be a positive integer, got %q", ErrBadRequest, raw)
	}
	return min(n, ceiling), nil
}

func divisionParam(r *http.Request) (string, error) {
	d := strings.TrimSpace(r.URL.Query().Get("division"))
	if d == "" {
		return "", ErrMissingDivision
	}
	return d, nil
}
