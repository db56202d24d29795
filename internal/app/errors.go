package service

import "errors"

var (
	// ErrNotStarted is returned by board operations before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrRefreshInProgress rejects a refresh while another one runs.
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrNoRankedFighters means the requested division ranked nobody.
	ErrNoRankedFighters = errors.New("no fighters ranked")

	// ErrStaleRun is returned for a job whose refresh run is gone.
	ErrStaleRun = errors.New("refresh run no longer active")
)
