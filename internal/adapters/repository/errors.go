package repository

import "errors"

// Sentinel kinds for board store errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrEmptyDivision = errors.New("board has no division")
)
