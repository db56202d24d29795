package dataset

import "errors"

// Sentinel errors of the dataset package.
var (
	ErrNoData  = errors.New("no data")
	ErrCorrupt = errors.New("corrupt dataset file")
)
