package cache

import "errors"

// ErrWrite wraps failures to persist an entry.
var ErrWrite = errors.New("cache write failed")
