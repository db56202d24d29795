package cache

import (
	"time"

	"github.com/okian/fightmatch/pkg/logger"
)

// Option configures a DiskCache.
type Option func(*DiskCache)

// WithTTL sets how long entries stay valid. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *DiskCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithExtension sets the entry file suffix, without the dot.
func WithExtension(ext string) Option {
	return func(c *DiskCache) {
		if ext != "" {
			c.ext = ext
		}
	}
}

// WithLogger sets the logger for read failures.
func WithLogger(l logger.Logger) Option {
	return func(c *DiskCache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *DiskCache) {
		if now != nil {
			c.now = now
		}
	}
}
