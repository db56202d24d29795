package api

import (
	"time"

	"github.com/okian/fightmatch/pkg/logger"
)

// Limits applied when the request does not name one.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRateLimit caps /api/v1 requests per client IP. A non-positive
// limit disables it.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(s *Server) {
		s.rateLimit = limit
		if window > 0 {
			s.rateWindow = window
		}
	}
}

// WithMaxLimit caps the limit query parameter.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// RouterOption configures NewRouter.
type RouterOption func(*routerConfig)

type routerConfig struct {
	timeout     time.Duration
	corsOrigins []string
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) RouterOption {
	return func(c *routerConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCORSOrigins enables CORS for the given origins.
func WithCORSOrigins(origins []string) RouterOption {
	return func(c *routerConfig) {
		c.corsOrigins = origins
	}
}
