package fetch

import (
	"net/http"
	"time"

	"github.com/okian/fightmatch/pkg/logger"
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client. Its timeout is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithMaxRetries sets the total number of attempts per fetch.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxRetries = n
		}
	}
}

// WithBackoffBase sets the base of the exponential backoff in seconds.
func WithBackoffBase(base float64) Option {
	return func(f *Fetcher) {
		if base >= 0 {
			f.backoffBase = base
		}
	}
}

// WithSleeper replaces the backoff sleep.
func WithSleeper(s Sleeper) Option {
	return func(f *Fetcher) {
		if s != nil {
			f.sleep = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// WithBreaker wraps network access in a circuit breaker.
func WithBreaker(s BreakerSettings) Option {
	return func(f *Fetcher) {
		f.breakerSettings = &s
	}
}
