// Package fetch downloads source pages through the cache, a rate limiter
// and a bounded retry loop.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/okian/fightmatch/pkg/logger"
	"github.com/okian/fightmatch/pkg/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Defaults for source requests.
const (
	DefaultUserAgent   = "FightMatch/0.1 (UFC decision-support; rate-limited)"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 2.0
)

// Fetch outcomes recorded in metrics.
const (
	outcomeCached   = "cached"
	outcomeOK       = "ok"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
)

// Cache is the page store consulted before the network.
type Cache interface {
	Get(url string) ([]byte, bool)
	Set(url string, data []byte) error
}

// Limiter spaces out network requests.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Fetcher performs cached, rate-limited GET requests with retries.
type Fetcher struct {
	client          *http.Client
	cache           Cache
	limiter         Limiter
	userAgent       string
	maxRetries      int
	backoffBase     float64
	sleep           Sleeper
	log             logger.Logger
	breakerSettings *BreakerSettings
	breaker         *gobreaker.CircuitBreaker[[]byte]
}

// New creates a Fetcher. cache and limiter may be nil.
func New(cache Cache, limiter Limiter, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: DefaultTimeout},
		cache:       cache,
		limiter:     limiter,
		userAgent:   DefaultUserAgent,
		maxRetries:  DefaultMaxRetries,
		backoffBase: DefaultBackoffBase,
		sleep:       sleepContext,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.breakerSettings != nil {
		f.breaker = newBreaker(*f.breakerSettings, f.log)
	}
	return f
}

// Fetch returns the body of url. A valid cache entry short-circuits
// everything else. Otherwise the limiter is consulted once and the request
// is tried up to MaxRetries times, sleeping base^attempt seconds between
// attempts. A successful body is written back to the cache.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.cache != nil {
		if body, ok := f.cache.Get(url); ok {
			metrics.RecordFetch(outcomeCached)
			return body, nil
		}
	}

	var (
		body []byte
		err  error
	)
	if f.breaker != nil {
		body, err = f.breaker.Execute(func() ([]byte, error) { return f.fetchNetwork(ctx, url) })
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordFetch(outcomeRejected)
			f.log.Warn(ctx, "source circuit open, skipping request", logger.String("url", url))
			return nil, fmt.Errorf("%w: %s: %w", ErrCircuitOpen, url, err)
		}
	} else {
		body, err = f.fetchNetwork(ctx, url)
	}
	if err != nil {
		metrics.RecordFetch(outcomeFailed)
		return nil, err
	}
	metrics.RecordFetch(outcomeOK)

	if f.cache != nil {
		if werr := f.cache.Set(url, body); werr != nil {
			f.log.Warn(ctx, "cache write failed", logger.String("url", url), logger.Error(werr))
		}
	}
	return body, nil
}

func (f *Fetcher) fetchNetwork(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, url, err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		start := time.Now()
		body, err := f.get(ctx, url)
		metrics.RecordFetchLatency(float64(time.Since(start).Milliseconds()))
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt == f.maxRetries-1 {
			break
		}

		backoff := time.Duration(math.Pow(f.backoffBase, float64(attempt)) * float64(time.Second))
		f.log.Debug(ctx, "retrying request",
			logger.String("url", url),
			logger.Int("attempt", attempt+1),
			logger.Duration("backoff", backoff),
			logger.Error(err),
		)
		metrics.RecordFetchRetry()
		if serr := f.sleep(ctx, backoff); serr != nil {
			lastErr = serr
			break
		}
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, url, lastErr)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
