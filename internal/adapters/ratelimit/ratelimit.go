// Package ratelimit spaces out requests to a single remote host.
package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/fightmatch/pkg/metrics"
)

// Defaults for a polite crawler.
const (
	DefaultInterval = time.Second
	DefaultJitter   = 300 * time.Millisecond
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Limiter enforces a minimum gap between consecutive Wait calls plus a
// random extra delay. The gap is measured from the end of the previous Wait.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	jitter   time.Duration
	last     time.Time
	now      func() time.Time
	sleep    Sleeper
	rnd      func(n int64) int64
}

// New creates a limiter with DefaultInterval and DefaultJitter.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		interval: DefaultInterval,
		jitter:   DefaultJitter,
		now:      time.Now,
		sleep:    sleepContext,
		rnd:      rand.Int64N,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until the next request may go out. The first call only pays
// the jitter.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := l.now()
	var delay time.Duration
	if !l.last.IsZero() {
		if elapsed := start.Sub(l.last); elapsed < l.interval {
			delay = l.interval - elapsed
		}
	}
	if l.jitter > 0 {
		delay += time.Duration(l.rnd(int64(l.jitter)))
	}
	if delay > 0 {
		if err := l.sleep(ctx, delay); err != nil {
			return err
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}
	l.last = l.now()
	metrics.RecordRateLimitWait(float64(l.last.Sub(start).Milliseconds()))
	return nil
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
