package ratelimit

import "time"

// Option configures a Limiter.
type Option func(*Limiter)

// WithInterval sets the minimum gap between requests.
func WithInterval(d time.Duration) Option {
	return func(l *Limiter) {
		if d >= 0 {
			l.interval = d
		}
	}
}

// WithJitter sets the upper bound of the random extra delay. Zero disables it.
func WithJitter(d time.Duration) Option {
	return func(l *Limiter) {
		if d >= 0 {
			l.jitter = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithSleeper replaces the blocking sleep.
func WithSleeper(s Sleeper) Option {
	return func(l *Limiter) {
		if s != nil {
			l.sleep = s
		}
	}
}

// WithRand replaces the jitter source. It must return a value in [0, n).
func WithRand(f func(n int64) int64) Option {
	return func(l *Limiter) {
		if f != nil {
			l.rnd = f
		}
	}
}
