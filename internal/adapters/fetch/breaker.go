package fetch

import (
	"context"
	"time"

	"github.com/okian/fightmatch/pkg/logger"
	"github.com/okian/fightmatch/pkg/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerSettings configure the circuit around the source site.
type BreakerSettings struct {
	Name         string
	MinRequests  uint32
	FailureRatio float64
	Timeout      time.Duration
	Interval     time.Duration
	HalfOpenMax  uint32
}

// DefaultBreakerSettings trips after five requests with at least 60% failures.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "ufcstats",
		MinRequests:  5,
		FailureRatio: 0.6,
		Timeout:      2 * time.Minute,
		Interval:     time.Minute,
		HalfOpenMax:  1,
	}
}

func newBreaker(s BreakerSettings, log logger.Logger) *gobreaker.CircuitBreaker[[]byte] {
	metrics.UpdateBreakerState(s.Name, stateValue(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenMax,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
			metrics.UpdateBreakerState(name, stateValue(to))
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	})
}

// stateValue maps breaker states to gauge values: closed 0, half-open 1, open 2.
func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
