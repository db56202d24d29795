package service

import (
	"time"

	"github.com/okian/fightmatch/internal/adapters/repository"
	"github.com/okian/fightmatch/internal/adapters/scrape"
	"github.com/okian/fightmatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFetcher replaces the cached, rate-limited source fetcher.
func WithFetcher(f scrape.Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithBoardStore replaces the in-memory board repository.
func WithBoardStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.boards = store
		}
	}
}

// WithClock sets the instant feature rows are computed at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithWorkerCount overrides the configured number of board workers.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithQueueSize overrides the configured job queue capacity.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}
