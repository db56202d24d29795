// Package service wires the scrape pipeline, the ranking engines and the
// board workers behind the operations used by the CLI and the HTTP API.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fightmatch/internal/adapters/cache"
	"github.com/okian/fightmatch/internal/adapters/dataset"
	"github.com/okian/fightmatch/internal/adapters/fetch"
	eventqueue "github.com/okian/fightmatch/internal/adapters/mq/queue"
	workerpool "github.com/okian/fightmatch/internal/adapters/mq/worker"
	"github.com/okian/fightmatch/internal/adapters/ratelimit"
	"github.com/okian/fightmatch/internal/adapters/repository"
	"github.com/okian/fightmatch/internal/adapters/scrape"
	"github.com/okian/fightmatch/internal/config"
	model "github.com/okian/fightmatch/internal/domain/model"
	"github.com/okian/fightmatch/internal/domain/matchup"
	"github.com/okian/fightmatch/internal/domain/scoring"
	"github.com/okian/fightmatch/internal/domain/types"
	"github.com/okian/fightmatch/pkg/logger"
	"github.com/okian/fightmatch/pkg/metrics"
)

const breakerName = "ufcstats"

// Service implements the pipeline commands and the API dependencies.
type Service struct {
	cfg *config.Config
	log logger.Logger
	now func() time.Time

	fetcher  scrape.Fetcher
	builder  *dataset.Builder
	datasets *dataset.Store
	boards   repository.Store

	workerCount int
	queueSize   int

	mu      sync.RWMutex
	queue   *eventqueue.InMemoryQueue
	pool    *workerpool.Pool
	cancel  context.CancelFunc
	started bool

	// runs holds the inputs of in-flight refreshes by run id; current is
	// the last completed one.
	runs       sync.Map
	current    atomic.Pointer[runState]
	refreshing atomic.Bool
}

// runState is the feature snapshot one refresh computes boards from.
type runState struct {
	id     string
	rows   []model.FeatureRow
	byID   map[string]model.FeatureRow
	recent matchup.RecentPairs
}

func newRunState(id string, rows []model.FeatureRow, recent matchup.RecentPairs) *runState {
	byID := make(map[string]model.FeatureRow, len(rows))
	for _, r := range rows {
		byID[r.FighterID] = r
	}
	return &runState{id: id, rows: rows, byID: byID, recent: recent}
}

// New constructs a Service. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New(context.Background())
	}
	s := &Service{
		cfg:         cfg,
		log:         logger.Nop(),
		now:         time.Now,
		boards:      repository.NewMemoryStore(),
		workerCount: cfg.WorkerCount,
		queueSize:   cfg.QueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.builder = dataset.NewBuilder(
		dataset.WithLogger(s.log.Named("dataset")),
		dataset.WithParser(s.parser()),
	)
	s.datasets = dataset.NewStore(dataset.WithLogger(s.log.Named("dataset")))
	return s
}

// Config returns the configuration the service runs with.
func (s *Service) Config() *config.Config { return s.cfg }

// ScoringConfig maps the matchmaking settings onto the ranking knobs.
func (s *Service) ScoringConfig() scoring.Config {
	return scoring.Config{
		PrioritizeContenderClarity: s.cfg.PrioritizeContenderClarity,
		PrioritizeAction:           s.cfg.PrioritizeAction,
		AllowShortNotice:           s.cfg.AllowShortNotice,
		AvoidImmediateRematch:      s.cfg.AvoidImmediateRematch,
		DecayHalfLifeDays:          s.cfg.DecayHalfLifeDays,
	}
}

func (s *Service) parser() *scrape.Parser {
	return scrape.NewParser(
		scrape.WithBaseURL(s.cfg.BaseURL),
		scrape.WithWinnerPolicy(scrape.ParsePolicy(s.cfg.WinnerPolicy)),
	)
}

// sourceFetcher builds the cached, rate-limited fetcher on first use so
// that commands which never touch the network do not create the cache.
func (s *Service) sourceFetcher() scrape.Fetcher {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetcher != nil {
		return s.fetcher
	}

	log := s.log.Named("fetch")
	opts := []fetch.Option{
		fetch.WithUserAgent(s.cfg.UserAgent),
		fetch.WithTimeout(s.cfg.RequestTimeout),
		fetch.WithMaxRetries(s.cfg.MaxRetries),
		fetch.WithBackoffBase(s.cfg.RetryBackoffBase),
		fetch.WithLogger(log),
	}
	if s.cfg.BreakerEnabled {
		settings := fetch.DefaultBreakerSettings()
		settings.Name = breakerName
		if s.cfg.BreakerMinRequests > 0 {
			settings.MinRequests = uint32(s.cfg.BreakerMinRequests)
		}
		settings.FailureRatio = s.cfg.BreakerFailureRatio
		if s.cfg.BreakerTimeout > 0 {
			settings.Timeout = s.cfg.BreakerTimeout
		}
		opts = append(opts, fetch.WithBreaker(settings))
	}

	s.fetcher = fetch.New(
		cache.New(s.cfg.CacheDir, cache.WithTTL(s.cfg.CacheTTL), cache.WithLogger(log)),
		ratelimit.New(
			ratelimit.WithInterval(s.cfg.RateLimitInterval),
			ratelimit.WithJitter(s.cfg.RateLimitJitter),
		),
		opts...,
	)
	return s.fetcher
}

// Start creates the job queue and starts the board workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.log.Info(ctx, "starting board service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue,
		workerpool.ProcessorFunc(s.computeBoard),
		workerpool.WithPoolLogger(s.log.Named("worker")),
	)
	s.pool.Start(runCtx)
	s.cancel = cancel
	s.started = true

	s.log.Info(ctx, "board service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains the queue and waits for the workers to exit.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.log.Info(ctx, "stopping board service...")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false

	s.log.Info(ctx, "board service stopped")
	return err
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Health reports liveness and the last completed refresh.
func (s *Service) Health(_ context.Context) types.Health {
	h := types.Health{Status: "ok", Started: s.isStarted()}
	if st := s.current.Load(); st != nil {
		h.RunID = st.id
	}
	return h
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"refreshing":  s.refreshing.Load(),
		"boards":      s.boards.Count(ctx),
		"divisions":   len(s.boards.Divisions(ctx)),
	}
	if st := s.current.Load(); st != nil {
		stats["runId"] = st.id
		stats["fighters"] = len(st.rows)
	}
	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["workers"] = s.pool.Size()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
