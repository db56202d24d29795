// Package worker runs board computation jobs taken from the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/fightmatch/internal/adapters/mq/queue"
	"github.com/okian/fightmatch/pkg/logger"
	"github.com/okian/fightmatch/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Processor computes and stores the result of one job.
type Processor interface {
	Process(ctx context.Context, j queue.Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, j queue.Job) error

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, j queue.Job) error { return f(ctx, j) }

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing jobs.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, p Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: p,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one job and always reports its result.
func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) {
	start := time.Now()
	err := w.processor.Process(ctx, j)
	metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "process_error")
		w.logger.Error(ctx, "job failed",
			logger.String("job_id", j.ID),
			logger.String("division", j.Division),
			logger.Error(err),
		)
		err = fmt.Errorf("job %s (%s): %w", j.ID, j.Division, err)
	} else {
		w.logger.Debug(ctx, "job done",
			logger.String("job_id", j.ID),
			logger.String("division", j.Division),
			logger.Duration("took", time.Since(start)),
		)
	}
	j.Finish(err)
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one uses
// runtime.NumCPU().
func NewPool(workerCount int, q Queue, p Processor, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(pool)
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, p,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(pool.logger),
		)
	}
	metrics.UpdateWorkerActiveCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue when it can be closed, then waits for every
// worker to finish its current job.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	for _, w := range p.workers {
		close(w.shutdown)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker %d: %w", i, shutdownCtx.Err())
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return nil
}
