package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/fightmatch/internal/adapters/mq/queue"
	worker "github.com/okian/fightmatch/internal/adapters/mq/worker"
	"github.com/smartystreets/goconvey/convey"
)

// mockQueue hands out jobs pushed by the test.
type mockQueue struct {
	jobs   chan queue.Job
	closed bool
	mu     sync.Mutex
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(_ context.Context) <-chan queue.Job {
	return mq.jobs
}

func (mq *mockQueue) Close() error {
	mq.mu.Lock()
	defer mq.mu.Unlock()
	if !mq.closed {
		close(mq.jobs)
		mq.closed = true
	}
	return nil
}

// recorder processes jobs by remembering their divisions.
type recorder struct {
	mu    sync.Mutex
	seen  map[string]int
	fails map[string]error
}

func newRecorder() *recorder {
	return &recorder{seen: map[string]int{}, fails: map[string]error{}}
}

func (r *recorder) Process(_ context.Context, j queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.fails[j.Division]; ok {
		return err
	}
	r.seen[j.Division]++
	return nil
}

func (r *recorder) count(division string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[division]
}

// jobWithResult returns a job whose result is delivered on the channel.
func jobWithResult(division string) (queue.Job, <-chan error) {
	res := make(chan error, 1)
	return queue.Job{ID: "job-" + division, RunID: "run1", Division: division, Done: func(err error) { res <- err }}, res
}

func await(res <-chan error) (error, bool) {
	select {
	case err := <-res:
		return err, true
	case <-time.After(time.Second):
		return nil, false
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running InMemoryWorker", t, func() {
		q := newMockQueue()
		proc := newRecorder()
		w := worker.NewInMemoryWorker(q, proc, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job is queued", func() {
			j, res := jobWithResult("Lightweight")
			q.jobs <- j
			err, ok := await(res)

			convey.Convey("Then it is processed and reported", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(err, convey.ShouldBeNil)
				convey.So(proc.count("Lightweight"), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When processing fails", func() {
			boom := errors.New("no rows")
			proc.fails["Flyweight"] = boom
			j, res := jobWithResult("Flyweight")
			q.jobs <- j
			err, ok := await(res)

			convey.Convey("Then the wrapped error reaches the job owner", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(errors.Is(err, boom), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Flyweight")
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.Convey("Then it stops gracefully", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		proc := newRecorder()
		pool := worker.NewPool(3, q, proc)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 3)

		convey.Convey("When one job per division is enqueued", func() {
			divisions := []string{"Flyweight", "Bantamweight", "Featherweight", "Lightweight", "Welterweight"}
			results := make([]<-chan error, 0, len(divisions))
			for _, d := range divisions {
				j, res := jobWithResult(d)
				convey.So(q.Enqueue(ctx, j), convey.ShouldBeNil)
				results = append(results, res)
			}

			convey.Convey("Then every division is processed exactly once", func() {
				for _, res := range results {
					err, ok := await(res)
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(err, convey.ShouldBeNil)
				}
				for _, d := range divisions {
					convey.So(proc.count(d), convey.ShouldEqual, 1)
				}
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then the queue is closed and workers exit", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool with a non-positive size", t, func() {
		pool := worker.NewPool(0, newMockQueue(), worker.ProcessorFunc(func(context.Context, queue.Job) error { return nil }))

		convey.Convey("Then it uses one worker per CPU", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
