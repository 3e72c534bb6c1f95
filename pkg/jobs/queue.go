// Package jobs provides a small in-process worker queue used for
// asynchronous report generation.
package jobs

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Handler processes a single queued job by ID.
type Handler func(ctx context.Context, jobID string) error

// Queue fans queued job IDs out to a fixed set of workers. Jobs are
// retried up to the configured number of attempts.
type Queue struct {
	log      *zap.Logger
	handler  Handler
	jobs     chan string
	workers  int
	retries  int
	wg       sync.WaitGroup
	stopOnce sync.Once
	cancel   context.CancelFunc
}

func NewQueue(handler Handler, workers, retries int, log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	if retries < 1 {
		retries = 1
	}

	return &Queue{
		log:     log,
		handler: handler,
		jobs:    make(chan string, 128),
		workers: workers,
		retries: retries,
	}
}

// Start launches the worker goroutines. It returns immediately.
func (q *Queue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Enqueue submits a job ID. It returns false when the queue is full or
// the queue has been stopped.
func (q *Queue) Enqueue(jobID string) bool {
	select {
	case q.jobs <- jobID:
		return true
	default:
		q.log.Warn("job queue full, rejecting job", zap.String("job_id", jobID))
		return false
	}
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		if q.cancel != nil {
			q.cancel()
		}
		close(q.jobs)
	})
	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case jobID, ok := <-q.jobs:
			if !ok {
				return
			}
			q.process(ctx, id, jobID)
		}
	}
}

func (q *Queue) process(ctx context.Context, workerID int, jobID string) {
	var err error
	for attempt := 1; attempt <= q.retries; attempt++ {
		if ctx.Err() != nil {
			return
		}

		err = q.handler(ctx, jobID)
		if err == nil {
			return
		}

		q.log.Warn("job attempt failed",
			zap.String("job_id", jobID),
			zap.Int("worker", workerID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	q.log.Error("job failed after retries",
		zap.String("job_id", jobID),
		zap.Int("attempts", q.retries),
		zap.Error(err),
	)
}
