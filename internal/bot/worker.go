// internal/bot/worker.go
package bot

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// WorkerPool drains a job channel with a fixed number of goroutines.
// Close cancels the pool's context and waits for running jobs, so a pool
// can be registered with a ShutdownHandler.
type WorkerPool[T any] struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	jobs   <-chan T
	handle func(ctx context.Context, job T)
	logger *zap.Logger
}

func NewWorkerPool[T any](
	ctx context.Context,
	logger *zap.Logger,
	jobs <-chan T,
	handle func(ctx context.Context, job T),
) *WorkerPool[T] {
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool[T]{
		ctx:    ctx,
		cancel: cancel,
		jobs:   jobs,
		handle: handle,
		logger: logger,
	}
}

func (wp *WorkerPool[T]) Start(n int) {
	for i := 0; i < n; i++ {
		wp.wg.Add(1)
		go wp.worker(i + 1)
	}
}

// Wait blocks until every worker has returned.
func (wp *WorkerPool[T]) Wait() {
	wp.wg.Wait()
	wp.cancel()
}

// Close stops handing out jobs and waits for the ones in flight.
func (wp *WorkerPool[T]) Close() error {
	wp.cancel()
	wp.wg.Wait()
	return nil
}

func (wp *WorkerPool[T]) worker(id int) {
	defer wp.wg.Done()
	logger := wp.logger.With(zap.Int("worker_id", id))
	logger.Debug("Worker started")

	for {
		select {
		case <-wp.ctx.Done():
			logger.Debug("Worker shutting down due to context cancellation")
			return
		case job, ok := <-wp.jobs:
			if !ok {
				logger.Debug("Job channel closed")
				return
			}
			wp.handle(wp.ctx, job)
		}
	}
}
