package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/pauloheg33/SIEDE/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled maintenance tasks.
// Request handling never goes through the worker; it only runs
// housekeeping such as purging expired refresh tokens.
type Worker struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	queue  chan Job
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan Job, 64),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process()
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool
func (w *Worker) Enqueue(job Job) {
	select {
	case w.queue <- job:
	case <-w.ctx.Done():
	}
}

// ScheduleEvery runs job at the given interval until shutdown
func (w *Worker) ScheduleEvery(interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.Enqueue(job)
			case <-w.ctx.Done():
				return
			}
		}
	}()
}

func (w *Worker) process() {
	defer w.wg.Done()
	for {
		select {
		case job := <-w.queue:
			if err := job(w.ctx); err != nil {
				logger.Error("[Worker] Job error", "error", err)
			}
		case <-w.ctx.Done():
			return
		}
	}
}

// Shutdown stops the worker and waits for in-flight jobs
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}
