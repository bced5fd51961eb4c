package resilience

import (
	"context"
	"errors"
	"sync"

	"github.com/anthanhphan/gosdk/logger"
)

var ErrWorkerPoolClosed = errors.New("worker pool is closed")

// WorkerPool is a bounded task executor: a fixed set of goroutines draining a job queue.
// A panicking job is logged and does not take its worker down.
type WorkerPool struct {
	name   string
	jobs   chan func()
	closed bool
	mu     sync.RWMutex
	once   sync.Once
	wg     sync.WaitGroup
}

func NewWorkerPool(name string, workers, queueSize int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}

	p := &WorkerPool{
		name: name,
		jobs: make(chan func(), queueSize),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.run(job)
			}
		}()
	}

	return p
}

// Submit queues job, blocking while the queue is full until ctx is done.
func (p *WorkerPool) Submit(ctx context.Context, job func()) error {
	if job == nil {
		return nil
	}

	// Hold the read lock across the send so Close cannot close the channel underneath it.
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrWorkerPoolClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- job:
		return nil
	}
}

// Close stops accepting jobs. Queued jobs still run.
func (p *WorkerPool) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})
}

// Wait blocks until every worker has exited. Call Close first.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// Pending returns the number of queued jobs not yet picked up.
func (p *WorkerPool) Pending() int {
	return len(p.jobs)
}

func (p *WorkerPool) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("Worker pool job panicked", "pool", p.name, "panic", r)
		}
	}()
	job()
}
