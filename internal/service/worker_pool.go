package service

import (
	"context"
	"sync"

	"github.com/pocktica/readlater/internal/metrics"
	"github.com/rs/zerolog"
)

// workerPool is the concrete implementation of WorkerPool
type workerPool struct {
	log     zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
	// Semaphore: buffered channel to limit concurrent finalizations
	sem chan struct{}
}

// newWorkerPool creates a pool running at most size tasks at once
func newWorkerPool(size int, log zerolog.Logger) *workerPool {
	if size < 1 {
		size = 1
	}

	log.Info().Int("max_workers", size).Msg("Initializing save worker pool")

	return &workerPool{
		log: log.With().Str("service", "worker_pool").Logger(),
		sem: make(chan struct{}, size),
	}
}

// Start makes the pool accept tasks; tasks see a context derived from ctx
func (p *workerPool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.log.Info().Msg("Worker pool started")
}

// Stop cancels the task context and waits for every submitted task to return
func (p *workerPool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info().Msg("Worker pool stopped")
}

// Submit schedules task; it runs once a slot is free
func (p *workerPool) Submit(name string, task func(ctx context.Context)) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrWorkerPoolStopped
	}
	ctx := p.ctx
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		// Acquire semaphore slot - blocks if all workers are busy (backpressure).
		// Tasks queued at shutdown still run, with a cancelled context.
		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		metrics.WorkerPoolInFlight.Inc()
		defer metrics.WorkerPoolInFlight.Dec()

		// Panic recovery - prevents runtime panics from crashing the entire process
		defer func() {
			if r := recover(); r != nil {
				p.log.Error().
					Interface("panic", r).
					Str("task", name).
					Msg("Task panicked - recovered")
			}
		}()

		task(ctx)
	}()

	return nil
}

// InFlight returns the number of tasks holding a slot
func (p *workerPool) InFlight() int {
	return len(p.sem)
}
