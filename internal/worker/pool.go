// Package worker runs submitted jobs on a fixed set of goroutines.
package worker

import (
	"context"
	"errors"
	"sync"

	"contract-admin/log"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by Submit when every queue slot is taken.
var ErrQueueFull = errors.New("worker: queue full")

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("worker: pool stopped")

// Job is one unit of work. The context is the pool's, cancelled by Stop.
type Job func(ctx context.Context)

// Pool consumes jobs from a bounded queue.
type Pool struct {
	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// Start launches n workers reading from a queue of size queueSize.
func Start(n, queueSize int) *Pool {
	if n <= 0 {
		n = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:   make(chan Job, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				p.run(j)
			}
		}()
	}
	return p
}

func (p *Pool) run(j Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Logger.Error("worker job panic", zap.Any("panic", r))
		}
	}()
	j(p.ctx)
}

// Submit queues j without blocking.
func (p *Pool) Submit(j Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop drains the queue and waits for the workers. Jobs still waiting on the
// chain see a cancelled context.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
