package content

import (
	"sync"
)

// Pool is a fixed-size worker pool implementing Executor. When every worker
// is busy, Submit blocks until one frees up; an expandable pool spills the
// job onto a fresh goroutine instead of blocking.
type Pool struct {
	jobs       chan func()
	mu         sync.RWMutex
	workers    sync.WaitGroup
	spilled    sync.WaitGroup
	expandable bool
	closed     bool
}

// NewPool creates a pool with the given number of workers.
func NewPool(workers int, expandable bool) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		jobs:       make(chan func()),
		expandable: expandable,
	}
	p.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for fn := range p.jobs {
		fn()
	}
}

// Submit hands fn to a worker. On a non-expandable pool this blocks until a
// worker is free. After Close, fn runs on its own goroutine.
func (p *Pool) Submit(fn func()) {
	// The read lock spans the channel send so Close cannot close the job
	// channel while a sender is in flight.
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		go fn()
		return
	}

	if p.expandable {
		select {
		case p.jobs <- fn:
		default:
			p.spilled.Add(1)
			go func() {
				defer p.spilled.Done()
				fn()
			}()
		}
		return
	}

	p.jobs <- fn
}

// Close stops accepting work and waits for in-flight jobs to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.jobs)
	p.workers.Wait()
	p.spilled.Wait()
}
