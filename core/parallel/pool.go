package parallel

import "sync"

// Pool is a bounded worker pool scoped to one computation phase. Acquire it
// at the start of the phase, Submit independent tasks, Wait at each
// synchronization barrier, and Release it before the next phase begins so no
// workers leak across phases.
type Pool struct {
	width   int
	tasks   chan func()
	workers sync.WaitGroup
	pending sync.WaitGroup

	mu       sync.Mutex
	released bool
}

// NewPool starts width workers and returns the pool. Width values below one
// are treated as one.
func NewPool(width int) *Pool {
	if width < 1 {
		width = 1
	}
	p := &Pool{
		width: width,
		tasks: make(chan func(), width),
	}
	for i := 0; i < width; i++ {
		p.workers.Add(1)
		go func() {
			defer p.workers.Done()
			for task := range p.tasks {
				task()
				p.pending.Done()
			}
		}()
	}
	return p
}

// Width returns the number of workers.
func (p *Pool) Width() int {
	return p.width
}

// Submit queues fn for execution. Submitting to a released pool panics, which
// surfaces use-after-release bugs immediately.
func (p *Pool) Submit(fn func()) {
	p.pending.Add(1)
	p.tasks <- fn
}

// Wait blocks until every task submitted so far has finished. It does not
// stop the workers, so it can be used as a per-round barrier.
func (p *Pool) Wait() {
	p.pending.Wait()
}

// Release waits for outstanding tasks, stops all workers, and makes the pool
// unusable. Safe to call more than once.
func (p *Pool) Release() {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.released = true
	p.mu.Unlock()

	p.pending.Wait()
	close(p.tasks)
	p.workers.Wait()
}
