package workerpool

import (
	"sync"

	"github.com/epiclass/epiatlas/epi-golib/errors"
)

// Job is a unit of work run by the pool
type Job func() error

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Job
	active  int
	stopped bool
	closed  bool
	errs    errors.Errors
	workers sync.WaitGroup
}

// New starts a pool with the given number of workers (at least one).
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)
	p.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

// Run is a helper that runs all jobs on a new pool and waits for them.
func Run(workers int, jobs []Job) error {
	p := New(workers)
	p.Add(jobs)
	return p.Wait()
}

func (p *Pool) work() {
	defer p.workers.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue = p.queue[1:]
		p.active++
		p.mu.Unlock()

		err := job()

		p.mu.Lock()
		p.active--
		p.errs = errors.Append(p.errs, err)
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

// Add queues jobs. Jobs added after Stop or Wait are ignored.
func (p *Pool) Add(jobs []Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.closed {
		return
	}
	p.queue = append(p.queue, jobs...)
	p.cond.Broadcast()
}

// Stop drops queued jobs; jobs already running are allowed to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.queue = nil
	p.cond.Broadcast()
}

// Wait blocks until every queued job has run (or was dropped by Stop), shuts
// the workers down and returns the errors returned by jobs, if any.
func (p *Pool) Wait() error {
	p.mu.Lock()
	for len(p.queue) > 0 || p.active > 0 {
		p.cond.Wait()
	}
	p.closed = true
	p.cond.Broadcast()
	errs := p.errs
	p.mu.Unlock()

	p.workers.Wait()
	if errs == nil {
		return nil
	}
	return errs
}
