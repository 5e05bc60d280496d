package taskpool

import (
	"runtime/debug"
	"sync"
)

type Stats struct {
	Workers   int
	Queued    int
	Running   int
	Completed int
}

type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	stopped bool
	workers int
	running int
	done    int
	wg      sync.WaitGroup
}

// New starts a pool with the given number of workers.
func New(workers int) (*Pool, error) {
	if workers < 1 {
		return nil, ErrInvalidWorkers
	}
	p := &Pool{workers: workers}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p, nil
}

// Submit queues fn and returns the handle that will carry its result.
// After Shutdown has begun it returns ErrPoolStopped and fn is not queued.
func Submit[T any](p *Pool, fn func() (T, error)) (*Handle[T], error) {
	h := newHandle[T]()
	job := func() {
		var (
			v   T
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				v, err = zero, &PanicError{Value: r, Stack: debug.Stack()}
			}
			h.complete(v, err)
		}()
		v, err = fn()
	}

	if err := p.enqueue(job); err != nil {
		return nil, err
	}
	return h, nil
}

// Go submits a job that produces no value.
func (p *Pool) Go(fn func() error) (*Handle[struct{}], error) {
	return Submit(p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

func (p *Pool) enqueue(job func()) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	p.queue = append(p.queue, job)
	p.mu.Unlock()

	p.cond.Signal()
	return nil
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for !p.stopped && len(p.queue) == 0 {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			// stopped and drained
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.running++
		p.mu.Unlock()

		job()

		p.mu.Lock()
		p.running--
		p.done++
		p.mu.Unlock()
	}
}

// Shutdown stops accepting jobs, waits until every queued job has run and
// every worker has exited. Calling it more than once is safe.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
}

// Stopped reports whether Shutdown has been called.
func (p *Pool) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Workers:   p.workers,
		Queued:    len(p.queue),
		Running:   p.running,
		Completed: p.done,
	}
}
