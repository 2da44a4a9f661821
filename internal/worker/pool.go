// Package worker provides a bounded pool for fanning document detection out
// across goroutines, with an emitter that restores submission order.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work with a fixed position in the submission order
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job
type Result interface {
	Index() int
	GetError() error
}

// Pool runs jobs on a fixed number of workers. Results arrive on Results()
// in completion order; use an OrderedEmitter to restore submission order.
type Pool struct {
	workers int
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given number of workers (minimum 1)
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers*2),
		results: make(chan Result, workers*2),
	}
}

// Start launches the workers. The results channel closes once every worker
// has drained the job queue, so callers can range over Results().
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			select {
			case p.results <- job.Execute(ctx):
			case <-ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It blocks when the queue is full and gives up when
// the context is canceled.
func (p *Pool) Submit(ctx context.Context, job Job) {
	select {
	case <-ctx.Done():
	case p.jobs <- job:
	}
}

// Close signals that no more jobs will be submitted
func (p *Pool) Close() {
	close(p.jobs)
}

// Results returns the channel results arrive on
func (p *Pool) Results() <-chan Result {
	return p.results
}

// OrderedEmitter buffers out-of-order results and releases the completed
// prefix in submission order. Not safe for concurrent Add calls; feed it
// from a single consumer loop.
type OrderedEmitter struct {
	emit    func(Result) error
	pending map[int]Result
	next    int
}

// NewOrderedEmitter creates an emitter that calls emit for each result in
// index order, starting at 0.
func NewOrderedEmitter(emit func(Result) error) *OrderedEmitter {
	return &OrderedEmitter{
		emit:    emit,
		pending: make(map[int]Result),
	}
}

// Add accepts one result and emits every result of the now-completed prefix.
// The first emit error stops emission and is returned.
func (e *OrderedEmitter) Add(r Result) error {
	e.pending[r.Index()] = r
	for {
		next, ok := e.pending[e.next]
		if !ok {
			return nil
		}
		delete(e.pending, e.next)
		e.next++
		if err := e.emit(next); err != nil {
			return err
		}
	}
}

// Pending reports how many results are buffered waiting for earlier indexes
func (e *OrderedEmitter) Pending() int {
	return len(e.pending)
}
