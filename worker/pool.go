// Package worker runs capture sessions off the event loop.
package worker

import (
	"context"
	"log"
	"sync"
)

// Job is one unit of work executed on a pool worker. The job owns its
// own result delivery; the pool only schedules.
type Job func(ctx context.Context)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx context.Context
	run Job
}

// New creates a worker pool. Size defaults to 1. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				log.Printf("Worker: job started")
				j.run(j.ctx)
				log.Printf("Worker: job finished")
			}
		}()
	}
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, run Job) bool {
	if run == nil {
		return false
	}
	select {
	case p.jobs <- job{ctx: ctx, run: run}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
