// Package parallel runs batch work over a fixed number of goroutines.
package parallel

import (
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

type (
	// WorkerFunc schedules a task. It blocks while every worker is busy
	// and the queue is full.
	WorkerFunc func(func())
	// WaitFunc waits for the workers to exit. With done set the queue is
	// closed first; without it, Wait returns only after Cancel.
	WaitFunc   func(done bool)
	CancelFunc func()
)

type Pool struct {
	wg      sync.WaitGroup
	logger  *slog.Logger
	panics  atomic.Int64
	Workers int
	Do      WorkerFunc
	Wait    WaitFunc
	Cancel  CancelFunc
}

// Start launches numWorkers goroutines, one per CPU when numWorkers is
// below 1. A single worker runs tasks inline on the caller's goroutine.
// Task panics are logged to logger, or the default logger when nil.
func Start(numWorkers int, logger *slog.Logger) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool := &Pool{
		logger:  logger.With("component", "pool"),
		Workers: numWorkers,
		Wait:    func(bool) {},
		Cancel:  func() {},
	}
	pool.Do = pool.run

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for worker := range numWorkers {
			pool.wg.Go(func() {
				for f := range workChan {
					pool.run(f)
				}
				pool.logger.Debug("worker done", "worker", worker)
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		pool.Wait = func(done bool) {
			if done {
				pool.Cancel()
			}
			pool.wg.Wait()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

// Panicked returns the number of tasks that panicked so far.
func (p *Pool) Panicked() int64 {
	return p.panics.Load()
}

// run executes f, logging a panic instead of taking the batch down with it.
func (p *Pool) run(f func()) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.logger.Error("task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	f()
}
