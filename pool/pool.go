/*
Package pool provides a bounded pool of worker goroutines that execute
independent tasks, and futures to collect their results.

A Pool has a fixed number of workers and an unbounded FIFO queue, so
Submit always returns immediately with a Future, and Collect blocks
until all submitted tasks have completed. Results are associated with
the Future they were submitted with, never with the order in which
workers finish them.

A Pool is meant to be created once and reused across runs. Shared
returns a process-wide pool per worker count that is created on first
use, and Default is the shared pool with GOMAXPROCS workers.
*/
package pool

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/exascience/strataboot"
	"github.com/exascience/strataboot/internal"
)

// ErrClosed is returned by Submit after the pool has been closed.
var ErrClosed = errors.New("pool: closed")

// A Pool executes submitted tasks on a fixed set of workers.
//
// The zero Pool is not valid. Use New, Shared, or Default.
type Pool struct {
	workers int
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closed  bool
	wg      sync.WaitGroup
}

// New starts a pool with the given number of workers. It returns an error
// wrapping strataboot.ErrInvalidConfiguration if workers < 1.
func New(workers int) (*Pool, error) {
	if workers < 1 {
		return nil, strataboot.InvalidConfigurationf("worker count must be positive, got %d", workers)
	}
	p := &Pool{workers: workers}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p, nil
}

var (
	sharedMu sync.Mutex
	shared   = map[int]*Pool{}
)

// Shared returns the process-wide pool with the given number of workers.
// It is started on the first call for that size, reused by all later
// calls, and never closed. It returns an error wrapping
// strataboot.ErrInvalidConfiguration if workers < 1.
func Shared(workers int) (*Pool, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if p, ok := shared[workers]; ok {
		return p, nil
	}
	p, err := New(workers)
	if err != nil {
		return nil, err
	}
	shared[workers] = p
	return p, nil
}

// Default returns the shared pool with runtime.GOMAXPROCS(0) workers.
func Default() *Pool {
	p, err := Shared(runtime.GOMAXPROCS(0))
	if err != nil {
		panic(err)
	}
	return p
}

// Workers returns the number of workers of the pool.
func (p *Pool) Workers() int {
	return p.workers
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()
		task()
	}
}

func (p *Pool) enqueue(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.queue = append(p.queue, task)
	p.cond.Signal()
	return nil
}

// Close stops accepting tasks, waits for the queued tasks to complete, and
// stops the workers. Calling Close more than once is allowed.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.cond.Broadcast()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// A Future is the handle of a submitted task.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done returns a channel that is closed when the task has completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task has completed or ctx is done, and returns the
// task's result or the context error, respectively.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

/*
Submit queues fn for execution on p and returns its Future
immediately.

If ctx is already done when a worker picks up the task, fn is not
called and the Future reports the context error. If fn panics, the
panic is recovered on the worker and the Future reports a
*strataboot.PanicError; the worker keeps serving other tasks.

Submit returns ErrClosed if p has been closed.
*/
func Submit[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) (*Future[T], error) {
	f := &Future[T]{done: make(chan struct{})}
	err := p.enqueue(func() {
		defer close(f.done)
		defer func() {
			if err := internal.PanicToError(recover()); err != nil {
				f.err = err
			}
		}()
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.value, f.err = fn(ctx)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Collect waits for all futures and returns their values in the order of
// the futures slice, together with the left-most error that is different
// from nil. If ctx is done first, Collect returns the context error without
// waiting for the remaining tasks.
func Collect[T any](ctx context.Context, futures []*Future[T]) ([]T, error) {
	values := make([]T, len(futures))
	var err error
	for i, f := range futures {
		v, ferr := f.Wait(ctx)
		if ferr != nil {
			if err == nil {
				err = ferr
			}
			if ctx.Err() != nil {
				return values, err
			}
			continue
		}
		values[i] = v
	}
	return values, err
}
