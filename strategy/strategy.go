/*
Package strategy provides interchangeable ways to execute n independent
jobs: one at a time, fork/join, on a bounded worker pool, or as an
ordered concurrent stream.

A Job receives the index of its unit of work and is expected to store its
result in a slot owned by that index. Result order is therefore
determined by the indices, not by the order in which jobs complete, and
all strategies are interchangeable for that reason.

All strategies fail fast: the first job that returns an error cancels the
context passed to the remaining jobs, and Execute returns that error.
Panics in jobs are recovered and returned as *strataboot.PanicError
values. With the sequential strategy, the reported error is always the
one of the failing job with the lowest index; with the concurrent ones it
is the first to occur in time.
*/
package strategy

import (
	"context"
	"strings"
	"sync"

	"github.com/destel/rill"

	"github.com/exascience/strataboot"
	"github.com/exascience/strataboot/internal"
	"github.com/exascience/strataboot/parallel"
	"github.com/exascience/strataboot/pool"
	"github.com/exascience/strataboot/sequential"
)

// Names of the available strategies, as accepted by New.
const (
	SequentialName = "sequential"
	ForkJoinName   = "forkjoin"
	PoolName       = "pool"
	StreamName     = "stream"
)

// Names returns the names accepted by New.
func Names() []string {
	return []string{SequentialName, ForkJoinName, PoolName, StreamName}
}

// A Job computes the unit of work with index i.
type Job func(ctx context.Context, i int) error

// A Strategy executes the jobs with indices 0 to n-1, and returns once all
// of them have completed or one of them has failed.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, n int, job Job) error
}

// ParseName returns the canonical strategy name for name. Names are
// matched case-insensitively. It returns an error wrapping
// strataboot.ErrInvalidConfiguration for an unknown name.
func ParseName(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, known := range Names() {
		if n == known {
			return n, nil
		}
	}
	return "", strataboot.InvalidConfigurationf("unknown execution strategy %q, expected one of %v", name, Names())
}

/*
New returns the strategy with the given name. Workers bounds the
concurrency of every concurrent strategy. The pool strategy runs on p
if it is not nil, and otherwise on pool.Shared(workers), so repeated
calls with the same worker count reuse one set of workers.

New returns an error wrapping strataboot.ErrInvalidConfiguration for
an unknown name or a non-positive worker count.
*/
func New(name string, workers int, p *pool.Pool) (Strategy, error) {
	if workers < 1 {
		return nil, strataboot.InvalidConfigurationf("worker count must be positive, got %d", workers)
	}
	name, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	switch name {
	case SequentialName:
		return Sequential{}, nil
	case ForkJoinName:
		return ForkJoin{Workers: workers}, nil
	case PoolName:
		if p == nil {
			if p, err = pool.Shared(workers); err != nil {
				return nil, err
			}
		}
		return Pool{Pool: p}, nil
	default:
		return Stream{Workers: workers}, nil
	}
}

// failFast records the first job error and cancels the remaining jobs.
type failFast struct {
	once   sync.Once
	err    error
	cancel context.CancelFunc
}

func newFailFast(ctx context.Context) (context.Context, *failFast) {
	ctx, cancel := context.WithCancel(ctx)
	return ctx, &failFast{cancel: cancel}
}

func (f *failFast) fail(err error) {
	f.once.Do(func() {
		f.err = err
		f.cancel()
	})
}

// run executes job i, converting a panic into an error.
func (f *failFast) run(ctx context.Context, job Job, i int) (err error) {
	defer func() {
		if perr := internal.PanicToError(recover()); perr != nil {
			err = perr
		}
		if err != nil {
			f.fail(err)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return job(ctx, i)
}

// result returns the recorded error, or err if none was recorded.
func (f *failFast) result(err error) error {
	f.cancel()
	if f.err != nil {
		return f.err
	}
	return err
}

// Sequential executes jobs one at a time in index order.
type Sequential struct{}

func (Sequential) Name() string { return SequentialName }

// Execute runs the jobs in index order and stops at the first error.
func (Sequential) Execute(ctx context.Context, n int, job Job) error {
	ctx, ff := newFailFast(ctx)
	err := sequential.Range(0, n, n, func(low, high int) error {
		for i := low; i < high; i++ {
			if err := ff.run(ctx, job, i); err != nil {
				return err
			}
		}
		return nil
	})
	return ff.result(err)
}

// ForkJoin divides the jobs into Workers contiguous batches that are
// executed in parallel with parallel.Range.
type ForkJoin struct {
	Workers int
}

func (ForkJoin) Name() string { return ForkJoinName }

// Execute runs the batches in parallel, and the jobs of each batch in index
// order.
func (s ForkJoin) Execute(ctx context.Context, n int, job Job) error {
	ctx, ff := newFailFast(ctx)
	err := parallel.Range(0, n, s.Workers, func(low, high int) error {
		for i := low; i < high; i++ {
			if err := ff.run(ctx, job, i); err != nil {
				return err
			}
		}
		return nil
	})
	return ff.result(err)
}

// Pool submits every job as its own task to a bounded worker pool.
type Pool struct {
	// Pool is the worker pool. If nil, pool.Default() is used.
	Pool *pool.Pool
}

func (Pool) Name() string { return PoolName }

// Execute submits all jobs, then waits for all of them.
func (s Pool) Execute(ctx context.Context, n int, job Job) error {
	p := s.Pool
	if p == nil {
		p = pool.Default()
	}
	ctx, ff := newFailFast(ctx)
	futures := make([]*pool.Future[struct{}], 0, n)
	for i := 0; i < n; i++ {
		f, err := pool.Submit(ctx, p, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, ff.run(ctx, job, i)
		})
		if err != nil {
			ff.fail(err)
			break
		}
		futures = append(futures, f)
	}
	// Wait without ctx, so that no job outlives Execute.
	_, err := pool.Collect(context.Background(), futures)
	return ff.result(err)
}

// Stream feeds the job indices through rill.OrderedMap with Workers
// goroutines.
type Stream struct {
	Workers int
}

func (Stream) Name() string { return StreamName }

// Execute streams the job indices and drains the whole stream, so that no
// job outlives Execute.
func (s Stream) Execute(ctx context.Context, n int, job Job) error {
	ctx, ff := newFailFast(ctx)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	results := rill.OrderedMap(rill.FromSlice(indices, nil), s.Workers, func(i int) (int, error) {
		return i, ff.run(ctx, job, i)
	})
	var err error
	for r := range results {
		if r.Error != nil && err == nil {
			err = r.Error
		}
	}
	return ff.result(err)
}
