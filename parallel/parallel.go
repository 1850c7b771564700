// Package parallel provides fork/join functions for executing independent
// units of work in parallel.
//
// The functions in this package recursively split their work in halves,
// executing one half in a new goroutine and the other half in the current
// one. They are appropriate when every unit of work is of roughly the same
// size, like the per-group bootstrap jobs of strataboot/runner.
package parallel

import (
	"sync"

	"github.com/exascience/strataboot/internal"
)

// fork runs left in the current goroutine and right in a new one, and
// waits for both. A panic in right is re-raised as a
// *strataboot.PanicError once left has returned.
func fork(left, right func() error) error {
	var errRight error
	var p error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer func() {
			p = internal.PanicToError(recover())
			wg.Done()
		}()
		errRight = right()
	}()
	errLeft := left()
	wg.Wait()
	if p != nil {
		panic(p)
	}
	if errLeft != nil {
		return errLeft
	}
	return errRight
}

// Do receives zero or more thunks and executes them in parallel.
//
// Each thunk is invoked in its own goroutine, and Do returns only
// when all thunks have terminated, returning the left-most error
// value that is different from nil.
//
// If a thunk panics, Do panics in the calling goroutine with a
// *strataboot.PanicError that carries the recovered value and the stack
// of the panicking goroutine.
func Do(thunks ...func() error) error {
	switch len(thunks) {
	case 0:
		return nil
	case 1:
		return thunks[0]()
	}
	half := len(thunks) / 2
	return fork(
		func() error { return Do(thunks[:half]...) },
		func() error { return Do(thunks[half:]...) },
	)
}

// Range receives a range, a batch count n, and a range function f,
// divides the range into batches, and invokes the range function for
// each of these batches in parallel, covering the half-open interval
// from low to high, including low but excluding high.
//
// The batches are determined by dividing up the size of the range
// (high - low) by n. If n is 0, a default is used that takes
// runtime.GOMAXPROCS(0) into account. Range panics if high < low, or
// if n < 0.
//
// Range returns only when all range functions have terminated, with
// the left-most error value that is different from nil. Panics are
// re-raised like in Do.
func Range(low, high, n int, f func(low, high int) error) error {
	var recur func(int, int, int) error
	recur = func(low, high, n int) error {
		mid, half, ok := internal.Bisect(low, high, n)
		if !ok {
			return f(low, high)
		}
		return fork(
			func() error { return recur(low, mid, half) },
			func() error { return recur(mid, high, n-half) },
		)
	}
	return recur(low, high, internal.Batches(low, high, n))
}
