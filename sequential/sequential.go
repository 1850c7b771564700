// Package sequential provides sequential implementations of the
// functions provided by the parallel package. The sequential strategy
// of strataboot/strategy is built on top of it, and it is useful for
// testing and debugging code that otherwise runs in parallel.
package sequential

import (
	"github.com/exascience/strataboot/internal"
)

// Do receives zero or more thunks and executes them sequentially.
//
// All thunks are executed even if some of them fail. Do returns the
// left-most error value that is different from nil.
func Do(thunks ...func() error) (err error) {
	for _, thunk := range thunks {
		nerr := thunk()
		if err == nil {
			err = nerr
		}
	}
	return
}

// Range receives a range, a batch count n, and a range function f,
// divides the range into batches, and invokes the range function for
// each of these batches sequentially, covering the half-open interval
// from low to high, including low but excluding high.
//
// The batches are the same as for parallel.Range, and they are
// visited in increasing order. Unlike Do, Range stops at the first
// batch that returns an error, and returns that error.
//
// Range panics if high < low, or if n < 0.
func Range(low, high, n int, f func(low, high int) error) error {
	var recur func(int, int, int) error
	recur = func(low, high, n int) error {
		mid, half, ok := internal.Bisect(low, high, n)
		if !ok {
			return f(low, high)
		}
		if err := recur(low, mid, half); err != nil {
			return err
		}
		return recur(mid, high, n-half)
	}
	return recur(low, high, internal.Batches(low, high, n))
}
