package internal

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/exascience/strataboot"
)

// Batches returns the number of batches for the range [low, high) when n
// batches are requested. Zero requests 2 * GOMAXPROCS batches. The result
// never exceeds the size of the range, and is 1 for an empty range.
func Batches(low, high, n int) int {
	size := high - low
	if size < 0 {
		panic(fmt.Sprintf("invalid range: %v:%v", low, high))
	}
	if n < 0 {
		panic(fmt.Sprintf("invalid number of batches: %v", n))
	}
	if n == 0 {
		n = 2 * runtime.GOMAXPROCS(0)
	}
	return max(1, min(n, size))
}

// Bisect splits n batches over [low, high) into a left part of half
// batches covering [low, mid) and a right part of n-half batches covering
// [mid, high). It returns ok == false when the range is one batch and must
// not be split further.
func Bisect(low, high, n int) (mid, half int, ok bool) {
	if n < 1 {
		panic(fmt.Sprintf("invalid number of batches: %v", n))
	}
	if n == 1 {
		return high, n, false
	}
	batchSize := (high-low-1)/n + 1
	half = n / 2
	mid = low + batchSize*half
	if mid >= high {
		return high, n, false
	}
	return mid, half, true
}

// PanicToError converts a recovered panic into a *strataboot.PanicError, so
// that it can travel across a goroutine boundary as an ordinary error. A
// value that already is a *strataboot.PanicError is returned as is. It
// returns nil if p is nil.
func PanicToError(p interface{}) error {
	if p == nil {
		return nil
	}
	if perr, ok := p.(*strataboot.PanicError); ok {
		return perr
	}
	return &strataboot.PanicError{Value: p, Stack: debug.Stack()}
}
