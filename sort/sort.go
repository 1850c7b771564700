/*
Package sort sorts bootstrap distributions, which are float64 slices of a
few hundred to many thousands of values with many duplicates.

Float64s is a parallel quicksort with a three-way partition, so runs of
equal values, which resampling small strata produces in abundance, are
finished in a single pass. NaN values are ordered before all other values,
like in slices.Sort.
*/
package sort

import (
	"cmp"
	"slices"

	"github.com/exascience/strataboot/parallel"
)

// grainSize is the partition size below which Float64s sorts sequentially.
// With the default of 1000 repetitions the first split is parallel.
const grainSize = 256

// Float64s sorts a in increasing order.
func Float64s(a []float64) {
	if len(a) <= grainSize {
		slices.Sort(a)
		return
	}
	if slices.IsSorted(a) {
		return
	}
	quicksort(a)
}

// Float64sAreSorted reports whether a is sorted in increasing order.
func Float64sAreSorted(a []float64) bool {
	return slices.IsSorted(a)
}

func quicksort(a []float64) {
	if len(a) <= grainSize {
		slices.Sort(a)
		return
	}
	lt, gt := partition(a, pivot(a))
	_ = parallel.Do(
		func() error { quicksort(a[:lt]); return nil },
		func() error { quicksort(a[gt:]); return nil },
	)
}

// pivot returns the median of the first, middle, and last value.
func pivot(a []float64) float64 {
	x, y, z := a[0], a[len(a)/2], a[len(a)-1]
	if cmp.Less(y, x) {
		x, y = y, x
	}
	if cmp.Less(z, y) {
		y = z
		if cmp.Less(y, x) {
			y = x
		}
	}
	return y
}

// partition rearranges a into values less than p in a[:lt], values equal
// to p in a[lt:gt], and values greater than p in a[gt:].
func partition(a []float64, p float64) (lt, gt int) {
	lt, gt = 0, len(a)
	for i := 0; i < gt; {
		switch cmp.Compare(a[i], p) {
		case -1:
			a[lt], a[i] = a[i], a[lt]
			lt++
			i++
		case 1:
			gt--
			a[gt], a[i] = a[i], a[gt]
		default:
			i++
		}
	}
	return lt, gt
}
