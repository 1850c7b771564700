// Package resample draws stratified bootstrap resamples of a group of
// observations and evaluates a statistic on each of them.
//
// A resample is a multiset of observation indices of the same size as the
// group. It is drawn by sampling with replacement separately within each
// stratum, with as many draws as the stratum has observations, and then
// concatenating the per-stratum draws. Stratum sizes are therefore the same
// in every resample as in the original group.
package resample

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/exascience/strataboot"
)

// A Stratum lists the positions within a group of all observations that
// share one grouping code.
type Stratum struct {
	Code    string
	Indices []int
}

// Strata returns the strata of obs in first-appearance order of their
// grouping codes. It returns an error wrapping strataboot.ErrInsufficientData
// if obs is empty.
func Strata(obs []strataboot.Observation) ([]Stratum, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: no observations", strataboot.ErrInsufficientData)
	}
	slots := make(map[string]int)
	var strata []Stratum
	for i, o := range obs {
		s, ok := slots[o.GroupingCode]
		if !ok {
			s = len(strata)
			slots[o.GroupingCode] = s
			strata = append(strata, Stratum{Code: o.GroupingCode})
		}
		strata[s].Indices = append(strata[s].Indices, i)
	}
	return strata, nil
}

// Draw appends one stratified resample of strata to dst[:0] and returns
// the extended slice. A stratum with a single observation always
// contributes that observation and does not consume randomness.
func Draw(rng *rand.Rand, strata []Stratum, dst []int) []int {
	dst = dst[:0]
	for _, s := range strata {
		n := len(s.Indices)
		if n == 1 {
			dst = append(dst, s.Indices[0])
			continue
		}
		for k := 0; k < n; k++ {
			dst = append(dst, s.Indices[rng.IntN(n)])
		}
	}
	return dst
}

// A StatisticFunc computes a scalar statistic of the observations selected
// by idx. Indices may repeat.
type StatisticFunc func(obs []strataboot.Observation, idx []int) float64

// Biomass returns the biomass index statistic: the mean density of every
// stratum, times area, summed across strata. Strata are summed in
// first-appearance order within idx, so the result is deterministic for a
// given idx.
func Biomass(area float64) StatisticFunc {
	return func(obs []strataboot.Observation, idx []int) float64 {
		slots := make(map[string]int)
		var sums []float64
		var counts []int
		for _, i := range idx {
			o := &obs[i]
			s, ok := slots[o.GroupingCode]
			if !ok {
				s = len(sums)
				slots[o.GroupingCode] = s
				sums = append(sums, 0)
				counts = append(counts, 0)
			}
			sums[s] += o.Density
			counts[s]++
		}
		var total float64
		for s, sum := range sums {
			total += sum / float64(counts[s]) * area
		}
		return total
	}
}

// How many repetitions are computed between two checks of the context.
const checkInterval = 64

// Compute draws repetitions stratified resamples of group, seeded with
// seed, and returns the value of stat for each of them, in draw order.
//
// The same group and seed always yield the same values. Compute returns an
// error wrapping strataboot.ErrInvalidConfiguration if repetitions < 1 or
// stat is nil, strataboot.ErrInsufficientData if the group is empty, and
// the context error if ctx is done before all repetitions are computed.
func Compute(
	ctx context.Context,
	group strataboot.Group,
	stat StatisticFunc,
	repetitions int,
	seed Seed,
) ([]float64, error) {
	if repetitions < 1 {
		return nil, strataboot.InvalidConfigurationf("repetitions must be positive, got %d", repetitions)
	}
	if stat == nil {
		return nil, strataboot.InvalidConfigurationf("missing statistic")
	}
	strata, err := Strata(group.Observations)
	if err != nil {
		return nil, err
	}
	rng := seed.Rand()
	values := make([]float64, repetitions)
	idx := make([]int, 0, len(group.Observations))
	for r := range values {
		if r%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		idx = Draw(rng, strata, idx)
		values[r] = stat(group.Observations, idx)
	}
	return values, nil
}
