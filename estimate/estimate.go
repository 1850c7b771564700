// Package estimate summarizes a bootstrap distribution by its mean, a
// percentile confidence interval, and its coefficient of variation.
package estimate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/exascience/strataboot"
	"github.com/exascience/strataboot/sort"
)

// DefaultLevel is the default two-sided confidence level.
const DefaultLevel = 0.95

// An Interval summarizes a bootstrap distribution.
type Interval struct {
	// Est is the arithmetic mean of the distribution.
	Est float64
	// Lwr and Upr are the (1-level)/2 and 1-(1-level)/2 quantiles.
	Lwr, Upr float64
	// CV is the sample standard deviation divided by the mean.
	CV float64
}

/*
Estimate computes the point estimate, percentile interval, and
coefficient of variation of values at the given confidence level.

Quantiles are computed with gonum's stat.LinInterp rule on the sorted
values: the empirical distribution function is linearly interpolated,
and the p quantile is the value at position p*n (Hyndman and Fan,
definition 4). The standard deviation uses the n-1 denominator.

If all values are equal, Est, Lwr, and Upr are exactly that value and
CV is 0.

Estimate returns an error wrapping strataboot.ErrInvalidConfiguration
if there are fewer than two values or level is not in (0, 1), and
strataboot.ErrDegenerateDistribution if the mean is zero or a value
is NaN. The values slice is not modified.
*/
func Estimate(values []float64, level float64) (Interval, error) {
	if len(values) < 2 {
		return Interval{}, strataboot.InvalidConfigurationf("at least 2 repetitions required, got %d", len(values))
	}
	if !(level > 0 && level < 1) {
		return Interval{}, strataboot.InvalidConfigurationf("confidence level %v not in (0, 1)", level)
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	// NaNs sort first.
	if math.IsNaN(sorted[0]) {
		return Interval{}, fmt.Errorf("%w: NaN statistic", strataboot.ErrDegenerateDistribution)
	}

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		if lo == 0 {
			return Interval{}, fmt.Errorf("%w: zero mean", strataboot.ErrDegenerateDistribution)
		}
		return Interval{Est: lo, Lwr: lo, Upr: lo, CV: 0}, nil
	}

	mean := stat.Mean(sorted, nil)
	if mean == 0 {
		return Interval{}, fmt.Errorf("%w: zero mean", strataboot.ErrDegenerateDistribution)
	}
	alpha := (1 - level) / 2
	return Interval{
		Est: mean,
		Lwr: stat.Quantile(alpha, stat.LinInterp, sorted, nil),
		Upr: stat.Quantile(1-alpha, stat.LinInterp, sorted, nil),
		CV:  stat.StdDev(sorted, nil) / mean,
	}, nil
}

// An Estimator computes intervals at a fixed confidence level.
type Estimator struct {
	Level float64
}

// Estimate calls Estimate with the estimator's level, or DefaultLevel if
// the level is zero.
func (e Estimator) Estimate(values []float64) (Interval, error) {
	level := e.Level
	if level == 0 {
		level = DefaultLevel
	}
	return Estimate(values, level)
}
