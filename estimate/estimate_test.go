package estimate

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/exascience/strataboot"
)

func ExampleEstimate() {
	values := []float64{4, 1, 3, 2, 5, 6, 8, 7, 10, 9}
	iv, err := Estimate(values, 0.8)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("est=%.1f lwr=%.1f upr=%.1f\n", iv.Est, iv.Lwr, iv.Upr)

	// Output:
	// est=5.5 lwr=1.0 upr=9.0
}

func TestEstimateOrdering(t *testing.T) {
	values := []float64{12.5, 9.25, 11, 10.75, 8, 13.5, 10, 9.5}
	iv, err := Estimate(values, DefaultLevel)
	if err != nil {
		t.Fatal(err)
	}
	if !(iv.Lwr <= iv.Est && iv.Est <= iv.Upr) {
		t.Errorf("expected lwr <= est <= upr, got %+v", iv)
	}
	if iv.Lwr < 8 || iv.Upr > 13.5 {
		t.Errorf("interval %+v outside the data range", iv)
	}
	if iv.CV <= 0 {
		t.Errorf("expected positive cv, got %v", iv.CV)
	}
	if values[0] != 12.5 {
		t.Error("input slice was modified")
	}
}

func TestEstimateKnownValues(t *testing.T) {
	iv, err := Estimate([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if iv.Est != 5 {
		t.Errorf("expected mean 5, got %v", iv.Est)
	}
	// Positions 0.25*8 = 2 and 0.75*8 = 6 fall on order statistics.
	if iv.Lwr != 4 || iv.Upr != 5 {
		t.Errorf("expected [4, 5], got [%v, %v]", iv.Lwr, iv.Upr)
	}
	expectedCV := math.Sqrt(32.0/7.0) / 5
	if math.Abs(iv.CV-expectedCV) > 1e-12 {
		t.Errorf("expected cv %v, got %v", expectedCV, iv.CV)
	}
}

func TestEstimateTwoValues(t *testing.T) {
	iv, err := Estimate([]float64{1, 3}, DefaultLevel)
	if err != nil {
		t.Fatal(err)
	}
	// 0.975*2 = 1.95 interpolates 5% of the way back from 3 towards 1.
	if iv.Est != 2 || iv.Lwr != 1 || math.Abs(iv.Upr-2.9) > 1e-9 {
		t.Errorf("unexpected interval %+v", iv)
	}
}

func TestEstimateConstant(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 0.1
	}
	iv, err := Estimate(values, DefaultLevel)
	if err != nil {
		t.Fatal(err)
	}
	if iv.Est != 0.1 || iv.Lwr != 0.1 || iv.Upr != 0.1 || iv.CV != 0 {
		t.Errorf("expected a point interval at 0.1, got %+v", iv)
	}
}

func TestEstimateErrors(t *testing.T) {
	for _, tc := range []struct {
		values []float64
		level  float64
		err    error
	}{
		{[]float64{1}, DefaultLevel, strataboot.ErrInvalidConfiguration},
		{nil, DefaultLevel, strataboot.ErrInvalidConfiguration},
		{[]float64{1, 2}, 0, strataboot.ErrInvalidConfiguration},
		{[]float64{1, 2}, 1, strataboot.ErrInvalidConfiguration},
		{[]float64{1, 2}, math.NaN(), strataboot.ErrInvalidConfiguration},
		{[]float64{0, 0, 0}, DefaultLevel, strataboot.ErrDegenerateDistribution},
		{[]float64{-1, 1}, DefaultLevel, strataboot.ErrDegenerateDistribution},
		{[]float64{1, math.NaN()}, DefaultLevel, strataboot.ErrDegenerateDistribution},
	} {
		if _, err := Estimate(tc.values, tc.level); !errors.Is(err, tc.err) {
			t.Errorf("Estimate(%v, %v): expected %v, got %v", tc.values, tc.level, tc.err, err)
		}
	}
}

func TestEstimatorDefaultLevel(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	a, err := Estimator{}.Estimate(values)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Estimate(values, DefaultLevel)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("expected %+v, got %+v", b, a)
	}
}
