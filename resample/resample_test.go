package resample

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/exascience/strataboot"
)

func group(codes string, densities ...float64) strataboot.Group {
	g := strataboot.Group{Key: strataboot.Key{Survey: "test", Year: 2020}}
	for i, d := range densities {
		g.Observations = append(g.Observations, strataboot.Observation{
			Survey:       "test",
			Year:         2020,
			GroupingCode: string(codes[i]),
			Density:      d,
		})
	}
	return g
}

func ExampleBiomass() {
	g := group("aabb", 1, 3, 10, 20)
	stat := Biomass(strataboot.DefaultArea)
	fmt.Println(stat(g.Observations, []int{0, 1, 2, 3}))

	// Output:
	// 68
}

func TestStrata(t *testing.T) {
	g := group("bab", 1, 2, 3)
	strata, err := Strata(g.Observations)
	if err != nil {
		t.Fatal(err)
	}
	if len(strata) != 2 || strata[0].Code != "b" || strata[1].Code != "a" {
		t.Fatalf("unexpected strata %v", strata)
	}
	if len(strata[0].Indices) != 2 || strata[0].Indices[1] != 2 {
		t.Errorf("unexpected indices %v", strata[0].Indices)
	}
	if _, err := Strata(nil); !errors.Is(err, strataboot.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestDrawPreservesStratumSizes(t *testing.T) {
	g := group("aaabbcddddd", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)
	strata, err := Strata(g.Observations)
	if err != nil {
		t.Fatal(err)
	}
	rng := Seed{State: 1, Stream: 2}.Rand()
	var idx []int
	for rep := 0; rep < 200; rep++ {
		idx = Draw(rng, strata, idx)
		if len(idx) != len(g.Observations) {
			t.Fatalf("resample of size %d, expected %d", len(idx), len(g.Observations))
		}
		counts := make(map[string]int)
		for _, i := range idx {
			counts[g.Observations[i].GroupingCode]++
		}
		for _, s := range strata {
			if counts[s.Code] != len(s.Indices) {
				t.Fatalf("stratum %s: %d draws, expected %d", s.Code, counts[s.Code], len(s.Indices))
			}
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	g := group("aaabbb", 1, 2, 3, 4, 5, 6)
	stat := Biomass(strataboot.DefaultArea)
	seed := Seed{State: 42, Stream: 7}
	a, err := Compute(context.Background(), g, stat, 50, seed)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compute(context.Background(), g, stat, 50, seed)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 50 {
		t.Fatalf("expected 50 values, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("repetition %d differs: %v != %v", i, a[i], b[i])
		}
	}
	c, err := Compute(context.Background(), g, stat, 50, Seed{State: 43, Stream: 7})
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical draws")
	}
}

func TestComputeSingleObservationStratum(t *testing.T) {
	g := group("a", 0.5)
	values, err := Compute(context.Background(), g, Biomass(4), 10, Seed{})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range values {
		if v != 2 {
			t.Errorf("expected 2, got %v", v)
		}
	}
}

func TestComputeErrors(t *testing.T) {
	ctx := context.Background()
	stat := Biomass(4)
	if _, err := Compute(ctx, group("a", 1), stat, 0, Seed{}); !errors.Is(err, strataboot.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := Compute(ctx, group("a", 1), nil, 2, Seed{}); !errors.Is(err, strataboot.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := Compute(ctx, strataboot.Group{}, stat, 2, Seed{}); !errors.Is(err, strataboot.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Compute(cancelled, group("a", 1), stat, 2, Seed{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSeedPolicy(t *testing.T) {
	k1 := strataboot.Key{Survey: "s", Year: 2001}
	k2 := strataboot.Key{Survey: "s", Year: 2002}
	if ByKey.Seed(1, 0, k1) != ByKey.Seed(1, 5, k1) {
		t.Error("key policy depends on the group index")
	}
	if ByKey.Seed(1, 0, k1) == ByKey.Seed(1, 0, k2) {
		t.Error("key policy gives two keys the same seed")
	}
	if ByIndex.Seed(1, 3, k1) != ByIndex.Seed(1, 3, k2) {
		t.Error("index policy depends on the key")
	}
	for _, name := range []string{"key", "index", "entropy"} {
		p, err := ParseSeedPolicy(name)
		if err != nil {
			t.Fatal(err)
		}
		if p.String() != name {
			t.Errorf("expected %s, got %v", name, p)
		}
	}
	if _, err := ParseSeedPolicy("clock"); !errors.Is(err, strataboot.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}
