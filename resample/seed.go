package resample

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/exascience/strataboot"
)

// A Seed fully determines the random stream of one group's resamples.
type Seed struct {
	State  uint64
	Stream uint64
}

// Rand returns a PCG generator seeded with s.
func (s Seed) Rand() *rand.Rand {
	return rand.New(rand.NewPCG(s.State, s.Stream))
}

// A SeedPolicy derives the seed of each group from a base seed.
//
// Every group gets its own random stream under all policies, so the draws
// of one group never depend on which worker runs it or on what other
// groups consumed before.
type SeedPolicy int

const (
	// ByKey derives a group's stream from a hash of its key. Results do
	// not depend on the position of the group in the partition.
	ByKey SeedPolicy = iota
	// ByIndex derives a group's stream from its position in the partition.
	ByIndex
	// Entropy seeds every group from the runtime's random source. Results
	// are not reproducible.
	Entropy
)

func (p SeedPolicy) String() string {
	switch p {
	case ByKey:
		return "key"
	case ByIndex:
		return "index"
	case Entropy:
		return "entropy"
	default:
		return "SeedPolicy(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParseSeedPolicy returns the SeedPolicy with the given name: "key",
// "index", or "entropy".
func ParseSeedPolicy(name string) (SeedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "key", "":
		return ByKey, nil
	case "index":
		return ByIndex, nil
	case "entropy":
		return Entropy, nil
	default:
		return 0, strataboot.InvalidConfigurationf("unknown seed policy %q", name)
	}
}

// Seed returns the seed of the group at position index with the given key.
func (p SeedPolicy) Seed(base uint64, index int, key strataboot.Key) Seed {
	switch p {
	case ByIndex:
		return Seed{State: base, Stream: uint64(index)}
	case Entropy:
		return Seed{State: rand.Uint64(), Stream: rand.Uint64()}
	default:
		return Seed{State: base, Stream: xxhash.Sum64String(key.String())}
	}
}
