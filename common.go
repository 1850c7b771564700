package strataboot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultArea is the area represented by one stratum unit, 2 × 2 in the
// survey's grid units. The biomass index of a group is the sum over strata
// of the mean density times this area.
const DefaultArea = 2 * 2

type (
	// An Observation is a single density measurement of one survey haul.
	// Latitude and Longitude are carried along but not used by the
	// statistics in this module.
	Observation struct {
		Survey       string
		Year         int
		Latitude     float64
		Longitude    float64
		GroupingCode string
		// Density is measured in kg per m².
		Density float64
	}

	// A Dataset is an ordered sequence of observations. Observations may
	// repeat strata, and no uniqueness constraint is imposed.
	Dataset []Observation

	// A Key identifies a group. Survey is empty when the dataset is
	// partitioned by year only and the group mixes several surveys.
	Key struct {
		Survey string
		Year   int
	}

	// A Group is the subset of a Dataset that shares one partition key.
	Group struct {
		Key          Key
		Observations []Observation
	}

	// A GroupResult is one row of a ResultTable.
	GroupResult struct {
		Survey string
		Year   int
		Est    float64
		Lwr    float64
		Upr    float64
		CV     float64
	}

	// A ResultTable holds one GroupResult per group, in the order in which
	// the groups were enumerated by the partition.
	ResultTable []GroupResult
)

func (k Key) String() string {
	if k.Survey == "" {
		return "year=" + strconv.Itoa(k.Year)
	}
	return "survey=" + k.Survey + " year=" + strconv.Itoa(k.Year)
}

// Validate checks that the observation carries a usable density.
func (o Observation) Validate() error {
	if math.IsNaN(o.Density) || math.IsInf(o.Density, 0) || o.Density < 0 {
		return fmt.Errorf("%w: density %v", ErrInvalidObservation, o.Density)
	}
	return nil
}

// A KeyField names an observation field that can be used to partition a
// dataset.
type KeyField int

const (
	// Year partitions by the survey year.
	Year KeyField = iota
	// Survey partitions by the survey name.
	Survey
)

func (f KeyField) String() string {
	switch f {
	case Year:
		return "year"
	case Survey:
		return "survey"
	default:
		return "KeyField(" + strconv.Itoa(int(f)) + ")"
	}
}

// ParseKeyField returns the KeyField with the given name. Names are matched
// case-insensitively.
func ParseKeyField(name string) (KeyField, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "year":
		return Year, nil
	case "survey":
		return Survey, nil
	default:
		return 0, InvalidConfigurationf("unknown key field %q", name)
	}
}

// ParseKeyFields parses a list of key field names. The result must contain
// Year, and may additionally contain Survey.
func ParseKeyFields(names []string) ([]KeyField, error) {
	fields := make([]KeyField, 0, len(names))
	for _, name := range names {
		f, err := ParseKeyField(name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if err := ValidateKeyFields(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// ValidateKeyFields checks that fields is either {Year} or {Year, Survey},
// in any order and without duplicates.
func ValidateKeyFields(fields []KeyField) error {
	var seen [2]bool
	for _, f := range fields {
		if f != Year && f != Survey {
			return InvalidConfigurationf("unknown key field %v", f)
		}
		if seen[f] {
			return InvalidConfigurationf("duplicate key field %v", f)
		}
		seen[f] = true
	}
	if !seen[Year] {
		return InvalidConfigurationf("key fields %v must include year", fields)
	}
	return nil
}
