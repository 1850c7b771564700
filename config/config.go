// Package config holds the parameters of a bootstrap run and loads them from
// YAML.
//
// A configuration file only needs to mention the parameters it changes:
//
//	key_fields: [year, survey]
//	repetitions: 2000
//	area: 4
//	confidence_level: 0.9
//	seed: 42
//	seed_policy: key
//	strategy: pool
//	workers: 8
//	timeout: 2m
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/exascience/strataboot"
	"github.com/exascience/strataboot/estimate"
	"github.com/exascience/strataboot/resample"
	"github.com/exascience/strataboot/strategy"
)

// Config holds all parameters of a run.
type Config struct {
	// KeyFields names the partition key: [year] or [year, survey].
	KeyFields []string `yaml:"key_fields"`
	// Repetitions is the number of bootstrap resamples per group.
	Repetitions int `yaml:"repetitions"`
	// Area is the area per stratum unit that scales the biomass index.
	Area float64 `yaml:"area"`
	// Level is the two-sided confidence level of the percentile interval.
	Level float64 `yaml:"confidence_level"`
	// Seed is the base seed from which every group's seed is derived.
	Seed uint64 `yaml:"seed"`
	// SeedPolicy is one of key, index, or entropy.
	SeedPolicy string `yaml:"seed_policy"`
	// Strategy is one of sequential, forkjoin, pool, or stream.
	Strategy string `yaml:"strategy"`
	// Workers bounds the concurrency of the concurrent strategies. The pool
	// strategy runs on the shared pool of this size, unless the runner is
	// given a pool of its own.
	Workers int `yaml:"workers"`
	// Timeout limits the duration of a run. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		KeyFields:   []string{"year"},
		Repetitions: 1000,
		Area:        strataboot.DefaultArea,
		Level:       estimate.DefaultLevel,
		SeedPolicy:  resample.ByKey.String(),
		Strategy:    strategy.PoolName,
		Workers:     runtime.GOMAXPROCS(0),
	}
}

// Validate checks every parameter and returns an error wrapping
// strataboot.ErrInvalidConfiguration that lists all problems found.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Fields(); err != nil {
		errs = append(errs, err)
	}
	if c.Repetitions < 2 {
		errs = append(errs, strataboot.InvalidConfigurationf("repetitions must be at least 2, got %d", c.Repetitions))
	}
	if !(c.Area > 0) || math.IsInf(c.Area, 0) {
		errs = append(errs, strataboot.InvalidConfigurationf("area must be positive and finite, got %v", c.Area))
	}
	if !(c.Level > 0 && c.Level < 1) {
		errs = append(errs, strataboot.InvalidConfigurationf("confidence level %v not in (0, 1)", c.Level))
	}
	if _, err := c.Policy(); err != nil {
		errs = append(errs, err)
	}
	if _, err := strategy.ParseName(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 1 {
		errs = append(errs, strataboot.InvalidConfigurationf("worker count must be positive, got %d", c.Workers))
	}
	if c.Timeout < 0 {
		errs = append(errs, strataboot.InvalidConfigurationf("timeout must not be negative, got %v", c.Timeout))
	}
	return errors.Join(errs...)
}

// Fields parses KeyFields.
func (c Config) Fields() ([]strataboot.KeyField, error) {
	return strataboot.ParseKeyFields(c.KeyFields)
}

// Policy parses SeedPolicy.
func (c Config) Policy() (resample.SeedPolicy, error) {
	return resample.ParseSeedPolicy(c.SeedPolicy)
}

// Parse decodes YAML data on top of the default configuration and validates
// the result. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	return Decode(bytes.NewReader(data))
}

// Decode is like Parse, but reads the YAML document from r.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode yaml: %v", strataboot.ErrInvalidConfiguration, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses the YAML configuration file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}
