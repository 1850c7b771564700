/*
Package runner computes the bootstrap result table of a dataset.

A Runner partitions the dataset, and then, for every group
independently, draws the configured number of stratified resamples,
evaluates the statistic on each of them, and summarizes the resulting
distribution with estimate.Estimate. The per-group jobs are dispatched
through an execution strategy, and every job writes its result to the row
of its group, so the table is always in partition order.

Runs fail fast: the first group that fails aborts the run, and Run
returns a *strataboot.GroupError that names the group's key. A run that
exceeds the configured timeout fails with an error wrapping
context.DeadlineExceeded. Partial tables are never returned.

With a seed policy other than entropy, runs are reproducible: the same
dataset and configuration always produce a bit-identical table, whatever
the execution strategy, because every group draws from its own seeded
random stream.
*/
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/exascience/strataboot"
	"github.com/exascience/strataboot/config"
	"github.com/exascience/strataboot/estimate"
	"github.com/exascience/strataboot/internal"
	"github.com/exascience/strataboot/metrics"
	"github.com/exascience/strataboot/partition"
	"github.com/exascience/strataboot/pool"
	"github.com/exascience/strataboot/resample"
	"github.com/exascience/strataboot/store"
	"github.com/exascience/strataboot/strategy"
)

// A Runner executes bootstrap runs with a fixed, validated configuration.
// A Runner can be used for any number of runs, also concurrently.
type Runner struct {
	cfg       config.Config
	fields    []strataboot.KeyField
	policy    resample.SeedPolicy
	strategy  strategy.Strategy
	pool      *pool.Pool
	statistic resample.StatisticFunc
	logger    *slog.Logger
	metrics   *metrics.Metrics
	sinks     []store.Sink
	newID     func() string
}

// An Option configures a Runner.
type Option func(*Runner)

// WithStrategy sets the execution strategy, overriding the strategy named
// in the configuration.
func WithStrategy(s strategy.Strategy) Option {
	return func(r *Runner) { r.strategy = s }
}

// WithPool sets the worker pool of the pool strategy, which then runs with
// the pool's own worker count. Without it, the pool strategy runs on
// pool.Shared(cfg.Workers).
func WithPool(p *pool.Pool) Option {
	return func(r *Runner) { r.pool = p }
}

// WithStatistic replaces the biomass statistic.
func WithStatistic(stat resample.StatisticFunc) Option {
	return func(r *Runner) { r.statistic = stat }
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics sets the metrics to update.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithSink adds a sink that receives the table of every successful run.
func WithSink(s store.Sink) Option {
	return func(r *Runner) { r.sinks = append(r.sinks, s) }
}

// New validates cfg and returns a Runner for it. All configuration errors
// are reported here, before any work is dispatched.
func New(cfg config.Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fields, err := cfg.Fields()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:       cfg,
		fields:    fields,
		policy:    policy,
		statistic: resample.Biomass(cfg.Area),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.statistic == nil {
		return nil, strataboot.InvalidConfigurationf("missing statistic")
	}
	if r.strategy == nil {
		if r.strategy, err = strategy.New(cfg.Strategy, cfg.Workers, r.pool); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Config returns the configuration of the runner.
func (r *Runner) Config() config.Config {
	return r.cfg
}

// Strategy returns the execution strategy of the runner.
func (r *Runner) Strategy() strategy.Strategy {
	return r.strategy
}

// Run computes the result table of data, and passes it to all sinks.
func (r *Runner) Run(ctx context.Context, data strataboot.Dataset) (strataboot.ResultTable, error) {
	runID := r.newID()
	logger := r.logger.With("run", runID, "strategy", r.strategy.Name())
	start := time.Now()

	table, err := r.run(ctx, logger, data)
	r.metrics.ObserveRun(r.strategy.Name(), err)
	if err != nil {
		logger.Error("run failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}
	for _, sink := range r.sinks {
		if err := sink.Save(ctx, runID, table); err != nil {
			logger.Error("saving results failed", "error", err)
			return nil, fmt.Errorf("save run %s: %w", runID, err)
		}
	}
	logger.Info("run finished", "groups", len(table), "elapsed", time.Since(start))
	return table, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, data strataboot.Dataset) (strataboot.ResultTable, error) {
	for i, obs := range data {
		if err := obs.Validate(); err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
	}
	groups, err := partition.Partition(data, r.fields...)
	if err != nil {
		return nil, err
	}
	logger.Info("run started",
		"observations", len(data),
		"groups", len(groups),
		"repetitions", r.cfg.Repetitions,
		"seed_policy", r.policy.String(),
	)

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	table := make(strataboot.ResultTable, len(groups))
	err = r.strategy.Execute(ctx, len(groups), func(ctx context.Context, i int) (err error) {
		g := groups[i]
		defer func() {
			if p := recover(); p != nil {
				err = &strataboot.GroupError{Key: g.Key, Index: i, Err: internal.PanicToError(p)}
			}
		}()
		start := time.Now()
		row, err := r.computeGroup(ctx, i, g)
		r.metrics.ObserveGroup(r.strategy.Name(), r.resamples(err), time.Since(start), err)
		if err != nil {
			return &strataboot.GroupError{Key: g.Key, Index: i, Err: err}
		}
		logger.Debug("group finished", "survey", g.Key.Survey, "year", g.Key.Year, "est", row.Est, "cv", row.CV)
		table[i] = row
		return nil
	})
	if err != nil {
		if r.cfg.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("run timed out after %v: %w", r.cfg.Timeout, err)
		}
		return nil, err
	}
	return table, nil
}

func (r *Runner) resamples(err error) int {
	if err != nil {
		return 0
	}
	return r.cfg.Repetitions
}

func (r *Runner) computeGroup(ctx context.Context, i int, g strataboot.Group) (strataboot.GroupResult, error) {
	seed := r.policy.Seed(r.cfg.Seed, i, g.Key)
	values, err := resample.Compute(ctx, g, r.statistic, r.cfg.Repetitions, seed)
	if err != nil {
		return strataboot.GroupResult{}, err
	}
	iv, err := estimate.Estimate(values, r.cfg.Level)
	if err != nil {
		return strataboot.GroupResult{}, err
	}
	return strataboot.GroupResult{
		Survey: g.Key.Survey,
		Year:   g.Key.Year,
		Est:    iv.Est,
		Lwr:    iv.Lwr,
		Upr:    iv.Upr,
		CV:     iv.CV,
	}, nil
}

// Run validates cfg and computes the result table of data with a new
// Runner.
func Run(ctx context.Context, data strataboot.Dataset, cfg config.Config, opts ...Option) (strataboot.ResultTable, error) {
	r, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, data)
}
