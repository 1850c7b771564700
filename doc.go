// Package strataboot provides functions and data structures for computing
// stratified bootstrap biomass indices over groups of survey observations.
// Each survey-year group is an independent unit of work, so the per-group
// computations can be executed sequentially or in parallel without changing
// the result, and this library makes the choice of execution strategy an
// explicit configuration parameter rather than a property of the code.
//
// Strataboot provides the following subpackages:
//
// strataboot/partition splits a dataset into disjoint groups by year, or by
// year and survey, in first-appearance order.
//
// strataboot/resample draws stratified bootstrap resamples of a group and
// evaluates a statistic, by default the biomass index, on each of them.
//
// strataboot/estimate turns a distribution of resampled statistics into a
// point estimate, a percentile confidence interval, and a coefficient of
// variation.
//
// strataboot/runner applies resampling and estimation to every group of a
// dataset and assembles the result table in group order.
//
// strataboot/strategy provides the interchangeable execution strategies used
// by the runner: sequential, fork/join, a bounded worker pool, and an ordered
// stream.
//
// strataboot/parallel and strataboot/sequential provide fork/join primitives
// and their sequential drop-in replacements, strataboot/pool provides a
// process-wide bounded worker pool, and strataboot/sort provides a parallel
// quicksort.
//
// strataboot/config, strataboot/metrics, and strataboot/store provide YAML
// configuration, Prometheus metrics, and result table persistence to CSV,
// SQLite, Postgres, and S3.
//
// The bootstrap procedure follows the usual stratified design: within each
// group, observation indices are resampled with replacement separately for
// every stratum, so that each resample has exactly as many observations per
// stratum as the original group. See Efron and Tibshirani, An Introduction
// to the Bootstrap, chapter 13, for the percentile interval.
package strataboot
