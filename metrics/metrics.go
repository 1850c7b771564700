// Package metrics exposes Prometheus collectors for bootstrap runs.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics groups the collectors updated by runner.Runner.
type Metrics struct {
	Runs          *prometheus.CounterVec
	Groups        *prometheus.CounterVec
	Resamples     prometheus.Counter
	GroupDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. If reg is nil,
// the collectors are created but not registered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strataboot",
			Name:      "runs_total",
			Help:      "Number of completed bootstrap runs.",
		}, []string{"strategy", "outcome"}),
		Groups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strataboot",
			Name:      "groups_total",
			Help:      "Number of groups whose bootstrap job finished.",
		}, []string{"strategy", "outcome"}),
		Resamples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "strataboot",
			Name:      "resamples_total",
			Help:      "Number of stratified resamples drawn.",
		}),
		GroupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "strataboot",
			Name:      "group_duration_seconds",
			Help:      "Wall-clock duration of one group's bootstrap job.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"strategy"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.Runs, m.Groups, m.Resamples, m.GroupDuration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// ObserveGroup records one finished group job.
func (m *Metrics) ObserveGroup(strategy string, resamples int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.Groups.WithLabelValues(strategy, outcome(err)).Inc()
	m.GroupDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	if resamples > 0 {
		m.Resamples.Add(float64(resamples))
	}
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(strategy string, err error) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(strategy, outcome(err)).Inc()
}
