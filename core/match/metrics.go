package match

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	runDuration      prometheus.Histogram
	runsTotal        prometheus.Counter
	candidatesScored prometheus.Counter
	persistFailures  prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Histogram, prometheus.Counter, prometheus.Counter, prometheus.Counter) {
	dur := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_run_duration_seconds",
		Help:    "Duration of a full matching run for one RFQ",
		Buckets: prometheus.DefBuckets,
	})
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_runs_total",
		Help: "Number of matching runs executed",
	})
	scored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_candidates_scored_total",
		Help: "Number of candidate suppliers scored",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_persist_failures_total",
		Help: "Number of match rows that failed to persist",
	})
	return dur, runs, scored, failures
}

func init() {
	runDuration, runsTotal, candidatesScored, persistFailures = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers matcher metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(runDuration, runsTotal, candidatesScored, persistFailures)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	runDuration, runsTotal, candidatesScored, persistFailures = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
