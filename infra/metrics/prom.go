package metrics

import (
	coremetrics "github.com/procuro/rfqmatch/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records match results in Prometheus metrics.
type PromSink struct {
	events *prometheus.CounterVec
	scores *prometheus.HistogramVec
}

// NewPromSink registers match metrics on the default Prometheus registerer.
// The metrics server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "match_events_total",
		Help: "Total number of persisted match results",
	}, []string{"category_id"})
	scores := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "match_score",
		Help:    "Distribution of overall match scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	}, []string{"category_id"})

	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(scores); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			scores = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{events: events, scores: scores}, nil
}

// RecordMatchResults increments the counters for each match result.
func (s *PromSink) RecordMatchResults(recs []coremetrics.MatchRecord) error {
	for _, r := range recs {
		s.events.WithLabelValues(r.CategoryID).Inc()
		s.scores.WithLabelValues(r.CategoryID).Observe(float64(r.Score))
	}
	return nil
}
