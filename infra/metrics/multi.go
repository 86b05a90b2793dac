package metrics

import coremetrics "github.com/procuro/rfqmatch/core/metrics"

// MultiSink fans match results out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMatchResults forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordMatchResults(recs []coremetrics.MatchRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordMatchResults(recs); err != nil {
			return err
		}
	}
	return nil
}
