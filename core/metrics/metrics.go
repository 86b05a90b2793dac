// Package metrics defines the sink contract match results are reported
// through. Implementations live under infra/metrics.
package metrics

import "time"

// MatchRecord is one scored pairing reported to a sink.
type MatchRecord struct {
	RFQID      string
	CategoryID string
	SupplierID string
	Score      int
	CreatedAt  time.Time
}

// Sink receives match results for export.
type Sink interface {
	RecordMatchResults(recs []MatchRecord) error
}

// NopSink discards everything.
type NopSink struct{}

// RecordMatchResults implements Sink.
func (NopSink) RecordMatchResults([]MatchRecord) error { return nil }

// Config defines the metrics export settings.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9090"
	}
}
