// Package audit persists a forensic record of every matching run. The live
// match rows live with the persistence collaborator; this log is for
// operators answering "what did the matcher decide and why did a candidate
// fail".
package audit

import (
	"context"
	"time"
)

// RunRecord captures one matching run.
type RunRecord struct {
	Timestamp  time.Time         `json:"timestamp"`
	RFQID      string            `json:"rfq_id"`
	CategoryID string            `json:"category_id,omitempty"`
	Candidates int               `json:"candidates"`
	Scores     map[string]int    `json:"scores"`
	Failures   map[string]string `json:"failures,omitempty"`
	DurationMS float64           `json:"duration_ms"`
}

// RunQuery defines filters for retrieving records.
type RunQuery struct {
	Start      time.Time
	End        time.Time
	RFQID      string
	SupplierID string
}

// Matches reports whether the record passes the query filters.
func (q RunQuery) Matches(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RFQID != "" && r.RFQID != q.RFQID {
		return false
	}
	if q.SupplierID != "" {
		if _, ok := r.Scores[q.SupplierID]; !ok {
			if _, failed := r.Failures[q.SupplierID]; !failed {
				return false
			}
		}
	}
	return true
}

// LogStore persists RunRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// NopStore discards every record. Used when auditing is disabled.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error          { return nil }
func (NopStore) Query(context.Context, RunQuery) ([]RunRecord, error) { return nil, nil }
func (NopStore) Close() error                                     { return nil }
