package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecord(rfqID string, ts time.Time) RunRecord {
	return RunRecord{
		Timestamp:  ts,
		RFQID:      rfqID,
		CategoryID: "electronics",
		Candidates: 2,
		Scores:     map[string]int{"s1": 90, "s2": 50},
		Failures:   map[string]string{"s3": "persist: connection reset"},
		DurationMS: 12.5,
	}
}

func TestJSONLStore_AppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	store, err := NewJSONLStore(path, 1, 1, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	now := time.Now().UTC()
	ctx := context.Background()
	if err := store.Append(ctx, sampleRecord("rfq-1", now)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, sampleRecord("rfq-2", now.Add(time.Minute))); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := store.Query(ctx, RunQuery{RFQID: "rfq-1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].RFQID != "rfq-1" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if got[0].Scores["s1"] != 90 {
		t.Fatalf("scores not round-tripped: %#v", got[0].Scores)
	}
}

func TestSQLiteStore_AppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	now := time.Now().UTC()
	ctx := context.Background()
	for i, rfq := range []string{"rfq-1", "rfq-2", "rfq-3"} {
		if err := store.Append(ctx, sampleRecord(rfq, now.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("append %s: %v", rfq, err)
		}
	}

	got, err := store.Query(ctx, RunQuery{Start: now.Add(30 * time.Second)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("time filter returned %d records, want 2", len(got))
	}

	got, err = store.Query(ctx, RunQuery{SupplierID: "s3"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("failed suppliers should match the supplier filter, got %d", len(got))
	}

	got, err = store.Query(ctx, RunQuery{SupplierID: "nobody"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unknown supplier should match nothing, got %d", len(got))
	}
}
