package match

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/procuro/rfqmatch/core/model"
)

func TestRunMetricsUpdate(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)

	st := newFakeStore()
	st.rfqs["rfq-1"] = model.RFQ{ID: "rfq-1", BuyerID: "b1", CategoryID: "cat-7", Status: model.RFQActive}
	st.candidates["cat-7"] = []model.User{{ID: "ok"}, {ID: "bad"}}
	st.failCreate["bad"] = true

	g := newTestGenerator(t, st, Config{}, nil)
	if err := g.GenerateMatches(context.Background(), "rfq-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if val := testutil.ToFloat64(runsTotal); val != 1 {
		t.Errorf("runsTotal expected 1 got %f", val)
	}
	if val := testutil.ToFloat64(candidatesScored); val != 1 {
		t.Errorf("candidatesScored expected 1 got %f", val)
	}
	if val := testutil.ToFloat64(persistFailures); val != 1 {
		t.Errorf("persistFailures expected 1 got %f", val)
	}
	if count := testutil.CollectAndCount(runDuration); count == 0 {
		t.Errorf("runDuration not observed")
	}
}

func TestRunMetricsSkippedRunNotCounted(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)

	g := newTestGenerator(t, newFakeStore(), Config{}, nil)
	if err := g.GenerateMatches(context.Background(), "ghost"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if val := testutil.ToFloat64(runsTotal); val != 0 {
		t.Errorf("a no-op run must not count, runsTotal got %f", val)
	}
}
