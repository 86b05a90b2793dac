package test

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/procuro/rfqmatch/core/match"
	"github.com/procuro/rfqmatch/core/model"
	"github.com/procuro/rfqmatch/core/notify"
	"github.com/procuro/rfqmatch/core/registry"
	"github.com/procuro/rfqmatch/core/score"
	"github.com/procuro/rfqmatch/infra/logger"
	"github.com/procuro/rfqmatch/infra/store"
	"github.com/procuro/rfqmatch/infra/ws"
	"github.com/procuro/rfqmatch/internal/eventbus"
)

// seedScenario loads one active RFQ and three candidates: a strong
// supplier, one without a profile and a weak one.
func seedScenario(st *store.MemoryStore) {
	st.PutRFQ(model.RFQ{ID: "rfq-1", BuyerID: "buyer-1", CategoryID: "cat-1", Status: model.RFQActive, Quantity: 500})
	st.PutSupplier("cat-1", model.User{ID: "s-strong"})
	st.PutSupplier("cat-1", model.User{ID: "s-noprofile"})
	st.PutSupplier("cat-1", model.User{ID: "s-weak"})
	st.PutProfile(model.SupplierProfile{
		UserID: "s-strong", RiskLevel: model.RiskLow,
		Specialties: []string{"industrial-fasteners"},
		AvgRating:   4.9, TotalOrders: 150, OnTimeRate: 0.99,
	})
	st.PutProfile(model.SupplierProfile{
		UserID: "s-weak", RiskLevel: model.RiskHigh,
		AvgRating: 1.2, TotalOrders: 2, OnTimeRate: 0.3,
	})
}

type busPublisher struct {
	bus *eventbus.Bus[model.DomainEvent]
}

func (p busPublisher) Publish(ev model.DomainEvent) { p.bus.Publish(ev) }

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	sock, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = sock.Close() })

	if err := sock.WriteJSON(map[string]string{"type": "auth", "userId": userID}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	var ack map[string]string
	if err := sock.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack["type"] != "connection" || ack["status"] != "connected" {
		t.Fatalf("unexpected ack %#v", ack)
	}
	return sock
}

// TestMatchingRunEndToEnd runs a full matching pass and checks the ranked
// results and the real-time push to a connected supplier.
func TestMatchingRunEndToEnd(t *testing.T) {
	st := store.NewMemoryStore()
	seedScenario(st)

	reg := registry.New(logger.NopLogger{})
	defer reg.Close()
	srv := httptest.NewServer(ws.NewHandler(reg, ws.Config{}, logger.NopLogger{}))
	defer srv.Close()

	bus := eventbus.New[model.DomainEvent]()
	defer bus.Close()
	dispatcher := notify.NewDispatcher(reg, logger.NopLogger{})
	sub := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub {
			dispatcher.Publish(ev)
		}
	}()

	sock := dial(t, srv, "s-strong")
	deadline := time.Now().Add(2 * time.Second)
	for reg.Connections("s-strong") != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("connection never registered")
		}
		time.Sleep(time.Millisecond)
	}

	lookup := score.StaticLookup{"cat-1": {"industrial-fasteners": true}}
	engine := score.NewEngineWithSource(lookup, rand.NewSource(42))
	gen, err := match.NewGenerator(st, engine, match.Config{Workers: 2, NotifySuppliers: true}, busPublisher{bus: bus}, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("generator: %v", err)
	}

	if err := gen.GenerateMatches(context.Background(), "rfq-1"); err != nil {
		t.Fatalf("matching run: %v", err)
	}

	rows, err := st.GetMatchResultsByRFQ(context.Background(), "rfq-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].SupplierID != "s-strong" || rows[0].Score != 100 {
		t.Fatalf("strong supplier should rank first with 100, got %s/%d", rows[0].SupplierID, rows[0].Score)
	}
	if rows[1].SupplierID != "s-noprofile" || rows[1].Score != 50 {
		t.Fatalf("profileless supplier should score 50, got %s/%d", rows[1].SupplierID, rows[1].Score)
	}
	if rows[2].SupplierID != "s-weak" || rows[2].Score >= 50 {
		t.Fatalf("weak supplier should rank last below 50, got %s/%d", rows[2].SupplierID, rows[2].Score)
	}

	var wire struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	_ = sock.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := sock.ReadJSON(&wire); err != nil {
		t.Fatalf("read push: %v", err)
	}
	if wire.Type != "match-found" {
		t.Fatalf("expected match-found push, got %s", wire.Type)
	}
	if wire.Data["rfqId"] != "rfq-1" {
		t.Fatalf("push carries wrong rfq: %#v", wire.Data)
	}
	if wire.Data["matchId"] != rows[0].ID {
		t.Fatalf("push carries wrong match id: %#v", wire.Data)
	}

	bus.Close()
	<-done
}

// TestRerunSupersedesResults repeats a run and checks listings keep a
// single row per supplier.
func TestRerunSupersedesResults(t *testing.T) {
	st := store.NewMemoryStore()
	seedScenario(st)

	lookup := score.StaticLookup{"cat-1": {"industrial-fasteners": true}}
	engine := score.NewEngineWithSource(lookup, rand.NewSource(7))
	gen, err := match.NewGenerator(st, engine, match.Config{}, nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("generator: %v", err)
	}

	ctx := context.Background()
	if err := gen.GenerateMatches(ctx, "rfq-1"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, err := st.GetMatchResultsByRFQ(ctx, "rfq-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := gen.GenerateMatches(ctx, "rfq-1"); err != nil {
		t.Fatalf("second run: %v", err)
	}

	rows, err := st.GetMatchResultsByRFQ(ctx, "rfq-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rerun must supersede, got %d rows", len(rows))
	}
	for i := range rows {
		if rows[i].ID == first[i].ID {
			t.Fatalf("row %d not refreshed by the second run", i)
		}
	}

	// Superseded rows stay addressable for explanations.
	if _, err := st.GetMatchResult(ctx, first[0].ID); err != nil {
		t.Fatalf("superseded row lost: %v", err)
	}

	ex, err := gen.ExplainMatch(ctx, rows[0].ID)
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if ex.Run.Rank != 1 || ex.Run.Results != 3 {
		t.Fatalf("unexpected run stats %+v", ex.Run)
	}
}
