package app

import (
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/procuro/rfqmatch/config"
	"github.com/procuro/rfqmatch/core/model"
	"github.com/procuro/rfqmatch/infra/ws"
)

type captureConn struct {
	id       string
	mu       sync.Mutex
	payloads [][]byte
}

func (c *captureConn) ID() string { return c.id }
func (c *captureConn) Send(p []byte) error {
	c.mu.Lock()
	c.payloads = append(c.payloads, p)
	c.mu.Unlock()
	return nil
}
func (c *captureConn) Ping() error  { return nil }
func (c *captureConn) Close() error { return nil }

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &config.Config{
		WS:    ws.Config{Path: "/ws"},
		Audit: config.AuditConfig{Backend: "jsonl", Path: filepath.Join(t.TempDir(), "runs.log")},
	}
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

// Events published between construction and pump start must not be lost:
// the bus subscription is taken in New, so they sit in its buffer.
func TestServiceBuffersEventsBeforePumpStarts(t *testing.T) {
	svc := newTestService(t)

	conn := &captureConn{id: "c1"}
	svc.Registry.Register("s-1", conn)

	svc.bus.Publish(model.NewEvent(model.EventMatchFound, map[string]any{"matchId": "m-1"}, "s-1"))

	go svc.pumpEvents()

	deadline := time.Now().Add(2 * time.Second)
	for {
		conn.mu.Lock()
		n := len(conn.payloads)
		conn.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("event published before the pump started was dropped")
		}
		time.Sleep(time.Millisecond)
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	var wire struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(conn.payloads[0], &wire); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if wire.Type != "match-found" || wire.Data["matchId"] != "m-1" {
		t.Fatalf("unexpected payload %s", conn.payloads[0])
	}
}
