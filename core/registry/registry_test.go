package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/procuro/rfqmatch/infra/logger"
)

type fakeConn struct {
	id       string
	mu       sync.Mutex
	payloads [][]byte
	pings    int
	closed   bool
	failSend bool
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return fmt.Errorf("broken pipe")
	}
	c.payloads = append(c.payloads, p)
	return nil
}

func (c *fakeConn) Ping() error {
	c.mu.Lock()
	c.pings++
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) delivered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func TestRegistry_RegisterDeregisterNoLeak(t *testing.T) {
	r := New(logger.NopLogger{})
	conn := newFakeConn("c1")
	r.Register("u1", conn)
	if r.Users() != 1 || r.Connections("u1") != 1 {
		t.Fatalf("expected one user with one connection")
	}
	r.Deregister("u1", conn)
	if r.Users() != 0 {
		t.Fatalf("expected no user entry after last deregister, got %d", r.Users())
	}
	if !conn.closed {
		t.Fatalf("deregister should close the connection")
	}
	// Idempotent.
	r.Deregister("u1", conn)
}

func TestRegistry_SendToAllConnections(t *testing.T) {
	r := New(logger.NopLogger{})
	tab1 := newFakeConn("tab1")
	tab2 := newFakeConn("tab2")
	r.Register("u1", tab1)
	r.Register("u1", tab2)

	payload := []byte(`{"type":"new-quote","data":{"quoteId":"q1"}}`)
	r.SendTo("u1", payload)

	for _, c := range []*fakeConn{tab1, tab2} {
		if c.delivered() != 1 {
			t.Fatalf("conn %s got %d payloads, want 1", c.id, c.delivered())
		}
		if string(c.payloads[0]) != string(payload) {
			t.Fatalf("conn %s got payload %s", c.id, c.payloads[0])
		}
	}
}

func TestRegistry_SendToUnknownUserIsNoop(t *testing.T) {
	r := New(logger.NopLogger{})
	r.SendTo("ghost", []byte("x")) // must not panic
}

func TestRegistry_SendFailureDoesNotAffectOthers(t *testing.T) {
	r := New(logger.NopLogger{})
	broken := newFakeConn("broken")
	broken.failSend = true
	healthy := newFakeConn("healthy")
	r.Register("u1", broken)
	r.Register("u1", healthy)

	r.SendTo("u1", []byte("hello"))
	if healthy.delivered() != 1 {
		t.Fatalf("healthy connection should still receive the event")
	}
}

func TestRegistry_Broadcast(t *testing.T) {
	r := New(logger.NopLogger{})
	a := newFakeConn("a")
	b := newFakeConn("b")
	r.Register("u1", a)
	r.Register("u2", b)

	r.Broadcast([]string{"u1", "u2", "offline"}, []byte("m"))
	if a.delivered() != 1 || b.delivered() != 1 {
		t.Fatalf("broadcast should reach every connected user")
	}
}

func TestRegistry_NoDeliveryAfterDeregister(t *testing.T) {
	r := New(logger.NopLogger{})
	conn := newFakeConn("c1")
	r.Register("u1", conn)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				r.SendTo("u1", []byte("x"))
			}
		}
	}()

	r.Deregister("u1", conn)
	seen := conn.delivered()
	r.SendTo("u1", []byte("late"))
	if got := conn.delivered(); got != seen {
		t.Fatalf("delivery after deregister returned: %d -> %d", seen, got)
	}
	close(stop)
	wg.Wait()
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New(logger.NopLogger{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := newFakeConn(fmt.Sprintf("c%d", i))
			for j := 0; j < 100; j++ {
				r.Register("u1", conn)
				r.SendTo("u1", []byte("x"))
				r.Broadcast([]string{"u1", "u2"}, []byte("y"))
				r.Sweep()
				r.Deregister("u1", conn)
			}
		}(i)
	}
	wg.Wait()
	if r.Users() != 0 {
		t.Fatalf("expected empty registry after churn, got %d users", r.Users())
	}
}

func TestRegistry_CloseShutsEverythingDown(t *testing.T) {
	r := New(logger.NopLogger{})
	a := newFakeConn("a")
	b := newFakeConn("b")
	r.Register("u1", a)
	r.Register("u2", b)
	r.Close()
	if r.Users() != 0 {
		t.Fatalf("close should clear the registry")
	}
	if !a.closed || !b.closed {
		t.Fatalf("close should close all connections")
	}
}
