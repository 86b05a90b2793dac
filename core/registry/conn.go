package registry

import "sync"

// Conn is a live client connection owned by the Registry. Implementations
// adapt a concrete transport (websocket in production, fakes in tests).
// Send and Ping may block momentarily on I/O backpressure; Close must be
// safe to call more than once.
type Conn interface {
	ID() string
	Send(payload []byte) error
	Ping() error
	Close() error
}

// connState tracks the liveness state machine of a registered connection.
//
// ALIVE -> (probe sent) -> AWAITING_PONG -> ALIVE on pong, or
// AWAITING_PONG -> DEAD -> evicted when the next probe cycle starts first.
type connState int

const (
	stateAlive connState = iota
	stateAwaitingPong
	stateDead
)

func (s connState) String() string {
	switch s {
	case stateAlive:
		return "alive"
	case stateAwaitingPong:
		return "awaiting_pong"
	case stateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// entry wraps a connection with its liveness state. The state field is
// guarded by the registry mutex; the closed flag has its own lock so sends
// never run under the registry's global lock.
type entry struct {
	conn   Conn
	userID string
	state  connState

	mu     sync.Mutex // serializes sends and guards closed
	closed bool
}

func newEntry(userID string, conn Conn) *entry {
	return &entry{conn: conn, userID: userID, state: stateAlive}
}

// send delivers the payload unless the entry is already closed. It returns
// false when the payload was not handed to the transport.
func (e *entry) send(payload []byte) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false, nil
	}
	if err := e.conn.Send(payload); err != nil {
		return false, err
	}
	return true, nil
}

// ping probes the connection unless it is already closed.
func (e *entry) ping() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	return e.conn.Ping()
}

// close shuts the transport down exactly once.
func (e *entry) close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.conn.Close()
}
