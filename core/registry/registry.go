// Package registry tracks live client connections per authenticated user
// and owns their lifecycle: registration, liveness probing and eviction.
// It favors availability over guaranteed delivery; events to offline users
// are dropped, and a failed send on one connection never affects the rest.
package registry

import (
	"sync"

	"github.com/procuro/rfqmatch/core/logger"
)

// Registry is a concurrency-safe map of user id to the user's live
// connections. It is constructed at process start and passed explicitly to
// every component that publishes events.
type Registry struct {
	mu    sync.RWMutex
	users map[string]map[string]*entry
	log   logger.Logger
}

// New creates an empty registry.
func New(log logger.Logger) *Registry {
	return &Registry{users: map[string]map[string]*entry{}, log: log}
}

// Register adds the connection to the user's set, creating the set if
// absent. A user may hold several concurrent connections (multi-tab,
// multi-device); all of them receive events.
func (r *Registry) Register(userID string, conn Conn) {
	r.mu.Lock()
	set, ok := r.users[userID]
	if !ok {
		set = map[string]*entry{}
		r.users[userID] = set
		connectedUsers.Inc()
	}
	set[conn.ID()] = newEntry(userID, conn)
	activeConnections.Inc()
	r.mu.Unlock()
	r.log.Debugw("connection registered", map[string]any{"user_id": userID, "conn_id": conn.ID()})
}

// Deregister removes the connection and closes it. Removing the last
// connection drops the user entry entirely; no empty sets linger. The call
// is idempotent and safe to race with SendTo and the liveness sweep.
func (r *Registry) Deregister(userID string, conn Conn) {
	r.mu.Lock()
	e := r.remove(userID, conn.ID())
	r.mu.Unlock()
	if e == nil {
		return
	}
	if err := e.close(); err != nil {
		r.log.Debugf("close on deregister: %v", err)
	}
	r.log.Debugw("connection deregistered", map[string]any{"user_id": userID, "conn_id": conn.ID()})
}

// remove detaches the entry from the map. Caller holds the write lock.
func (r *Registry) remove(userID, connID string) *entry {
	set, ok := r.users[userID]
	if !ok {
		return nil
	}
	e, ok := set[connID]
	if !ok {
		return nil
	}
	delete(set, connID)
	activeConnections.Dec()
	if len(set) == 0 {
		delete(r.users, userID)
		connectedUsers.Dec()
	}
	return e
}

// SendTo delivers the payload to every live connection of the user. Send
// failures are swallowed: logged, counted and never propagated. A user with
// no connections receives nothing.
func (r *Registry) SendTo(userID string, payload []byte) {
	r.mu.RLock()
	set := r.users[userID]
	entries := make([]*entry, 0, len(set))
	for _, e := range set {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	for _, e := range entries {
		delivered, err := e.send(payload)
		if err != nil {
			eventsDropped.Inc()
			r.log.Warnf("send to %s conn %s failed: %v", userID, e.conn.ID(), err)
			continue
		}
		if delivered {
			eventsDelivered.Inc()
		}
	}
}

// Broadcast delivers the payload to each user independently with SendTo
// semantics. Order across users is unspecified.
func (r *Registry) Broadcast(userIDs []string, payload []byte) {
	for _, id := range userIDs {
		r.SendTo(id, payload)
	}
}

// MarkAlive records a pong from the connection, resetting its liveness
// state for the next probe cycle.
func (r *Registry) MarkAlive(userID, connID string) {
	r.mu.Lock()
	if set, ok := r.users[userID]; ok {
		if e, ok := set[connID]; ok && e.state != stateDead {
			e.state = stateAlive
		}
	}
	r.mu.Unlock()
}

// Sweep advances the liveness state machine one probe cycle: connections
// still awaiting a pong from the previous cycle are marked dead, closed and
// removed; the remainder transition to AWAITING_PONG and receive a probe.
// It returns the number of connections probed and evicted.
func (r *Registry) Sweep() (probed, evicted int) {
	var stale, live []*entry
	r.mu.Lock()
	for userID, set := range r.users {
		for connID, e := range set {
			if e.state == stateAwaitingPong {
				e.state = stateDead
				stale = append(stale, e)
				r.remove(userID, connID)
				continue
			}
			e.state = stateAwaitingPong
			live = append(live, e)
		}
	}
	r.mu.Unlock()

	for _, e := range stale {
		if err := e.close(); err != nil {
			r.log.Debugf("close evicted conn %s: %v", e.conn.ID(), err)
		}
		connectionsEvicted.Inc()
		r.log.Infof("evicted unresponsive connection %s of user %s", e.conn.ID(), e.userID)
	}
	for _, e := range live {
		if err := e.ping(); err != nil {
			r.log.Debugf("probe conn %s: %v", e.conn.ID(), err)
		}
	}
	return len(live), len(stale)
}

// Connections returns how many live connections the user has.
func (r *Registry) Connections(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID])
}

// Users returns the number of users with at least one live connection.
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Close tears the registry down, closing every connection. Used at process
// shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	var all []*entry
	for _, set := range r.users {
		for _, e := range set {
			all = append(all, e)
		}
	}
	r.users = map[string]map[string]*entry{}
	connectedUsers.Set(0)
	activeConnections.Set(0)
	r.mu.Unlock()

	for _, e := range all {
		if err := e.close(); err != nil {
			r.log.Debugf("close on shutdown: %v", err)
		}
	}
}
