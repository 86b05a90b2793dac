// Package notify routes domain events to the live connections of their
// target users. CRUD handlers depend only on the narrow Publisher interface,
// never on connection internals.
package notify

import (
	"encoding/json"

	"github.com/procuro/rfqmatch/core/logger"
	"github.com/procuro/rfqmatch/core/model"
	"github.com/procuro/rfqmatch/core/registry"
)

// Publisher is the narrow publish contract exposed to the rest of the
// system.
type Publisher interface {
	Publish(ev model.DomainEvent)
}

// Dispatcher implements Publisher over a connection registry.
type Dispatcher struct {
	reg *registry.Registry
	log logger.Logger
}

// NewDispatcher creates a dispatcher bound to the registry.
func NewDispatcher(reg *registry.Registry, log logger.Logger) *Dispatcher {
	return &Dispatcher{reg: reg, log: log}
}

// wireEvent is the server-to-client push shape: {type, data}.
type wireEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Encode marshals the event into its wire payload.
func Encode(ev model.DomainEvent) ([]byte, error) {
	return json.Marshal(wireEvent{Type: ev.Kind.String(), Data: ev.Data})
}

// Publish resolves the event's target users and delivers the payload to all
// their live connections. Delivery is best effort; failures never reach the
// caller.
func (d *Dispatcher) Publish(ev model.DomainEvent) {
	if len(ev.UserIDs) == 0 {
		d.log.Debugf("event %s has no target users, dropping", ev.Kind)
		return
	}
	payload, err := Encode(ev)
	if err != nil {
		d.log.Errorf("encode %s event: %v", ev.Kind, err)
		return
	}
	if len(ev.UserIDs) == 1 {
		d.reg.SendTo(ev.UserIDs[0], payload)
		return
	}
	d.reg.Broadcast(ev.UserIDs, payload)
}
