package registry

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	connectedUsers     prometheus.Gauge
	activeConnections  prometheus.Gauge
	eventsDelivered    prometheus.Counter
	eventsDropped      prometheus.Counter
	connectionsEvicted prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Gauge, prometheus.Gauge, prometheus.Counter, prometheus.Counter, prometheus.Counter) {
	users := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "registry_connected_users",
		Help: "Number of users with at least one live connection",
	})
	conns := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "registry_active_connections",
		Help: "Number of live client connections",
	})
	delivered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registry_events_delivered_total",
		Help: "Number of event payloads handed to a connection transport",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registry_events_dropped_total",
		Help: "Number of event payloads dropped due to send failures",
	})
	evicted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registry_connections_evicted_total",
		Help: "Number of connections evicted by the liveness supervisor",
	})
	return users, conns, delivered, dropped, evicted
}

func init() {
	connectedUsers, activeConnections, eventsDelivered, eventsDropped, connectionsEvicted = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers registry metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(connectedUsers, activeConnections, eventsDelivered, eventsDropped, connectionsEvicted)
}

// ResetMetrics reinitializes metric collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	connectedUsers, activeConnections, eventsDelivered, eventsDropped, connectionsEvicted = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
