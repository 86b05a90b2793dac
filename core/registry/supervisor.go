package registry

import (
	"context"
	"time"

	"github.com/procuro/rfqmatch/core/logger"
)

// DefaultProbeInterval is the liveness probe cycle used when none is
// configured.
const DefaultProbeInterval = 30 * time.Second

// Supervisor periodically probes every registered connection and evicts the
// ones that missed a pong for a full cycle. Detection is deliberately fast:
// one missed cycle is enough, no retry budget.
type Supervisor struct {
	reg      *Registry
	interval time.Duration
	clock    Clock
	log      logger.Logger
}

// NewSupervisor creates a supervisor on the real clock.
func NewSupervisor(reg *Registry, interval time.Duration, log logger.Logger) *Supervisor {
	return NewSupervisorWithClock(reg, interval, realClock{}, log)
}

// NewSupervisorWithClock creates a supervisor driven by the given clock.
func NewSupervisorWithClock(reg *Registry, interval time.Duration, clock Clock, log logger.Logger) *Supervisor {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &Supervisor{reg: reg, interval: interval, clock: clock, log: log}
}

// Run sweeps the registry on every tick until the context is canceled. The
// ticker is released on return; no periodic task outlives the caller.
func (s *Supervisor) Run(ctx context.Context) {
	t := s.clock.NewTicker(s.interval)
	defer t.Stop()
	s.log.Infof("liveness supervisor started, probing every %s", s.interval)
	for {
		select {
		case <-t.C():
			probed, evicted := s.reg.Sweep()
			if evicted > 0 {
				s.log.Infof("liveness sweep: %d probed, %d evicted", probed, evicted)
			} else {
				s.log.Debugw("liveness sweep", map[string]any{"probed": probed})
			}
		case <-ctx.Done():
			s.log.Infof("liveness supervisor stopped")
			return
		}
	}
}
