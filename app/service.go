// Package app assembles the matching service from its configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/procuro/rfqmatch/api/matches"
	"github.com/procuro/rfqmatch/config"
	"github.com/procuro/rfqmatch/core/audit"
	"github.com/procuro/rfqmatch/core/match"
	coremetrics "github.com/procuro/rfqmatch/core/metrics"
	"github.com/procuro/rfqmatch/core/model"
	"github.com/procuro/rfqmatch/core/notify"
	"github.com/procuro/rfqmatch/core/registry"
	"github.com/procuro/rfqmatch/core/score"
	"github.com/procuro/rfqmatch/infra/logger"
	"github.com/procuro/rfqmatch/infra/metrics"
	"github.com/procuro/rfqmatch/infra/mqtt"
	"github.com/procuro/rfqmatch/infra/store"
	"github.com/procuro/rfqmatch/infra/ws"
	"github.com/procuro/rfqmatch/internal/eventbus"
)

// busPublisher publishes domain events onto the in-process bus. Producers
// stay decoupled from the delivery fan-out.
type busPublisher struct {
	bus *eventbus.Bus[model.DomainEvent]
}

func (p busPublisher) Publish(ev model.DomainEvent) { p.bus.Publish(ev) }

// Service orchestrates the matcher, the connection registry and the
// delivery fan-out.
type Service struct {
	Store     *store.MemoryStore
	Generator *match.Generator
	Registry  *registry.Registry

	bus        *eventbus.Bus[model.DomainEvent]
	events     <-chan model.DomainEvent
	dispatcher *notify.Dispatcher
	bridge     *mqtt.Bridge
	mqttClient *mqtt.PahoClient
	supervisor *registry.Supervisor
	auditStore audit.LogStore
	httpAddr   string
	handler    http.Handler
	log        logger.Logger

	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st := store.NewMemoryStore()

	lookup := score.StaticLookup{}
	for categoryID, specialties := range cfg.Specialties {
		set := make(map[string]bool, len(specialties))
		for _, s := range specialties {
			set[s] = true
		}
		lookup[categoryID] = set
	}
	engine := score.NewEngine(lookup)

	auditStore, err := newAuditStore(cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}

	reg := registry.New(logger.New("registry"))
	bus := eventbus.New[model.DomainEvent]()

	gen, err := match.NewGenerator(st, engine, cfg.Matcher, busPublisher{bus: bus}, auditStore, logger.New("matcher"))
	if err != nil {
		return nil, fmt.Errorf("match generator: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	if len(sinks) == 1 {
		gen.SetMetricsSink(sinks[0])
	} else if len(sinks) > 1 {
		gen.SetMetricsSink(metrics.NewMultiSink(sinks...))
	}

	svc := &Service{
		Store:       st,
		Generator:   gen,
		Registry:    reg,
		bus:         bus,
		// Subscribe before anything can publish so events raised between
		// construction and Run are buffered, not dropped.
		events:      bus.Subscribe(),
		dispatcher:  notify.NewDispatcher(reg, logger.New("dispatcher")),
		supervisor:  registry.NewSupervisor(reg, time.Duration(cfg.Registry.ProbeIntervalSeconds)*time.Second, logger.New("supervisor")),
		auditStore:  auditStore,
		httpAddr:    cfg.Server.Address,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqttClient = client
		svc.bridge = mqtt.NewBridge(client, cfg.MQTT.TopicPrefix, logger.New("mqtt-bridge"))
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.WS.Path, ws.NewHandler(reg, cfg.WS, logger.New("ws")))
	mux.Handle("/api/", matches.NewHandler(gen, st, logger.New("api")))
	mux.Handle("/api/match-runs", matches.NewRunLogHandler(auditStore))
	svc.handler = mux
	return svc, nil
}

// newAuditStore builds the configured run audit backend.
func newAuditStore(cfg config.AuditConfig) (audit.LogStore, error) {
	switch cfg.Backend {
	case "sqlite":
		return audit.NewSQLiteStore(cfg.Path)
	default:
		return audit.NewJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.supervisor.Run(ctx)
	go s.pumpEvents()
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.httpAddr, Handler: s.handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", s.httpAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// pumpEvents drains the bus subscription taken at construction and fans
// each event out to the websocket dispatcher and, when configured, the
// MQTT bridge.
func (s *Service) pumpEvents() {
	for ev := range s.events {
		s.dispatcher.Publish(ev)
		if s.bridge != nil {
			s.bridge.Publish(ev)
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	s.Registry.Close()
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	return s.auditStore.Close()
}
