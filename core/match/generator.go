// Package match orchestrates the scoring engine over the candidate
// suppliers of an RFQ, persists the results and emits match-found events.
// Matching is a best-effort background process: individual candidate
// failures are logged and skipped, never surfaced to the RFQ creator.
package match

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/procuro/rfqmatch/core/audit"
	"github.com/procuro/rfqmatch/core/logger"
	coremetrics "github.com/procuro/rfqmatch/core/metrics"
	"github.com/procuro/rfqmatch/core/model"
	"github.com/procuro/rfqmatch/core/notify"
	"github.com/procuro/rfqmatch/core/score"
)

// Generator runs matching for one RFQ at a time. Candidates within a run
// are scored and persisted with bounded parallelism.
type Generator struct {
	store     Store
	engine    *score.Engine
	publisher notify.Publisher
	audit     audit.LogStore
	sink      coremetrics.Sink
	log       logger.Logger
	cfg       Config

	mu sync.Mutex
}

// SetMetricsSink configures the sink match results are exported to.
func (g *Generator) SetMetricsSink(sink coremetrics.Sink) {
	g.mu.Lock()
	g.sink = sink
	g.mu.Unlock()
}

// NewGenerator creates a generator. The publisher and audit store are
// optional; pass nil to disable supplier pushes or run auditing.
func NewGenerator(store Store, engine *score.Engine, cfg Config, pub notify.Publisher, auditStore audit.LogStore, log logger.Logger) (*Generator, error) {
	if store == nil || engine == nil || log == nil {
		return nil, fmt.Errorf("match: nil parameter provided to NewGenerator")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if auditStore == nil {
		auditStore = audit.NopStore{}
	}
	return &Generator{store: store, engine: engine, publisher: pub, audit: auditStore, log: log, cfg: cfg}, nil
}

// GenerateMatches scores every candidate supplier against the RFQ and
// persists one MatchResult per candidate. An absent RFQ or a missing
// category is a no-op. One candidate failing never aborts the others.
func (g *Generator) GenerateMatches(ctx context.Context, rfqID string) error {
	start := time.Now()
	rfq, err := g.store.GetRFQ(ctx, rfqID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			g.log.Infof("rfq %s not found, skipping matching", rfqID)
			return nil
		}
		return fmt.Errorf("get rfq %s: %w", rfqID, err)
	}
	if rfq.CategoryID == "" {
		g.log.Infof("rfq %s has no category, empty candidate set", rfqID)
		return nil
	}

	candidates, err := g.store.GetSuppliersByCategory(ctx, rfq.CategoryID)
	if err != nil {
		return fmt.Errorf("candidates for category %s: %w", rfq.CategoryID, err)
	}
	g.log.Infof("matching rfq %s against %d candidates", rfqID, len(candidates))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		scores   = make(map[string]int, len(candidates))
		failures = map[string]string{}
		records  = make([]coremetrics.MatchRecord, 0, len(candidates))
	)
	sem := make(chan struct{}, g.cfg.Workers)
	for _, cand := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(supplier model.User) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := g.scoreAndPersist(ctx, *rfq, supplier)
			mu.Lock()
			if err != nil {
				failures[supplier.ID] = err.Error()
			} else {
				scores[supplier.ID] = res.Score
				records = append(records, coremetrics.MatchRecord{
					RFQID:      res.RFQID,
					CategoryID: rfq.CategoryID,
					SupplierID: res.SupplierID,
					Score:      res.Score,
					CreatedAt:  res.CreatedAt,
				})
			}
			mu.Unlock()
			if err != nil {
				persistFailures.Inc()
				g.log.Warnf("candidate %s failed: %v", supplier.ID, err)
				return
			}
			candidatesScored.Inc()
			g.notifySupplier(supplier.ID, res)
		}(cand)
	}
	wg.Wait()

	runsTotal.Inc()
	runDuration.Observe(time.Since(start).Seconds())
	g.recordMetrics(records)
	if err := g.audit.Append(ctx, audit.RunRecord{
		Timestamp:  start,
		RFQID:      rfq.ID,
		CategoryID: rfq.CategoryID,
		Candidates: len(candidates),
		Scores:     scores,
		Failures:   failures,
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
	}); err != nil {
		g.log.Errorf("audit append for rfq %s: %v", rfqID, err)
	}
	return nil
}

// recordMetrics forwards the run's match results to the configured sink.
func (g *Generator) recordMetrics(recs []coremetrics.MatchRecord) {
	if len(recs) == 0 {
		return
	}
	g.mu.Lock()
	sink := g.sink
	g.mu.Unlock()
	if sink == nil {
		return
	}
	if err := sink.RecordMatchResults(recs); err != nil {
		g.log.Errorf("failed to record match metrics: %v", err)
	}
}

// scoreAndPersist handles a single candidate: profile lookup, scoring and
// one persistence call.
func (g *Generator) scoreAndPersist(ctx context.Context, rfq model.RFQ, supplier model.User) (model.MatchResult, error) {
	profile, err := g.store.GetSupplierProfile(ctx, supplier.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return model.MatchResult{}, fmt.Errorf("profile: %w", err)
	}

	s, factors := g.engine.Score(rfq, profile)
	res := model.MatchResult{
		ID:         uuid.NewString(),
		RFQID:      rfq.ID,
		SupplierID: supplier.ID,
		Score:      s,
		Factors:    factors,
		CreatedAt:  time.Now().UTC(),
	}
	created, err := g.store.CreateMatchResult(ctx, res)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("persist: %w", err)
	}
	return created, nil
}

// notifySupplier pushes a match-found event to the supplier. Fire and
// forget: delivery failures stay inside the notification layer.
func (g *Generator) notifySupplier(supplierID string, res model.MatchResult) {
	if !g.cfg.NotifySuppliers || g.publisher == nil {
		return
	}
	g.publisher.Publish(model.NewEvent(model.EventMatchFound, map[string]any{
		"matchId": res.ID,
		"rfqId":   res.RFQID,
		"score":   res.Score,
	}, supplierID))
}
