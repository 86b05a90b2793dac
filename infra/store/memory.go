// Package store provides an in-memory implementation of the persistence
// collaborator. It backs local runs and tests; production deployments swap
// in whatever system of record owns the marketplace schema.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/procuro/rfqmatch/core/match"
	"github.com/procuro/rfqmatch/core/model"
)

// MemoryStore implements match.Store with plain maps behind a RWMutex.
type MemoryStore struct {
	mu        sync.RWMutex
	rfqs      map[string]model.RFQ
	suppliers map[string][]model.User            // category id -> candidates
	profiles  map[string]model.SupplierProfile   // user id -> profile
	matches   map[string]model.MatchResult       // match id -> row
	byRFQ     map[string]map[string]string       // rfq id -> supplier id -> latest match id
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rfqs:      map[string]model.RFQ{},
		suppliers: map[string][]model.User{},
		profiles:  map[string]model.SupplierProfile{},
		matches:   map[string]model.MatchResult{},
		byRFQ:     map[string]map[string]string{},
	}
}

// PutRFQ upserts an RFQ record.
func (s *MemoryStore) PutRFQ(rfq model.RFQ) {
	s.mu.Lock()
	s.rfqs[rfq.ID] = rfq
	s.mu.Unlock()
}

// PutSupplier registers a candidate supplier under a category.
func (s *MemoryStore) PutSupplier(categoryID string, u model.User) {
	s.mu.Lock()
	s.suppliers[categoryID] = append(s.suppliers[categoryID], u)
	s.mu.Unlock()
}

// PutProfile upserts a supplier profile.
func (s *MemoryStore) PutProfile(p model.SupplierProfile) {
	s.mu.Lock()
	s.profiles[p.UserID] = p
	s.mu.Unlock()
}

// GetRFQ returns the RFQ or match.ErrNotFound.
func (s *MemoryStore) GetRFQ(ctx context.Context, id string) (*model.RFQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rfq, ok := s.rfqs[id]
	if !ok {
		return nil, match.ErrNotFound
	}
	return &rfq, nil
}

// GetSuppliersByCategory lists the candidates registered for the category.
func (s *MemoryStore) GetSuppliersByCategory(ctx context.Context, categoryID string) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.User(nil), s.suppliers[categoryID]...), nil
}

// GetSupplierProfile returns the profile or match.ErrNotFound.
func (s *MemoryStore) GetSupplierProfile(ctx context.Context, userID string) (*model.SupplierProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, match.ErrNotFound
	}
	return &p, nil
}

// CreateMatchResult persists the row. A newer row for the same
// (rfq, supplier) pair supersedes the previous one in per-RFQ listings;
// superseded rows stay addressable by id.
func (s *MemoryStore) CreateMatchResult(ctx context.Context, res model.MatchResult) (model.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[res.ID] = res
	latest, ok := s.byRFQ[res.RFQID]
	if !ok {
		latest = map[string]string{}
		s.byRFQ[res.RFQID] = latest
	}
	latest[res.SupplierID] = res.ID
	return res, nil
}

// GetMatchResult returns the row or match.ErrNotFound.
func (s *MemoryStore) GetMatchResult(ctx context.Context, id string) (*model.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, match.ErrNotFound
	}
	return &m, nil
}

// GetMatchResultsByRFQ returns the latest row per supplier, ordered by
// score descending. Supplier id breaks ties deterministically.
func (s *MemoryStore) GetMatchResultsByRFQ(ctx context.Context, rfqID string) ([]model.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := s.byRFQ[rfqID]
	res := make([]model.MatchResult, 0, len(latest))
	for _, id := range latest {
		res = append(res, s.matches[id])
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Score != res[j].Score {
			return res[i].Score > res[j].Score
		}
		return res[i].SupplierID < res[j].SupplierID
	})
	return res, nil
}
