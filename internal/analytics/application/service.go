package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	ledger "ledger-insight/internal/ledger/domain"
	"ledger-insight/internal/observability/metrics"
)

// CacheObserver receives cache hit/miss notifications. Nil-safe no-op
// implementations are acceptable.
type CacheObserver interface {
	CacheHit(kind ledger.DatasetKind)
	CacheMiss(kind ledger.DatasetKind)
}

// Service fetches snapshots, scopes them, runs the engine and memoizes
// results. Memoization is keyed by snapshot fingerprint, branch scope and
// reference-date day, so a changed dataset can never serve a stale
// result: a new snapshot fingerprints differently and misses the cache.
type Service struct {
	source   ledger.SnapshotSource
	engine   *Engine
	observer CacheObserver

	mu          sync.Mutex
	generations map[ledger.DatasetKind]uint64
	cache       map[string]*Result
}

// NewService constructs an analytics service.
func NewService(source ledger.SnapshotSource, engine *Engine, observer CacheObserver) *Service {
	return &Service{
		source:      source,
		engine:      engine,
		observer:    observer,
		generations: make(map[ledger.DatasetKind]uint64),
		cache:       make(map[string]*Result),
	}
}

// Invalidate bumps the generation for a dataset and drops its cached
// results. Call when the underlying ledger snapshot is known to have
// changed.
func (s *Service) Invalidate(kind ledger.DatasetKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[kind]++
	for key, cached := range s.cache {
		if cached.Kind == kind {
			delete(s.cache, key)
		}
	}
}

// Analytics returns the full analytics result for a dataset, scoped to
// branchID when non-empty. The reference date is normalized to its UTC
// day for cache keying so repeated dashboard refreshes within a day reuse
// one computation.
func (s *Service) Analytics(ctx context.Context, kind ledger.DatasetKind, branchID string, referenceDate time.Time) (*Result, error) {
	if !kind.IsValid() {
		return nil, ledger.ErrInvalidDataset
	}
	if referenceDate.IsZero() {
		return nil, ErrZeroReferenceDate
	}

	s.mu.Lock()
	generation := s.generations[kind]
	s.mu.Unlock()

	snapshot, err := s.source.FetchSnapshot(ctx, kind)
	if err != nil {
		return nil, err
	}
	scoped := snapshot.FilterBranch(branchID)

	key := cacheKey(scoped.Fingerprint(), branchID, referenceDate)
	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		if s.observer != nil {
			s.observer.CacheHit(kind)
		}
		return cached, nil
	}
	s.mu.Unlock()
	if s.observer != nil {
		s.observer.CacheMiss(kind)
	}

	start := time.Now()
	result, err := s.engine.Compute(ctx, scoped, referenceDate)
	metrics.ObservePipeline(string(kind), start, err)
	if err != nil {
		return nil, err
	}
	metrics.RecordParseFailures(result.Diagnostics.CurrencyParseFailures, result.Diagnostics.DateParseFailures)
	metrics.RecordDroppedPayments(result.Diagnostics.DroppedPayments)

	s.mu.Lock()
	defer s.mu.Unlock()
	// A superseding Invalidate may have landed while computing; the result
	// is still correct for the caller but must not be cached.
	if s.generations[kind] == generation {
		s.cache[key] = result
	}
	return result, nil
}

func cacheKey(fingerprint, branchID string, referenceDate time.Time) string {
	return fmt.Sprintf("%s|%s|%s", fingerprint, branchID, referenceDate.UTC().Format("2006-01-02"))
}
