package memory

import (
	"context"
	"sync"

	ledger "ledger-insight/internal/ledger/domain"
)

// SnapshotSource is an in-memory ledger source for tests and local runs.
type SnapshotSource struct {
	mu         sync.RWMutex
	generation uint64
	data       map[ledger.DatasetKind]*ledger.Snapshot
}

// NewSnapshotSource constructs an empty source.
func NewSnapshotSource() *SnapshotSource {
	return &SnapshotSource{data: make(map[ledger.DatasetKind]*ledger.Snapshot)}
}

// Replace swaps the records for a dataset and bumps the generation.
func (s *SnapshotSource) Replace(kind ledger.DatasetKind, bills []ledger.RawBill, payments []ledger.RawPayment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.data[kind] = &ledger.Snapshot{
		Kind:       kind,
		Generation: s.generation,
		Bills:      append([]ledger.RawBill(nil), bills...),
		Payments:   append([]ledger.RawPayment(nil), payments...),
	}
}

// FetchSnapshot returns a copy of the current records for the dataset.
func (s *SnapshotSource) FetchSnapshot(ctx context.Context, kind ledger.DatasetKind) (*ledger.Snapshot, error) {
	_ = ctx
	if !kind.IsValid() {
		return nil, ledger.ErrInvalidDataset
	}

	s.mu.RLock()
	current := s.data[kind]
	s.mu.RUnlock()
	if current == nil {
		return &ledger.Snapshot{Kind: kind}, nil
	}
	return &ledger.Snapshot{
		Kind:       kind,
		Generation: current.Generation,
		Bills:      append([]ledger.RawBill(nil), current.Bills...),
		Payments:   append([]ledger.RawPayment(nil), current.Payments...),
	}, nil
}
