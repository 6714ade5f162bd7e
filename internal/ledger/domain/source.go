package ledger

import (
	"context"
	"errors"
)

var (
	// ErrInvalidDataset is returned for an unknown dataset kind.
	ErrInvalidDataset = errors.New("ledger: invalid dataset kind")
	// ErrFetchFailed wraps upstream store failures.
	ErrFetchFailed = errors.New("ledger: fetch failed")
)

// SnapshotSource fetches an immutable raw-record snapshot for one dataset.
// Fetching is the caller-side collaborator of the analytics engine; the
// engine itself performs no I/O. Implementations must not retry: upstream
// failures surface immediately, wrapped in ErrFetchFailed.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context, kind DatasetKind) (*Snapshot, error)
}
