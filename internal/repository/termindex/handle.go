package termindex

import (
	"context"
	"sync/atomic"

	"github.com/kailas-cloud/entlink/internal/domain"
)

// Handle is a scoped read view of the index. Safe for concurrent use.
// After Close every lookup returns domain.ErrIndexClosed.
type Handle struct {
	index  *Index
	closed atomic.Bool
}

// DocumentFrequency returns the number of background documents containing term.
func (h *Handle) DocumentFrequency(ctx context.Context, term string) (int64, error) {
	if h.closed.Load() {
		return 0, domain.ErrIndexClosed
	}
	return h.index.readCounter(ctx, h.index.dfKey(Normalize(term)))
}

// TotalDocuments returns the number of indexed background documents.
func (h *Handle) TotalDocuments(ctx context.Context) (int64, error) {
	if h.closed.Load() {
		return 0, domain.ErrIndexClosed
	}
	return h.index.readCounter(ctx, h.index.totalKey())
}

// Close releases the handle. Closing twice is a no-op.
func (h *Handle) Close() error {
	if h.closed.CompareAndSwap(false, true) {
		h.index.handles.Add(-1)
	}
	return nil
}
