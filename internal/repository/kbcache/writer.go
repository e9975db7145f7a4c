package kbcache

import (
	"context"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// Writer is the write side of the knowledge base.
type Writer interface {
	Put(ctx context.Context, resources []domain.Resource, clusters map[graph.NodeID]graph.NodeID) error
	Purge(ctx context.Context) (int, error)
}

// WriteThrough forwards writes and drops every cached lookup after a
// successful change. A nil cache forwards only.
type WriteThrough struct {
	inner Writer
	cache *CachedKnowledgeBase
}

// NewWriteThrough wraps inner.
func NewWriteThrough(inner Writer, cache *CachedKnowledgeBase) *WriteThrough {
	return &WriteThrough{inner: inner, cache: cache}
}

// Put implements Writer.
func (w *WriteThrough) Put(
	ctx context.Context, resources []domain.Resource, clusters map[graph.NodeID]graph.NodeID,
) error {
	if err := w.inner.Put(ctx, resources, clusters); err != nil {
		return err
	}
	w.invalidate()
	return nil
}

// Purge implements Writer. The cache is dropped even on failure since
// some keys may already be gone.
func (w *WriteThrough) Purge(ctx context.Context) (int, error) {
	n, err := w.inner.Purge(ctx)
	w.invalidate()
	return n, err
}

func (w *WriteThrough) invalidate() {
	if w.cache != nil {
		w.cache.Invalidate()
	}
}
