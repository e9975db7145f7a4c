package kbcache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// DefaultMaxEntries bounds the cache when no size is configured.
const DefaultMaxEntries = 100_000

// CachedKnowledgeBase memoizes knowledge-base lookups in process.
// Failed lookups are never cached.
type CachedKnowledgeBase struct {
	inner      domain.KnowledgeBase
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	maxEntries int

	mu      sync.RWMutex
	entries map[string]any
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.KnowledgeBase,
	maxEntries int,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedKnowledgeBase {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &CachedKnowledgeBase{
		inner:      inner,
		cacheTotal: cacheTotal,
		logger:     logger,
		maxEntries: maxEntries,
		entries:    make(map[string]any),
	}
}

// URI implements domain.KnowledgeBase.
func (c *CachedKnowledgeBase) URI(ctx context.Context, id graph.NodeID) (string, error) {
	return cached(c, "uri:"+strconv.FormatInt(int64(id), 10), func() (string, error) {
		return c.inner.URI(ctx, id)
	})
}

// URIIndex implements domain.KnowledgeBase.
func (c *CachedKnowledgeBase) URIIndex(ctx context.Context, uri string) (graph.NodeID, error) {
	return cached(c, "idx:"+uri, func() (graph.NodeID, error) {
		return c.inner.URIIndex(ctx, uri)
	})
}

// Cluster implements domain.KnowledgeBase.
func (c *CachedKnowledgeBase) Cluster(ctx context.Context, typeIDs []graph.NodeID) (graph.NodeID, error) {
	return cached(c, "cluster:"+joinIDs(typeIDs), func() (graph.NodeID, error) {
		return c.inner.Cluster(ctx, typeIDs)
	})
}

// AssertedTypes implements domain.KnowledgeBase.
func (c *CachedKnowledgeBase) AssertedTypes(
	ctx context.Context, id graph.NodeID, minConfidence float64,
) ([]graph.NodeID, error) {
	return cached(c, typesKey("types", id, minConfidence), func() ([]graph.NodeID, error) {
		return c.inner.AssertedTypes(ctx, id, minConfidence)
	})
}

// PredictedTypes implements domain.KnowledgeBase.
func (c *CachedKnowledgeBase) PredictedTypes(
	ctx context.Context, id graph.NodeID, minConfidence float64,
) ([]graph.NodeID, error) {
	return cached(c, typesKey("predicted", id, minConfidence), func() ([]graph.NodeID, error) {
		return c.inner.PredictedTypes(ctx, id, minConfidence)
	})
}

// Invalidate drops every cached entry. Call after the knowledge base is reloaded.
func (c *CachedKnowledgeBase) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]any)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *CachedKnowledgeBase) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cached[T any](c *CachedKnowledgeBase, key string, load func() (T, error)) (T, error) {
	if v, ok := c.get(key); ok {
		if typed, ok := v.(T); ok {
			c.incCache("hit")
			return typed, nil
		}
		c.logger.Warn("Unexpected cached value type", zap.String("key", key))
	}

	c.incCache("miss")

	v, err := load()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("knowledge base %s: %w", key, err)
	}
	c.put(key, v)
	return v, nil
}

func (c *CachedKnowledgeBase) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *CachedKnowledgeBase) put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxEntries {
		c.logger.Debug("Knowledge base cache full, resetting", zap.Int("entries", len(c.entries)))
		c.entries = make(map[string]any)
	}
	c.entries[key] = v
}

func (c *CachedKnowledgeBase) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func typesKey(kind string, id graph.NodeID, minConfidence float64) string {
	return kind + ":" + strconv.FormatInt(int64(id), 10) + "@" + strconv.FormatFloat(minConfidence, 'g', -1, 64)
}

func joinIDs(ids []graph.NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}
