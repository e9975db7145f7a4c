package knowledgebase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/entlink/internal/db"
	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// store is the consumer interface for the knowledge base (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HMGet(ctx context.Context, key string, fields ...string) ([]db.HashValue, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// Repo implements domain.KnowledgeBase on top of a hash/KV store.
type Repo struct {
	store  store
	prefix string
}

// New creates a knowledge-base repository.
func New(s store) *Repo {
	return &Repo{store: s, prefix: domain.KeyPrefix}
}

// WithKeyPrefix overrides the key prefix. Empty keeps the default.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

// URI returns the resource URI or literal stored for id.
func (r *Repo) URI(ctx context.Context, id graph.NodeID) (string, error) {
	data, err := r.store.Get(ctx, r.uriKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", fmt.Errorf("uri of %d: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get uri %d: %w", id, err)
	}
	return string(data), nil
}

// URIIndex returns the id assigned to uri.
func (r *Repo) URIIndex(ctx context.Context, uri string) (graph.NodeID, error) {
	data, err := r.store.Get(ctx, r.indexKey(uri))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, fmt.Errorf("index of %q: %w", uri, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("get index %q: %w", uri, err)
	}
	id, err := parseNodeID(string(data))
	if err != nil {
		return 0, fmt.Errorf("index of %q: %w", uri, err)
	}
	return id, nil
}

// AssertedTypes returns the asserted types of id whose confidence is at least minConfidence.
func (r *Repo) AssertedTypes(ctx context.Context, id graph.NodeID, minConfidence float64) ([]graph.NodeID, error) {
	return r.types(ctx, r.typesKey(id), minConfidence)
}

// PredictedTypes returns the predicted types of id whose confidence is at least minConfidence.
func (r *Repo) PredictedTypes(ctx context.Context, id graph.NodeID, minConfidence float64) ([]graph.NodeID, error) {
	return r.types(ctx, r.predictedKey(id), minConfidence)
}

// Cluster maps every type to its cluster and returns the most frequent one.
// Ties go to the smallest cluster id. A type without a cluster entry is its own cluster.
func (r *Repo) Cluster(ctx context.Context, typeIDs []graph.NodeID) (graph.NodeID, error) {
	if len(typeIDs) == 0 {
		return 0, domain.ErrNoTypes
	}

	fields := make([]string, len(typeIDs))
	for i, t := range typeIDs {
		fields[i] = formatNodeID(t)
	}
	vals, err := r.store.HMGet(ctx, r.clusterKey(), fields...)
	if err != nil {
		return 0, fmt.Errorf("hmget clusters: %w", err)
	}

	counts := make(map[graph.NodeID]int, len(typeIDs))
	for i, t := range typeIDs {
		cluster := t
		if i < len(vals) && vals[i].OK {
			cluster, err = parseNodeID(vals[i].Value)
			if err != nil {
				return 0, fmt.Errorf("cluster of type %d: %w", t, err)
			}
		}
		counts[cluster]++
	}

	var best graph.NodeID
	bestCount := 0
	for cluster, n := range counts {
		if n > bestCount || (n == bestCount && cluster < best) {
			best, bestCount = cluster, n
		}
	}
	return best, nil
}

// HealthCheck verifies the backing store is reachable.
func (r *Repo) HealthCheck(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("knowledge base: %w", err)
	}
	return nil
}

func (r *Repo) types(ctx context.Context, key string, minConfidence float64) ([]graph.NodeID, error) {
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}

	out := make([]graph.NodeID, 0, len(m))
	for field, value := range m {
		id, err := parseNodeID(field)
		if err != nil {
			return nil, fmt.Errorf("type in %s: %w", key, err)
		}
		conf, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("confidence of %d in %s: %w", id, key, err)
		}
		if conf >= minConfidence {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Valkey key patterns: entlink:kb:uri:{id}, entlink:kb:idx:{uri},
// entlink:kb:types:{id}, entlink:kb:predicted:{id}, entlink:kb:cluster

func (r *Repo) uriKey(id graph.NodeID) string {
	return fmt.Sprintf("%skb:uri:%d", r.prefix, id)
}

func (r *Repo) indexKey(uri string) string {
	return fmt.Sprintf("%skb:idx:%s", r.prefix, uri)
}

func (r *Repo) typesKey(id graph.NodeID) string {
	return fmt.Sprintf("%skb:types:%d", r.prefix, id)
}

func (r *Repo) predictedKey(id graph.NodeID) string {
	return fmt.Sprintf("%skb:predicted:%d", r.prefix, id)
}

func (r *Repo) clusterKey() string {
	return r.prefix + "kb:cluster"
}
