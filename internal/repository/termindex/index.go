package termindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/kailas-cloud/entlink/internal/db"
	"github.com/kailas-cloud/entlink/internal/domain"
)

// store is the consumer interface for the term index (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	IncrByMulti(ctx context.Context, keys []string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// Index is the background term index: document frequencies per term
// plus the number of indexed documents.
type Index struct {
	store   store
	prefix  string
	handles atomic.Int64
}

// New creates a term index over the store.
func New(s store) *Index {
	return &Index{store: s, prefix: domain.KeyPrefix}
}

// WithKeyPrefix overrides the key prefix. Empty keeps the default.
func (ix *Index) WithKeyPrefix(prefix string) *Index {
	if prefix != "" {
		ix.prefix = prefix
	}
	return ix
}

// AddDocument counts one background document. Every distinct term is
// counted once regardless of how often it repeats.
func (ix *Index) AddDocument(ctx context.Context, terms []string) error {
	seen := make(map[string]struct{}, len(terms))
	keys := make([]string, 0, len(terms))
	for _, t := range terms {
		t = Normalize(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		keys = append(keys, ix.dfKey(t))
	}

	if err := ix.store.IncrByMulti(ctx, keys); err != nil {
		return fmt.Errorf("count terms: %w", err)
	}
	if err := ix.store.IncrBy(ctx, ix.totalKey(), 1); err != nil {
		return fmt.Errorf("count document: %w", err)
	}
	return nil
}

// Purge drops every counter under the prefix and returns how many keys
// were removed. Open handles stay valid and read zero afterwards.
func (ix *Index) Purge(ctx context.Context) (int, error) {
	keys, err := ix.store.Scan(ctx, ix.prefix+"idf:*")
	if err != nil {
		return 0, fmt.Errorf("scan term index: %w", err)
	}
	if err := db.DelChunked(ctx, ix.store, keys, db.DefaultDelChunk); err != nil {
		return 0, fmt.Errorf("purge term index: %w", err)
	}
	return len(keys), nil
}

// Open acquires a read handle. The caller must Close it.
func (ix *Index) Open(ctx context.Context) (*Handle, error) {
	if err := ix.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("term index unavailable: %w", err)
	}
	ix.handles.Add(1)
	return &Handle{index: ix}, nil
}

// Stats returns the document count and the number of open handles.
func (ix *Index) Stats(ctx context.Context) (domain.IndexStats, error) {
	total, err := ix.readCounter(ctx, ix.totalKey())
	if err != nil {
		return domain.IndexStats{}, err
	}
	return domain.IndexStats{Documents: total, OpenHandles: ix.handles.Load()}, nil
}

// HealthCheck verifies the backing store is reachable.
func (ix *Index) HealthCheck(ctx context.Context) error {
	if err := ix.store.Ping(ctx); err != nil {
		return fmt.Errorf("term index: %w", err)
	}
	return nil
}

func (ix *Index) readCounter(ctx context.Context, key string) (int64, error) {
	data, err := ix.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

// Normalize maps a term to its index form. Matching is exact apart from
// surrounding whitespace; case is significant.
func Normalize(term string) string {
	return strings.TrimSpace(term)
}

// Valkey key patterns: entlink:idf:df:{term}, entlink:idf:total

func (ix *Index) dfKey(term string) string {
	return ix.prefix + "idf:df:" + term
}

func (ix *Index) totalKey() string {
	return ix.prefix + "idf:total"
}
