package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	HashStore
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// HMGet returns one value per field; missing fields are reported as ok=false.
	HMGet(ctx context.Context, key string, fields ...string) ([]HashValue, error)
	// Del removes keys; deleting nothing is a no-op.
	Del(ctx context.Context, keys ...string) error
	// Scan returns every key matching pattern.
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// HashValue is one HMGET result.
type HashValue struct {
	Value string
	OK    bool
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	IncrBy(ctx context.Context, key string, val int64) error
	// IncrByMulti increments every key by 1 in a single round-trip.
	IncrByMulti(ctx context.Context, keys []string) error
}
