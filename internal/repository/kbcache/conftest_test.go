package kbcache

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// mockKB implements domain.KnowledgeBase and counts calls.
type mockKB struct {
	calls   int
	uris    map[graph.NodeID]string
	types   []graph.NodeID
	cluster graph.NodeID
	err     error
}

func (m *mockKB) URI(_ context.Context, id graph.NodeID) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	u, ok := m.uris[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return u, nil
}

func (m *mockKB) URIIndex(_ context.Context, uri string) (graph.NodeID, error) {
	m.calls++
	for id, u := range m.uris {
		if u == uri {
			return id, nil
		}
	}
	return 0, domain.ErrNotFound
}

func (m *mockKB) Cluster(_ context.Context, _ []graph.NodeID) (graph.NodeID, error) {
	m.calls++
	return m.cluster, m.err
}

func (m *mockKB) AssertedTypes(_ context.Context, _ graph.NodeID, _ float64) ([]graph.NodeID, error) {
	m.calls++
	return m.types, m.err
}

func (m *mockKB) PredictedTypes(_ context.Context, _ graph.NodeID, _ float64) ([]graph.NodeID, error) {
	m.calls++
	return m.types, m.err
}

func newTestCache(t *testing.T, inner *mockKB, maxEntries int) *CachedKnowledgeBase {
	t.Helper()
	return New(inner, maxEntries, nil, zap.NewNop())
}
