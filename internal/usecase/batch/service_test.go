package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/entlink/internal/domain"
	dombatch "github.com/kailas-cloud/entlink/internal/domain/batch"
	"github.com/kailas-cloud/entlink/internal/domain/document"
)

// --- Mocks ---

type mockRunner struct {
	stages   int
	failStep int // -1: never fail
	calls    atomic.Int32

	mu     sync.Mutex
	ranges [][2]int
}

func (m *mockRunner) Len() int { return m.stages }

func (m *mockRunner) RunRange(ctx context.Context, _ *document.Document, from, to int) {
	m.calls.Add(1)
	m.mu.Lock()
	m.ranges = append(m.ranges, [2]int{from, to})
	m.mu.Unlock()
	for step := from; step < to; step++ {
		var err error
		if step == m.failStep {
			err = errors.New("boom")
		}
		domain.TraceFromContext(ctx).Add(domain.StageRecord{Step: step, Err: err})
	}
}

type mockIndexer struct {
	err   error
	terms [][]string
}

func (m *mockIndexer) AddDocument(_ context.Context, terms []string) error {
	m.terms = append(m.terms, terms)
	return m.err
}

func testDocs(n int) []*document.Document {
	docs := make([]*document.Document, n)
	for i := range docs {
		docs[i] = document.New(string(rune('a'+i)), "text", []document.Token{{Text: "text"}})
	}
	return docs
}

// --- Process ---

func TestProcess_AllOK(t *testing.T) {
	r := &mockRunner{stages: 3, failStep: -1}
	svc := New(r, nil).WithWorkers(2)

	results := svc.Process(context.Background(), testDocs(5), 0, -1)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Status() != dombatch.StatusOK {
			t.Errorf("item %d: status %q", i, res.Status())
		}
		if len(res.Stages()) != 3 {
			t.Errorf("item %d: expected 3 stage records, got %d", i, len(res.Stages()))
		}
	}
	if results[0].ID() != "a" || results[4].ID() != "e" {
		t.Errorf("results out of order: %s..%s", results[0].ID(), results[4].ID())
	}
	if r.calls.Load() != 5 {
		t.Errorf("expected 5 runs, got %d", r.calls.Load())
	}
}

func TestProcess_StageFailureIsPartial(t *testing.T) {
	r := &mockRunner{stages: 4, failStep: 1}
	svc := New(r, nil)

	results := svc.Process(context.Background(), testDocs(1), 0, -1)
	if results[0].Status() != dombatch.StatusPartial {
		t.Fatalf("expected partial, got %q", results[0].Status())
	}
	if len(results[0].Stages()) != 4 {
		t.Errorf("expected all 4 stages recorded, got %d", len(results[0].Stages()))
	}
}

func TestProcess_Range(t *testing.T) {
	r := &mockRunner{stages: 4, failStep: -1}
	svc := New(r, nil)

	svc.Process(context.Background(), testDocs(1), 2, 3)
	if len(r.ranges) != 1 || r.ranges[0] != [2]int{2, 3} {
		t.Errorf("unexpected ranges: %v", r.ranges)
	}
}

func TestProcess_ExceedsMaxBatchSize(t *testing.T) {
	r := &mockRunner{stages: 1, failStep: -1}
	svc := New(r, nil).WithMaxBatchSize(2)

	results := svc.Process(context.Background(), testDocs(3), 0, -1)
	for _, res := range results {
		if !errors.Is(res.Err(), domain.ErrInvalidDocument) {
			t.Errorf("expected ErrInvalidDocument, got %v", res.Err())
		}
	}
	if r.calls.Load() != 0 {
		t.Error("runner must not be called")
	}
}

func TestProcess_InvalidDocument(t *testing.T) {
	r := &mockRunner{stages: 1, failStep: -1}
	svc := New(r, nil)
	docs := testDocs(2)
	docs[1].Tokens = []document.Token{{Text: "far", Offset: 100}}

	results := svc.Process(context.Background(), append(docs, nil), 0, -1)
	if results[0].Status() != dombatch.StatusOK {
		t.Errorf("item 0: status %q", results[0].Status())
	}
	if !errors.Is(results[1].Err(), domain.ErrInvalidDocument) {
		t.Errorf("item 1: expected ErrInvalidDocument, got %v", results[1].Err())
	}
	if results[2].ID() != "#2" || !errors.Is(results[2].Err(), domain.ErrInvalidDocument) {
		t.Errorf("item 2: unexpected %s %v", results[2].ID(), results[2].Err())
	}
}

func TestProcess_CanceledContext(t *testing.T) {
	r := &mockRunner{stages: 1, failStep: -1}
	svc := New(r, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := svc.Process(ctx, testDocs(2), 0, -1)
	for _, res := range results {
		if !errors.Is(res.Err(), context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", res.Err())
		}
	}
}

// --- Index ---

func TestIndex(t *testing.T) {
	idx := &mockIndexer{}
	svc := New(&mockRunner{}, idx)

	results := svc.Index(context.Background(), []TermDocument{
		{ID: "bg1", Terms: []string{"a", "b"}},
		{ID: "bg2", Terms: []string{"b"}},
	})
	for _, res := range results {
		if res.Status() != dombatch.StatusOK {
			t.Errorf("%s: status %q", res.ID(), res.Status())
		}
	}
	if len(idx.terms) != 2 {
		t.Errorf("expected 2 indexed documents, got %d", len(idx.terms))
	}
}

func TestIndex_Error(t *testing.T) {
	svc := New(&mockRunner{}, &mockIndexer{err: errors.New("down")})

	results := svc.Index(context.Background(), []TermDocument{{ID: "bg1"}})
	if results[0].Status() != dombatch.StatusError {
		t.Errorf("expected error status, got %q", results[0].Status())
	}
}

func TestIndex_NotConfigured(t *testing.T) {
	svc := New(&mockRunner{}, nil)

	results := svc.Index(context.Background(), []TermDocument{{ID: "bg1"}})
	if !errors.Is(results[0].Err(), domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", results[0].Err())
	}
}
