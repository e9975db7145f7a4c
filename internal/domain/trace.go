package domain

import (
	"context"
	"sync"
	"time"
)

type traceKey struct{}

// StageRecord is the observable outcome of one stage execution.
type StageRecord struct {
	Step    int
	Name    string
	Elapsed time.Duration
	Err     error
}

// Trace collects stage records for a single request.
// The handler puts a pointer into the context before running the pipeline;
// the pipeline appends after each stage; the handler reads it for the response.
type Trace struct {
	mu      sync.Mutex
	records []StageRecord
}

// NewContextWithTrace returns a context carrying an empty trace.
func NewContextWithTrace(ctx context.Context) (context.Context, *Trace) {
	t := &Trace{}
	return context.WithValue(ctx, traceKey{}, t), t
}

// TraceFromContext extracts the trace from context. Returns nil if not set.
func TraceFromContext(ctx context.Context) *Trace {
	t, _ := ctx.Value(traceKey{}).(*Trace)
	return t
}

// Add appends a record. Safe on a nil trace.
func (t *Trace) Add(r StageRecord) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.records = append(t.records, r)
	t.mu.Unlock()
}

// Records returns a copy of the collected records.
func (t *Trace) Records() []StageRecord {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StageRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Failed counts records carrying an error.
func (t *Trace) Failed() int {
	n := 0
	for _, r := range t.Records() {
		if r.Err != nil {
			n++
		}
	}
	return n
}
