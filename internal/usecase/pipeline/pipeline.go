package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
)

// Pipeline holds an ordered, fixed list of stages and runs one stage per Execute call.
// It keeps no iteration state: the caller owns the step counter, so a run can
// stop early, resume, or re-run a suffix:
//
//	for step := 0; p.HasNext(step); step = p.Execute(ctx, step, doc) {
//	}
//
// After Configure the pipeline is read-only and may be shared by concurrent
// drivers, each with its own Document.
type Pipeline struct {
	mu       sync.RWMutex
	stages   []Transducer
	names    []string
	set      bool
	kb       domain.KnowledgeBase
	observer Observer
}

// New creates an unconfigured pipeline. observer may be nil.
func New(kb domain.KnowledgeBase, observer Observer) *Pipeline {
	if observer == nil {
		observer = Observers{}
	}
	return &Pipeline{kb: kb, observer: observer}
}

// Configure installs the stages. It may be called only once.
func (p *Pipeline) Configure(stages ...Transducer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.set {
		return domain.ErrAlreadyConfigured
	}
	for i, s := range stages {
		if s == nil {
			return fmt.Errorf("stage %d is nil", i)
		}
	}
	p.stages = append([]Transducer(nil), stages...)
	p.names = make([]string, len(stages))
	for i, s := range p.stages {
		p.names[i] = stageName(s)
	}
	p.set = true
	return nil
}

// Len returns the number of configured stages.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.stages)
}

// HasNext reports whether step indexes a configured stage.
func (p *Pipeline) HasNext(step int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return step >= 0 && step < len(p.stages)
}

// Stage returns the stage at step and its name.
func (p *Pipeline) Stage(step int) (Transducer, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if step < 0 || step >= len(p.stages) {
		return nil, "", fmt.Errorf("step %d of %d: %w", step, len(p.stages), domain.ErrStageOutOfRange)
	}
	return p.stages[step], p.names[step], nil
}

// Names returns the stage names in order.
func (p *Pipeline) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.names...)
}

// KnowledgeBase returns the knowledge base handed to every stage.
func (p *Pipeline) KnowledgeBase() domain.KnowledgeBase { return p.kb }

// Execute runs the stage at step against doc and returns step+1.
// A failing or panicking stage is reported to the observer and the run goes on;
// doc keeps whatever partial state the stage reached.
func (p *Pipeline) Execute(ctx context.Context, step int, doc *document.Document) int {
	stage, name, err := p.Stage(step)
	if err != nil {
		p.observer.StageFinished(step, "", 0, err)
		return step + 1
	}

	p.observer.StageStarted(step, name)
	start := time.Now()

	err = runStage(ctx, stage, doc, p.kb)

	elapsed := time.Since(start)
	if err != nil {
		err = &domain.StageError{Step: step, Name: name, Err: err}
	}
	p.observer.StageFinished(step, name, elapsed, err)
	domain.TraceFromContext(ctx).Add(domain.StageRecord{
		Step: step, Name: name, Elapsed: elapsed, Err: err,
	})
	return step + 1
}

// Run drives every stage in order.
func (p *Pipeline) Run(ctx context.Context, doc *document.Document) {
	p.RunRange(ctx, doc, 0, p.Len())
}

// RunRange drives stages [from, to). Bounds are clamped to the configured list.
func (p *Pipeline) RunRange(ctx context.Context, doc *document.Document, from, to int) {
	if from < 0 {
		from = 0
	}
	if n := p.Len(); to > n {
		to = n
	}
	for step := from; step < to && p.HasNext(step); step = p.Execute(ctx, step, doc) {
	}
}

func runStage(
	ctx context.Context, stage Transducer, doc *document.Document, kb domain.KnowledgeBase,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return stage.Transduce(ctx, doc, kb)
}

func stageName(s Transducer) string {
	if n, ok := s.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
