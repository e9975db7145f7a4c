package evaluate

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/usecase/pipeline"
)

type plainStage struct{ calls int }

func (s *plainStage) Transduce(context.Context, *document.Document, domain.KnowledgeBase) error {
	s.calls++
	return nil
}

type comparableStage struct {
	plainStage
	err       error
	cmpErr    error
	lastTruth string
	compared  int
}

func (s *comparableStage) Name() string { return "cmp" }

func (s *comparableStage) Transduce(ctx context.Context, doc *document.Document, kb domain.KnowledgeBase) error {
	_ = s.plainStage.Transduce(ctx, doc, kb)
	return s.err
}

func (s *comparableStage) Compare(_ context.Context, _ *document.Document, _ domain.KnowledgeBase, gt string) (string, error) {
	s.compared++
	s.lastTruth = gt
	return "score=1", s.cmpErr
}

func newPipeline(t *testing.T, stages ...pipeline.Transducer) *pipeline.Pipeline {
	t.Helper()
	p := pipeline.New(nil, nil)
	if err := p.Configure(stages...); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return p
}

func TestEvaluate_RunsOnlyTheStage(t *testing.T) {
	first := &plainStage{}
	cmp := &comparableStage{}
	ev := New(newPipeline(t, first, cmp), nil)

	report, err := ev.Evaluate(context.Background(), 1, document.New("d", "", nil), "truth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.calls != 0 {
		t.Errorf("stage 0 must not run, ran %d times", first.calls)
	}
	if cmp.calls != 1 || cmp.compared != 1 || cmp.lastTruth != "truth" {
		t.Errorf("unexpected stage state: %+v", cmp)
	}
	if report.Stage != "cmp" || report.Step != 1 || report.Result != "score=1" {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestEvaluate_NotComparable(t *testing.T) {
	stage := &plainStage{}
	ev := New(newPipeline(t, stage), nil)

	_, err := ev.Evaluate(context.Background(), 0, document.New("d", "", nil), "")
	if !errors.Is(err, domain.ErrNotComparable) {
		t.Fatalf("expected ErrNotComparable, got %v", err)
	}
	if stage.calls != 0 {
		t.Error("stage must not run")
	}
}

func TestEvaluate_OutOfRange(t *testing.T) {
	ev := New(newPipeline(t), nil)

	_, err := ev.Evaluate(context.Background(), 3, document.New("d", "", nil), "")
	if !errors.Is(err, domain.ErrStageOutOfRange) {
		t.Fatalf("expected ErrStageOutOfRange, got %v", err)
	}
}

func TestEvaluate_StageFailure(t *testing.T) {
	cmp := &comparableStage{err: errors.New("boom")}
	ev := New(newPipeline(t, cmp), nil)

	_, err := ev.Evaluate(context.Background(), 0, document.New("d", "", nil), "")
	var stageErr *domain.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if cmp.compared != 0 {
		t.Error("compare must not run after a failed stage")
	}
}

func TestEvaluate_CompareError(t *testing.T) {
	cmp := &comparableStage{cmpErr: errors.New("no kb")}
	ev := New(newPipeline(t, cmp), nil)

	if _, err := ev.Evaluate(context.Background(), 0, document.New("d", "", nil), ""); err == nil {
		t.Fatal("expected error")
	}
}
