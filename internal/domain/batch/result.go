package batch

import "github.com/kailas-cloud/entlink/internal/domain"

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK      ItemStatus = "ok"
	StatusPartial ItemStatus = "partial" // pipeline ran, some stages failed
	StatusError   ItemStatus = "error"   // item never reached the pipeline
)

// Result is what a batch call reports for one item: the storage outcome for
// index writes, or the stage records of a pipeline run.
type Result struct {
	id     string
	status ItemStatus
	err    error
	stages []domain.StageRecord
}

func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// NewProcessed wraps the records of a completed pipeline run. Any failed
// stage makes the item partial.
func NewProcessed(id string, stages []domain.StageRecord) Result {
	r := Result{id: id, status: StatusOK, stages: stages}
	if len(r.FailedStages()) > 0 {
		r.status = StatusPartial
	}
	return r
}

func (r Result) ID() string                   { return r.id }
func (r Result) Status() ItemStatus           { return r.status }
func (r Result) Err() error                   { return r.err }
func (r Result) Stages() []domain.StageRecord { return r.stages }

// FailedStages returns the records whose stage returned an error.
func (r Result) FailedStages() []domain.StageRecord {
	var failed []domain.StageRecord
	for _, s := range r.stages {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// Summary counts batch items by status.
type Summary struct {
	OK      int
	Partial int
	Failed  int
}

// Summarize tallies results by status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.status {
		case StatusOK:
			s.OK++
		case StatusPartial:
			s.Partial++
		default:
			s.Failed++
		}
	}
	return s
}
