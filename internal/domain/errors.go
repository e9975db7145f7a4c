package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing knowledge-base resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidDocument signals a structurally broken document.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrAlreadyConfigured signals a second Configure on a pipeline.
	ErrAlreadyConfigured = errors.New("pipeline already configured")
	// ErrStageOutOfRange signals a step index outside the configured stages.
	ErrStageOutOfRange = errors.New("stage out of range")
	// ErrUnknownStrategy signals an unknown resolver or rating name.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrNotComparable signals a stage without a ground-truth comparison.
	ErrNotComparable = errors.New("stage does not support comparison")
	// ErrIndexClosed signals use of a released term index handle.
	ErrIndexClosed = errors.New("term index closed")
	// ErrEmptyIndex signals a term index with no documents.
	ErrEmptyIndex = errors.New("term index is empty")
	// ErrNoTypes signals a node without type assertions.
	ErrNoTypes = errors.New("no types")
)

// StageError wraps a failure raised by one pipeline stage.
type StageError struct {
	Step int
	Name string
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s): %v", e.Step, e.Name, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
