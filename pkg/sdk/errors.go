package entlink

import "github.com/kailas-cloud/entlink/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrInvalidDocument   = domain.ErrInvalidDocument
	ErrStageOutOfRange   = domain.ErrStageOutOfRange
	ErrUnknownStrategy   = domain.ErrUnknownStrategy
	ErrNotComparable     = domain.ErrNotComparable
	ErrIndexClosed       = domain.ErrIndexClosed
	ErrEmptyIndex        = domain.ErrEmptyIndex
	ErrAlreadyConfigured = domain.ErrAlreadyConfigured
)

// StageError reports the stage that failed. Use errors.As() to extract it.
type StageError = domain.StageError
