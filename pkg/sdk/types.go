package entlink

import "time"

// Token is one word of the document token stream.
type Token struct {
	Text   string
	Offset int // byte index in Content
}

// Span is a token range [Start, End).
type Span struct {
	Start int
	End   int
}

// Entity is a mention linked to a knowledge-base subject.
// Set URI with Subject 0 to have the subject_index stage resolve it.
type Entity struct {
	Span
	Subject int64
	URI     string
	Score   float64
	Rated   bool
}

// AmbiguityGroup lists the candidate subjects competing for one literal.
type AmbiguityGroup struct {
	Literal    string
	Candidates []int64
}

// Edge is a typed relation between two knowledge-base nodes.
type Edge struct {
	From      int64
	Predicate int64
	To        int64
}

// Document is the input of Process and Evaluate.
type Document struct {
	ID        string
	Content   string
	Tokens    []Token
	Sentences []Span
	Groups    []AmbiguityGroup
	Entities  []Entity
	// Nodes and Edges form the document graph used by the resolvers and the hub rating.
	Nodes []int64
	Edges []Edge
}

// Rating is a rated subject.
type Rating struct {
	Subject int64
	Score   float64
}

// StageResult is the outcome of one stage on one document.
type StageResult struct {
	Step    int
	Name    string
	Elapsed time.Duration
	Err     error
}

// Status is the outcome of one document in a batch.
type Status string

// Status constants.
const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// Result is the processed form of one document.
type Result struct {
	ID     string
	Status Status
	// Err is set when the document never reached the pipeline.
	Err      error
	Stages   []StageResult
	Entities []Entity
	Accepted []int64
	Rejected []int64
	// Ratings are ordered best first.
	Ratings []Rating
}

// Report is the outcome of Evaluate.
type Report struct {
	Stage   string
	Step    int
	Elapsed time.Duration
	Result  string
}

// Resource is a knowledge-base entry for LoadKnowledge.
type Resource struct {
	ID        int64
	URI       string
	Types     map[int64]float64
	Predicted map[int64]float64
}

// TermDocument is a background document for the IDF term index.
type TermDocument struct {
	ID    string
	Terms []string
}

// BatchResult is the outcome of one item in a batch operation.
type BatchResult struct {
	ID  string
	OK  bool
	Err error
}

// IndexStats summarizes the term index.
type IndexStats struct {
	Documents   int64
	OpenHandles int64
}
