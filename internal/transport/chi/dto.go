package chi

import (
	"errors"

	"github.com/kailas-cloud/entlink/internal/domain"
	dombatch "github.com/kailas-cloud/entlink/internal/domain/batch"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeNotFound         ErrorCode = "not_found"
	CodeStageOutOfRange  ErrorCode = "stage_out_of_range"
	CodeNotComparable    ErrorCode = "not_comparable"
	CodeStageFailed      ErrorCode = "stage_failed"
	CodeIndexUnavailable ErrorCode = "index_unavailable"
	CodeNotImplemented   ErrorCode = "not_implemented"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Edge is one graph relation in a request document.
type Edge struct {
	From      graph.NodeID `json:"from"`
	Predicate graph.NodeID `json:"predicate"`
	To        graph.NodeID `json:"to"`
}

// Document is the wire form of a document entering the pipeline.
type Document struct {
	ID        string                                      `json:"id"`
	Content   string                                      `json:"content"`
	Tokens    []document.Token                            `json:"tokens"`
	Sentences []document.TokenSequence[document.Sentence] `json:"sentences,omitempty"`
	Groups    []document.AmbiguityGroup                   `json:"groups,omitempty"`
	Entities  []document.Mention                          `json:"entities,omitempty"`
	Nodes     []graph.NodeID                              `json:"nodes,omitempty"`
	Edges     []Edge                                      `json:"edges,omitempty"`
}

func (d Document) toDomain() *document.Document {
	doc := document.New(d.ID, d.Content, d.Tokens)
	doc.Sentences = d.Sentences
	doc.Groups = d.Groups
	doc.Entities = d.Entities
	for _, n := range d.Nodes {
		doc.Graph.AddNode(n)
	}
	for _, e := range d.Edges {
		doc.Graph.AddEdge(e.From, e.Predicate, e.To)
	}
	return doc
}

// Rating is one rated subject, listed best first.
type Rating struct {
	Subject graph.NodeID `json:"subject"`
	Score   float64      `json:"score"`
}

// DocumentResult is the annotated document after processing.
type DocumentResult struct {
	ID         string                    `json:"id"`
	Entities   []document.Mention        `json:"entities"`
	Resolution map[string][]graph.NodeID `json:"resolution"`
	Ratings    []Rating                  `json:"ratings"`
}

func documentToDTO(doc *document.Document) DocumentResult {
	out := DocumentResult{
		ID:         doc.ID,
		Entities:   doc.Entities,
		Resolution: doc.Resolution.Labels(),
		Ratings:    make([]Rating, 0, len(doc.Ratings)),
	}
	if out.Entities == nil {
		out.Entities = []document.Mention{}
	}
	for _, id := range doc.Ratings.Ranked() {
		out.Ratings = append(out.Ratings, Rating{Subject: id, Score: doc.Ratings[id]})
	}
	return out
}

// Stage is the outcome of one stage run on one document.
type Stage struct {
	Step      int     `json:"step"`
	Name      string  `json:"name"`
	ElapsedMs float64 `json:"elapsed_ms"`
	Error     string  `json:"error,omitempty"`
}

func stagesToDTO(records []domain.StageRecord) []Stage {
	out := make([]Stage, len(records))
	for i, rec := range records {
		out[i] = Stage{
			Step:      rec.Step,
			Name:      rec.Name,
			ElapsedMs: float64(rec.Elapsed.Microseconds()) / 1000,
		}
		if rec.Err != nil {
			out[i].Error = safeDomainMessage(rec.Err)
		}
	}
	return out
}

// BatchItem is the per-item result of a batch call.
type BatchItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
	Stages []Stage        `json:"stages,omitempty"`
}

func batchResultToDTO(r dombatch.Result) BatchItem {
	item := BatchItem{
		ID:     r.ID(),
		Status: string(r.Status()),
	}
	if r.Err() != nil {
		item.Error = &ErrorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	if len(r.Stages()) > 0 {
		item.Stages = stagesToDTO(r.Stages())
	}
	return item
}

func batchErrorCode(err error) ErrorCode {
	for _, c := range []struct {
		sentinel error
		code     ErrorCode
	}{
		{domain.ErrInvalidDocument, CodeValidationFailed},
		{domain.ErrNotFound, CodeNotFound},
		{domain.ErrIndexClosed, CodeIndexUnavailable},
	} {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return CodeInternalError
}

// ProcessRequest is the body of POST /documents/process.
type ProcessRequest struct {
	Documents []Document `json:"documents"`
}

// ProcessItem is one processed document.
type ProcessItem struct {
	BatchItem
	Document *DocumentResult `json:"document,omitempty"`
}

// ProcessResponse is the body returned by POST /documents/process.
type ProcessResponse struct {
	Items     []ProcessItem `json:"items"`
	Succeeded int           `json:"succeeded"`
	Partial   int           `json:"partial"`
	Failed    int           `json:"failed"`
}

// EvaluateRequest is the body of POST /documents/evaluate.
type EvaluateRequest struct {
	Document    Document `json:"document"`
	GroundTruth string   `json:"ground_truth"`
}

// EvaluateResponse reports one stage comparison.
type EvaluateResponse struct {
	Stage     string  `json:"stage"`
	Step      int     `json:"step"`
	ElapsedMs float64 `json:"elapsed_ms"`
	Result    string  `json:"result"`
}

// TermDocument is one background document for the term index.
type TermDocument struct {
	ID    string   `json:"id"`
	Terms []string `json:"terms"`
}

// IndexRequest is the body of POST /index/documents.
type IndexRequest struct {
	Documents []TermDocument `json:"documents"`
}

// PurgeResponse is the body returned by DELETE /kb and DELETE /index.
type PurgeResponse struct {
	Deleted int `json:"deleted"`
}

// IndexResponse is the body returned by POST /index/documents.
type IndexResponse struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// ResourcesRequest is the body of PUT /kb/resources.
type ResourcesRequest struct {
	Resources []domain.Resource             `json:"resources"`
	Clusters  map[graph.NodeID]graph.NodeID `json:"clusters,omitempty"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
