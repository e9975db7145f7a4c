package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/domain"
	dombatch "github.com/kailas-cloud/entlink/internal/domain/batch"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	logpkg "github.com/kailas-cloud/entlink/internal/logger"
	batchuc "github.com/kailas-cloud/entlink/internal/usecase/batch"
	evaluateuc "github.com/kailas-cloud/entlink/internal/usecase/evaluate"
	healthuc "github.com/kailas-cloud/entlink/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// KnowledgeLoader stores and purges knowledge-base resources and type clusters.
type KnowledgeLoader interface {
	Put(ctx context.Context, resources []domain.Resource, clusters map[graph.NodeID]graph.NodeID) error
	Purge(ctx context.Context) (int, error)
}

// TermIndex reports and purges the background term index.
type TermIndex interface {
	Stats(ctx context.Context) (domain.IndexStats, error)
	Purge(ctx context.Context) (int, error)
}

// Server serves the pipeline HTTP API.
type Server struct {
	batch         *batchuc.Service
	evaluator     *evaluateuc.Evaluator
	health        *healthuc.Service
	loader        KnowledgeLoader
	index         TermIndex
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. loader and index may be nil,
// their routes then answer 501.
func NewServer(
	batch *batchuc.Service,
	evaluator *evaluateuc.Evaluator,
	health *healthuc.Service,
	loader KnowledgeLoader,
	index TermIndex,
	logger *zap.Logger,
) *Server {
	s := &Server{
		batch:     batch,
		evaluator: evaluator,
		health:    health,
		loader:    loader,
		index:     index,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		stageErrorHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrStageOutOfRange, http.StatusBadRequest, CodeStageOutOfRange),
		sentinelHandler(domain.ErrNotComparable, http.StatusUnprocessableEntity, CodeNotComparable),
		sentinelHandler(domain.ErrUnknownStrategy, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrIndexClosed, http.StatusServiceUnavailable, CodeIndexUnavailable),
		sentinelHandler(domain.ErrEmptyIndex, http.StatusServiceUnavailable, CodeIndexUnavailable),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/documents/process", s.ProcessDocuments)
	r.Post("/documents/evaluate", s.EvaluateDocument)
	r.Post("/index/documents", s.IndexDocuments)
	r.Get("/index/stats", s.IndexStats)
	r.Delete("/index", s.PurgeIndex)
	r.Put("/kb/resources", s.PutResources)
	r.Delete("/kb", s.PurgeKnowledge)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ProcessDocuments handles POST /documents/process?from=&to=.
func (s *Server) ProcessDocuments(w http.ResponseWriter, r *http.Request) {
	var from, to *int
	if err := runtime.BindQueryParameter("form", true, false, "from", r.URL.Query(), &from); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid from parameter")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "to", r.URL.Query(), &to); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid to parameter")
		return
	}

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "documents must not be empty")
		return
	}

	docs := make([]*document.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = d.toDomain()
	}

	results := s.batch.Process(r.Context(), docs, derefInt(from, 0), derefInt(to, -1))

	resp := ProcessResponse{Items: make([]ProcessItem, len(results))}
	for i, res := range results {
		item := ProcessItem{BatchItem: batchResultToDTO(res)}
		if res.Status() != dombatch.StatusError {
			out := documentToDTO(docs[i])
			item.Document = &out
		}
		resp.Items[i] = item
	}
	sum := dombatch.Summarize(results)
	resp.Succeeded, resp.Partial, resp.Failed = sum.OK, sum.Partial, sum.Failed
	writeJSON(w, http.StatusOK, resp)
}

// EvaluateDocument handles POST /documents/evaluate?step=.
func (s *Server) EvaluateDocument(w http.ResponseWriter, r *http.Request) {
	var step int
	if err := runtime.BindQueryParameter("form", true, true, "step", r.URL.Query(), &step); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "step parameter is required")
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	doc := req.Document.toDomain()
	if err := doc.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	ctx, _ := logpkg.WithFields(r.Context(), logpkg.DocumentID(doc.ID))
	report, err := s.evaluator.Evaluate(ctx, step, doc, req.GroundTruth)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EvaluateResponse{
		Stage:     report.Stage,
		Step:      report.Step,
		ElapsedMs: float64(report.Elapsed.Microseconds()) / 1000,
		Result:    report.Result,
	})
}

// IndexDocuments handles POST /index/documents.
func (s *Server) IndexDocuments(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "documents must not be empty")
		return
	}

	docs := make([]batchuc.TermDocument, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = batchuc.TermDocument{ID: d.ID, Terms: d.Terms}
	}
	results := s.batch.Index(r.Context(), docs)

	resp := IndexResponse{Items: make([]BatchItem, len(results))}
	for i, res := range results {
		resp.Items[i] = batchResultToDTO(res)
	}
	sum := dombatch.Summarize(results)
	resp.Succeeded, resp.Failed = sum.OK, sum.Failed
	writeJSON(w, http.StatusOK, resp)
}

// IndexStats handles GET /index/stats.
func (s *Server) IndexStats(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		writeError(w, http.StatusNotImplemented, CodeNotImplemented, "term index not configured")
		return
	}
	st, err := s.index.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// PutResources handles PUT /kb/resources.
func (s *Server) PutResources(w http.ResponseWriter, r *http.Request) {
	if s.loader == nil {
		writeError(w, http.StatusNotImplemented, CodeNotImplemented, "knowledge base loading not configured")
		return
	}
	var req ResourcesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Resources) == 0 && len(req.Clusters) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "resources or clusters required")
		return
	}
	for _, res := range req.Resources {
		if res.URI == "" {
			writeError(w, http.StatusBadRequest, CodeValidationFailed,
				fmt.Sprintf("resource %d: uri is required", res.ID))
			return
		}
	}

	if err := s.loader.Put(r.Context(), req.Resources, req.Clusters); err != nil {
		s.handleDomainError(w, err)
		return
	}
	logpkg.FromContext(r.Context()).Info("knowledge base updated",
		zap.Int("resources", len(req.Resources)),
		zap.Int("clusters", len(req.Clusters)),
	)
	w.WriteHeader(http.StatusNoContent)
}

// PurgeKnowledge handles DELETE /kb.
func (s *Server) PurgeKnowledge(w http.ResponseWriter, r *http.Request) {
	if s.loader == nil {
		writeError(w, http.StatusNotImplemented, CodeNotImplemented, "knowledge base loading not configured")
		return
	}
	n, err := s.loader.Purge(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	logpkg.FromContext(r.Context()).Warn("knowledge base purged", zap.Int("keys", n))
	writeJSON(w, http.StatusOK, PurgeResponse{Deleted: n})
}

// PurgeIndex handles DELETE /index.
func (s *Server) PurgeIndex(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		writeError(w, http.StatusNotImplemented, CodeNotImplemented, "term index not configured")
		return
	}
	n, err := s.index.Purge(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	logpkg.FromContext(r.Context()).Warn("term index purged", zap.Int("keys", n))
	writeJSON(w, http.StatusOK, PurgeResponse{Deleted: n})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidDocument,
		domain.ErrStageOutOfRange,
		domain.ErrNotComparable,
		domain.ErrUnknownStrategy,
		domain.ErrIndexClosed,
		domain.ErrEmptyIndex,
		domain.ErrNoTypes,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// stageErrorHandler reports a failed stage with its step and name.
func stageErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	var se *domain.StageError
	if !errors.As(err, &se) {
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"code":    CodeStageFailed,
		"message": msg,
		"step":    se.Step,
		"stage":   se.Name,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
