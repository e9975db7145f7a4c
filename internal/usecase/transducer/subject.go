package transducer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// SubjectIndex assigns knowledge-base ids to entities that carry only a URI
// and adds every entity subject to the document graph.
type SubjectIndex struct {
	logger *zap.Logger
}

// NewSubjectIndex creates the stage.
func NewSubjectIndex(logger *zap.Logger) *SubjectIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectIndex{logger: logger}
}

// Name implements pipeline.Named.
func (s *SubjectIndex) Name() string { return NameSubjectIndex }

// Transduce implements pipeline.Transducer.
func (s *SubjectIndex) Transduce(ctx context.Context, doc *document.Document, kb domain.KnowledgeBase) error {
	if doc == nil {
		return domain.ErrInvalidDocument
	}
	g := doc.EnsureGraph()

	// On failure doc keeps the entities handled so far plus the untouched rest.
	kept := make([]document.Mention, 0, len(doc.Entities))
	for i, e := range doc.Entities {
		if e.Value.Unresolved() {
			id, err := s.lookup(ctx, kb, e.Value.URI)
			if err != nil {
				doc.Entities = append(kept, doc.Entities[i:]...)
				return err
			}
			if id == 0 {
				s.logger.Debug("Dropping entity with unknown uri", zap.String("uri", e.Value.URI))
				continue
			}
			e.Value.Subject = id
		}
		g.AddNode(e.Value.Subject)
		kept = append(kept, e)
	}
	doc.Entities = kept
	return nil
}

// lookup returns 0 for a URI the knowledge base does not know.
func (s *SubjectIndex) lookup(ctx context.Context, kb domain.KnowledgeBase, uri string) (graph.NodeID, error) {
	if kb == nil {
		return 0, errors.New("subject index requires a knowledge base")
	}
	id, err := kb.URIIndex(ctx, uri)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("index %q: %w", uri, err)
	}
	return id, nil
}
