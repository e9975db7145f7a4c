package transducer

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	domrating "github.com/kailas-cloud/entlink/internal/domain/rating"
	"github.com/kailas-cloud/entlink/internal/domain/resolution"
	"github.com/kailas-cloud/entlink/internal/usecase/rating"
	"github.com/kailas-cloud/entlink/internal/usecase/resolve"
)

// Predicate node ids used in test graphs.
const (
	predLocatedIn graph.NodeID = 100
	predCapital   graph.NodeID = 101
)

type mockKB struct {
	uris   map[graph.NodeID]string
	idxErr error
	// failURIs fail URIIndex with idxErr only for the listed URIs.
	failURIs map[string]bool
}

func (m *mockKB) URI(_ context.Context, id graph.NodeID) (string, error) {
	u, ok := m.uris[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return u, nil
}

func (m *mockKB) URIIndex(_ context.Context, uri string) (graph.NodeID, error) {
	if m.idxErr != nil && (m.failURIs == nil || m.failURIs[uri]) {
		return 0, m.idxErr
	}
	for id, u := range m.uris {
		if u == uri {
			return id, nil
		}
	}
	return 0, domain.ErrNotFound
}

func (m *mockKB) Cluster(context.Context, []graph.NodeID) (graph.NodeID, error) { return 0, nil }

func (m *mockKB) AssertedTypes(context.Context, graph.NodeID, float64) ([]graph.NodeID, error) {
	return nil, nil
}

func (m *mockKB) PredictedTypes(context.Context, graph.NodeID, float64) ([]graph.NodeID, error) {
	return nil, nil
}

type mockRecorder struct {
	ham, spam, rated int
}

func (m *mockRecorder) ObserveResolution(_ string, ham, spam int) { m.ham += ham; m.spam += spam }

func (m *mockRecorder) ObserveRating(_ string, subjects int) { m.rated += subjects }

type failingResolver struct{}

func (failingResolver) Name() string { return "failing" }

func (failingResolver) Resolve(
	context.Context, *graph.Graph, []document.AmbiguityGroup, *document.Document, domain.KnowledgeBase,
) (resolution.Outcome, error) {
	return resolution.Outcome{}, errors.New("boom")
}

type closingRater struct {
	rating.Position
	closed int
}

func (c *closingRater) Close() error { c.closed++; return nil }

func testKB() *mockKB {
	return &mockKB{uris: map[graph.NodeID]string{
		1: "http://x/Berlin",
		2: "http://x/Berlin_(band)",
		3: "http://x/Germany",
		5: "http://x/Paris",
	}}
}

// "Berlin is in Germany": Berlin is ambiguous between 1 and 2, node 1 is linked to Germany.
func testDoc() *document.Document {
	doc := document.New("d1", "Berlin is in Germany", []document.Token{
		{Text: "Berlin", Offset: 0},
		{Text: "is", Offset: 7},
		{Text: "in", Offset: 10},
		{Text: "Germany", Offset: 13},
	})
	doc.Graph.AddEdge(1, predLocatedIn, 3)
	doc.Graph.AddEdge(3, predCapital, 1)
	doc.Graph.AddNode(2)
	doc.Groups = []document.AmbiguityGroup{{Literal: "Berlin", Candidates: []graph.NodeID{1, 2}}}
	doc.Entities = []document.Mention{
		{Start: 0, End: 1, Value: document.SemanticEntity{Subject: 1}},
		{Start: 0, End: 1, Value: document.SemanticEntity{Subject: 2}},
		{Start: 3, End: 4, Value: document.SemanticEntity{Subject: 3}},
	}
	return doc
}

// --- Disambiguation ---

func TestDisambiguation_DropsRejected(t *testing.T) {
	rec := &mockRecorder{}
	stage := NewDisambiguation(resolve.Degree{}, rec)
	doc := testDoc()

	if err := stage.Transduce(context.Background(), doc, testKB()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.Resolution.IsAccepted(1) || !doc.Resolution.IsRejected(2) {
		t.Fatalf("unexpected resolution: %v", doc.Resolution.Labels())
	}
	if len(doc.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(doc.Entities))
	}
	for _, e := range doc.Entities {
		if e.Value.Subject == 2 {
			t.Error("rejected subject 2 kept")
		}
	}
	if rec.ham != 1 || rec.spam != 1 {
		t.Errorf("unexpected recorder counts: %+v", rec)
	}
	if stage.Name() != "disambiguation:degree" {
		t.Errorf("unexpected name: %s", stage.Name())
	}
}

func TestDisambiguation_ResolverError(t *testing.T) {
	stage := NewDisambiguation(failingResolver{}, nil)
	doc := testDoc()

	if err := stage.Transduce(context.Background(), doc, testKB()); err == nil {
		t.Fatal("expected error")
	}
	if len(doc.Entities) != 3 {
		t.Errorf("entities must be untouched, got %d", len(doc.Entities))
	}
}

func TestDisambiguation_MissingGraph(t *testing.T) {
	stage := NewDisambiguation(resolve.Flow{}, nil)
	doc := &document.Document{Groups: []document.AmbiguityGroup{{Candidates: []graph.NodeID{1, 2}}}}

	if err := stage.Transduce(context.Background(), doc, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Graph == nil {
		t.Fatal("expected graph to be created")
	}
	// Both candidates score zero and tie.
	if !doc.Resolution.IsAccepted(1) || !doc.Resolution.IsAccepted(2) {
		t.Errorf("expected tie, got %v", doc.Resolution.Labels())
	}
}

func TestDisambiguation_Compare(t *testing.T) {
	stage := NewDisambiguation(resolve.Degree{}, nil)
	doc := testDoc()
	kb := testKB()
	ctx := context.Background()

	if err := stage.Transduce(ctx, doc, kb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report, err := stage.Compare(ctx, doc, kb, "http://x/Berlin\n\nhttp://x/Germany\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "precision=1.0000 recall=0.5000 tp=1 predicted=1 expected=2"
	if report != want {
		t.Errorf("expected %q, got %q", want, report)
	}
}

func TestDisambiguation_CompareNeedsKB(t *testing.T) {
	stage := NewDisambiguation(resolve.Degree{}, nil)
	if _, err := stage.Compare(context.Background(), testDoc(), nil, "x"); err == nil {
		t.Fatal("expected error")
	}
}

// --- Rating ---

func TestRating_WritesScores(t *testing.T) {
	rec := &mockRecorder{}
	stage := NewRating(rating.Position{}, rec)
	doc := testDoc()
	doc.Entities = append(doc.Entities[:1], doc.Entities[2])

	if err := stage.Transduce(context.Background(), doc, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Ratings[1] != 20 || doc.Ratings[3] != 7 {
		t.Fatalf("unexpected ratings: %v", doc.Ratings)
	}
	if doc.Entities[0].Value.Subject != 1 || doc.Entities[0].Value.Score != 20 || !doc.Entities[0].Value.Rated {
		t.Errorf("unexpected first entity: %+v", doc.Entities[0])
	}
	if doc.Entities[1].Value.Score != 7 || !doc.Entities[1].Value.Rated {
		t.Errorf("unexpected second entity: %+v", doc.Entities[1])
	}
	if rec.rated != 2 {
		t.Errorf("expected 2 rated subjects, got %d", rec.rated)
	}
}

func TestRating_UnratedEntity(t *testing.T) {
	stage := NewRating(rating.Position{}, nil)
	doc := testDoc()
	doc.Entities = append(doc.Entities, document.Mention{Start: 9, End: 12, Value: document.SemanticEntity{Subject: 9}})

	if err := stage.Transduce(context.Background(), doc, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := doc.Entities[len(doc.Entities)-1]
	if last.Value.Rated || last.Value.Score != 0 {
		t.Errorf("invalid span must stay unrated: %+v", last)
	}
}

func TestRating_SkipsUnresolvedEntities(t *testing.T) {
	stage := NewRating(rating.Position{}, nil)
	doc := testDoc()
	doc.Entities = []document.Mention{
		{Start: 0, End: 1, Value: document.SemanticEntity{URI: "http://x/Paris"}},
		{Start: 1, End: 2, Value: document.SemanticEntity{URI: "http://x/Rome"}},
		{Start: 3, End: 4, Value: document.SemanticEntity{Subject: 3}},
	}

	if err := stage.Transduce(context.Background(), doc, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := doc.Ratings[0]; ok || len(doc.Ratings) != 1 || doc.Ratings[3] != 7 {
		t.Fatalf("unexpected ratings: %v", doc.Ratings)
	}
	for _, e := range doc.Entities[:2] {
		if e.Value.Rated || e.Value.Score != 0 {
			t.Errorf("unresolved entity must stay unrated: %+v", e)
		}
	}
	if !doc.Entities[2].Value.Rated {
		t.Errorf("resolved entity must be rated: %+v", doc.Entities[2])
	}
}

func TestRating_HubIgnoresUnresolved(t *testing.T) {
	stage := NewRating(rating.NewHub(graph.HITSOptions{}), nil)
	doc := testDoc()
	doc.Entities = []document.Mention{
		{Start: 0, End: 1, Value: document.SemanticEntity{URI: "http://x/Paris"}},
		{Start: 0, End: 1, Value: document.SemanticEntity{Subject: 1}},
	}

	if err := stage.Transduce(context.Background(), doc, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := doc.Ratings[0]; ok {
		t.Errorf("node 0 must not be rated: %v", doc.Ratings)
	}
	if _, ok := doc.Ratings[1]; !ok {
		t.Errorf("expected subject 1 rated: %v", doc.Ratings)
	}
}

func TestRating_Compare(t *testing.T) {
	stage := NewRating(rating.Position{}, nil)
	doc := testDoc()
	kb := testKB()
	ctx := context.Background()
	doc.Ratings = domrating.Outcome{1: 20, 3: 7}

	report, err := stage.Compare(ctx, doc, kb, "http://x/Germany")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "overlap@1=0.0000 hits=0 rated=2"; report != want {
		t.Errorf("expected %q, got %q", want, report)
	}

	report, err = stage.Compare(ctx, doc, kb, "http://x/Germany\nhttp://x/Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "overlap@2=1.0000 hits=2 rated=2"; report != want {
		t.Errorf("expected %q, got %q", want, report)
	}
}

func TestRating_Close(t *testing.T) {
	r := &closingRater{}
	if err := NewRating(r, nil).Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.closed != 1 {
		t.Errorf("expected rater to be closed once, got %d", r.closed)
	}
	if err := NewRating(rating.Position{}, nil).Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- SubjectIndex ---

func TestSubjectIndex_ResolvesURIs(t *testing.T) {
	stage := NewSubjectIndex(nil)
	doc := testDoc()
	doc.Entities = append(doc.Entities,
		document.Mention{Start: 1, End: 2, Value: document.SemanticEntity{URI: "http://x/Paris"}},
		document.Mention{Start: 2, End: 3, Value: document.SemanticEntity{URI: "http://x/Nowhere"}},
	)

	if err := stage.Transduce(context.Background(), doc, testKB()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Entities) != 4 {
		t.Fatalf("expected unknown uri to be dropped, got %d entities", len(doc.Entities))
	}
	if doc.Entities[3].Value.Subject != 5 {
		t.Errorf("expected subject 5, got %d", doc.Entities[3].Value.Subject)
	}
	if !doc.Graph.Contains(5) {
		t.Error("expected subject node in graph")
	}
}

func TestSubjectIndex_StoreError(t *testing.T) {
	stage := NewSubjectIndex(nil)
	doc := testDoc()
	doc.Entities = []document.Mention{{Start: 0, End: 1, Value: document.SemanticEntity{URI: "http://x/Paris"}}}
	kb := testKB()
	kb.idxErr = errors.New("timeout")

	if err := stage.Transduce(context.Background(), doc, kb); err == nil {
		t.Fatal("expected error")
	}
}

func TestSubjectIndex_StoreErrorKeepsEntities(t *testing.T) {
	stage := NewSubjectIndex(nil)
	doc := testDoc()
	doc.Entities = []document.Mention{
		{Start: 0, End: 1, Value: document.SemanticEntity{URI: "http://x/Gone"}},
		{Start: 1, End: 2, Value: document.SemanticEntity{Subject: 9}},
		{Start: 2, End: 3, Value: document.SemanticEntity{URI: "http://x/Slow"}},
		{Start: 3, End: 4, Value: document.SemanticEntity{URI: "http://x/Paris"}},
	}
	kb := testKB()
	kb.idxErr = errors.New("timeout")
	kb.failURIs = map[string]bool{"http://x/Slow": true}

	if err := stage.Transduce(context.Background(), doc, kb); err == nil {
		t.Fatal("expected error")
	}

	// Unknown uri dropped, subject 9 kept once, the rest left as it was.
	want := []document.Mention{
		{Start: 1, End: 2, Value: document.SemanticEntity{Subject: 9}},
		{Start: 2, End: 3, Value: document.SemanticEntity{URI: "http://x/Slow"}},
		{Start: 3, End: 4, Value: document.SemanticEntity{URI: "http://x/Paris"}},
	}
	if len(doc.Entities) != len(want) {
		t.Fatalf("expected %d entities, got %+v", len(want), doc.Entities)
	}
	for i := range want {
		if doc.Entities[i] != want[i] {
			t.Errorf("entity[%d] = %+v, want %+v", i, doc.Entities[i], want[i])
		}
	}
}

func TestNilDocument(t *testing.T) {
	ctx := context.Background()
	if err := NewDisambiguation(resolve.Degree{}, nil).Transduce(ctx, nil, nil); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Errorf("disambiguation: %v", err)
	}
	if err := NewRating(rating.Position{}, nil).Transduce(ctx, nil, nil); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Errorf("rating: %v", err)
	}
	if err := NewSubjectIndex(nil).Transduce(ctx, nil, nil); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Errorf("subject index: %v", err)
	}
}
