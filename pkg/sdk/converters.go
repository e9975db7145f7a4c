package entlink

import (
	"github.com/kailas-cloud/entlink/internal/domain"
	dombatch "github.com/kailas-cloud/entlink/internal/domain/batch"
	domdoc "github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

func documentToDomain(d Document) *domdoc.Document {
	tokens := make([]domdoc.Token, len(d.Tokens))
	for i, t := range d.Tokens {
		tokens[i] = domdoc.Token{Text: t.Text, Offset: t.Offset}
	}
	doc := domdoc.New(d.ID, d.Content, tokens)

	for i, s := range d.Sentences {
		doc.Sentences = append(doc.Sentences, domdoc.TokenSequence[domdoc.Sentence]{
			Start: s.Start, End: s.End, Value: domdoc.Sentence{Index: i},
		})
	}
	for _, g := range d.Groups {
		doc.Groups = append(doc.Groups, domdoc.AmbiguityGroup{
			Literal:    g.Literal,
			Candidates: idsToDomain(g.Candidates),
		})
	}
	for _, e := range d.Entities {
		doc.Entities = append(doc.Entities, domdoc.Mention{
			Start: e.Start,
			End:   e.End,
			Value: domdoc.SemanticEntity{
				Subject: graph.NodeID(e.Subject),
				URI:     e.URI,
				Score:   e.Score,
				Rated:   e.Rated,
			},
		})
	}
	for _, n := range d.Nodes {
		doc.Graph.AddNode(graph.NodeID(n))
	}
	for _, e := range d.Edges {
		doc.Graph.AddEdge(graph.NodeID(e.From), graph.NodeID(e.Predicate), graph.NodeID(e.To))
	}
	return doc
}

func resultFromDomain(r dombatch.Result, doc *domdoc.Document) Result {
	out := Result{
		ID:     r.ID(),
		Status: Status(r.Status()),
		Err:    r.Err(),
	}
	for _, rec := range r.Stages() {
		out.Stages = append(out.Stages, StageResult{
			Step: rec.Step, Name: rec.Name, Elapsed: rec.Elapsed, Err: rec.Err,
		})
	}
	if doc == nil || r.Status() == dombatch.StatusError {
		return out
	}

	for _, m := range doc.Entities {
		out.Entities = append(out.Entities, Entity{
			Span:    Span{Start: m.Start, End: m.End},
			Subject: int64(m.Value.Subject),
			URI:     m.Value.URI,
			Score:   m.Value.Score,
			Rated:   m.Value.Rated,
		})
	}
	out.Accepted = idsFromDomain(doc.Resolution.Accepted())
	out.Rejected = idsFromDomain(doc.Resolution.Rejected())
	for _, id := range doc.Ratings.Ranked() {
		out.Ratings = append(out.Ratings, Rating{Subject: int64(id), Score: doc.Ratings[id]})
	}
	return out
}

func resourcesToDomain(in []Resource) []domain.Resource {
	out := make([]domain.Resource, len(in))
	for i, r := range in {
		out[i] = domain.Resource{
			ID:        graph.NodeID(r.ID),
			URI:       r.URI,
			Types:     confidencesToDomain(r.Types),
			Predicted: confidencesToDomain(r.Predicted),
		}
	}
	return out
}

func clustersToDomain(in map[int64]int64) map[graph.NodeID]graph.NodeID {
	if len(in) == 0 {
		return nil
	}
	out := make(map[graph.NodeID]graph.NodeID, len(in))
	for t, c := range in {
		out[graph.NodeID(t)] = graph.NodeID(c)
	}
	return out
}

func confidencesToDomain(in map[int64]float64) map[graph.NodeID]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[graph.NodeID]float64, len(in))
	for id, c := range in {
		out[graph.NodeID(id)] = c
	}
	return out
}

func batchResultFromDomain(r dombatch.Result) BatchResult {
	return BatchResult{
		ID:  r.ID(),
		OK:  r.Status() == dombatch.StatusOK,
		Err: r.Err(),
	}
}

func idsToDomain(ids []int64) []graph.NodeID {
	out := make([]graph.NodeID, len(ids))
	for i, id := range ids {
		out[i] = graph.NodeID(id)
	}
	return out
}

func idsFromDomain(ids []graph.NodeID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
