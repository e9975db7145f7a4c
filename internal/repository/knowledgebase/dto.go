package knowledgebase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/entlink/internal/db"
	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// Put stores resources and type clusters. Existing hash fields are overwritten,
// fields absent from the input are kept.
func (r *Repo) Put(ctx context.Context, resources []domain.Resource, clusters map[graph.NodeID]graph.NodeID) error {
	for _, res := range resources {
		if res.URI == "" {
			return fmt.Errorf("resource %d: empty uri", res.ID)
		}
		id := []byte(formatNodeID(res.ID))
		if err := r.store.Set(ctx, r.uriKey(res.ID), []byte(res.URI)); err != nil {
			return fmt.Errorf("set uri %d: %w", res.ID, err)
		}
		if err := r.store.Set(ctx, r.indexKey(res.URI), id); err != nil {
			return fmt.Errorf("set index %q: %w", res.URI, err)
		}
	}

	var items []db.HashSetItem
	for _, res := range resources {
		if len(res.Types) > 0 {
			items = append(items, db.HashSetItem{Key: r.typesKey(res.ID), Fields: confidenceHash(res.Types)})
		}
		if len(res.Predicted) > 0 {
			items = append(items, db.HashSetItem{Key: r.predictedKey(res.ID), Fields: confidenceHash(res.Predicted)})
		}
	}
	if len(clusters) > 0 {
		fields := make(map[string]string, len(clusters))
		for t, c := range clusters {
			fields[formatNodeID(t)] = formatNodeID(c)
		}
		items = append(items, db.HashSetItem{Key: r.clusterKey(), Fields: fields})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset types: %w", err)
	}
	return nil
}

// Purge deletes every knowledge-base key under the prefix and returns how
// many keys were removed.
func (r *Repo) Purge(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"kb:*")
	if err != nil {
		return 0, fmt.Errorf("scan knowledge base: %w", err)
	}
	if err := db.DelChunked(ctx, r.store, keys, db.DefaultDelChunk); err != nil {
		return 0, fmt.Errorf("purge knowledge base: %w", err)
	}
	return len(keys), nil
}

func confidenceHash(m map[graph.NodeID]float64) map[string]string {
	out := make(map[string]string, len(m))
	for id, conf := range m {
		out[formatNodeID(id)] = strconv.FormatFloat(conf, 'g', -1, 64)
	}
	return out
}

func formatNodeID(id graph.NodeID) string {
	return strconv.FormatInt(int64(id), 10)
}

func parseNodeID(s string) (graph.NodeID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid node id %q: %w", s, err)
	}
	return graph.NodeID(v), nil
}
