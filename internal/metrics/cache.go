package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewKnowledgeBaseCache builds the knowledge-base cache hit/miss counter
// and registers it on reg. A nil reg skips registration.
func NewKnowledgeBaseCache(reg prometheus.Registerer) (*prometheus.CounterVec, error) {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "kb",
		Name:      "cache_total",
		Help:      "Knowledge base cache lookups by result",
	}, []string{"result"}) // result: "hit" / "miss"
	if reg == nil {
		return c, nil
	}
	if err := registerOrReuse(reg, &c); err != nil {
		return nil, err
	}
	return c, nil
}
