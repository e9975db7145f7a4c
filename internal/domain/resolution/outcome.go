package resolution

import (
	"slices"

	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// Outcome labels.
const (
	Ham  = "ham"
	Spam = "spam"
)

// Outcome partitions candidate node ids into accepted (ham) and rejected (spam).
// A node is never in both sets.
type Outcome struct {
	ham  map[graph.NodeID]struct{}
	spam map[graph.NodeID]struct{}
}

// New creates an empty outcome.
func New() Outcome {
	return Outcome{
		ham:  make(map[graph.NodeID]struct{}),
		spam: make(map[graph.NodeID]struct{}),
	}
}

// Accept marks id as ham, removing it from spam.
func (o *Outcome) Accept(id graph.NodeID) {
	o.init()
	delete(o.spam, id)
	o.ham[id] = struct{}{}
}

// Reject marks id as spam unless it is already accepted.
func (o *Outcome) Reject(id graph.NodeID) {
	o.init()
	if _, ok := o.ham[id]; ok {
		return
	}
	o.spam[id] = struct{}{}
}

// Merge folds other into o. Accepted ids win over rejected ones.
func (o *Outcome) Merge(other Outcome) {
	for id := range other.ham {
		o.Accept(id)
	}
	for id := range other.spam {
		o.Reject(id)
	}
}

// IsAccepted reports whether id is ham.
func (o Outcome) IsAccepted(id graph.NodeID) bool {
	_, ok := o.ham[id]
	return ok
}

// IsRejected reports whether id is spam.
func (o Outcome) IsRejected(id graph.NodeID) bool {
	_, ok := o.spam[id]
	return ok
}

// Accepted returns the ham ids in ascending order.
func (o Outcome) Accepted() []graph.NodeID { return sortedKeys(o.ham) }

// Rejected returns the spam ids in ascending order.
func (o Outcome) Rejected() []graph.NodeID { return sortedKeys(o.spam) }

// Empty reports whether neither set has members.
func (o Outcome) Empty() bool { return len(o.ham) == 0 && len(o.spam) == 0 }

// Labels returns the two-key view {"ham": [...], "spam": [...]}.
func (o Outcome) Labels() map[string][]graph.NodeID {
	return map[string][]graph.NodeID{
		Ham:  o.Accepted(),
		Spam: o.Rejected(),
	}
}

func (o *Outcome) init() {
	if o.ham == nil {
		o.ham = make(map[graph.NodeID]struct{})
	}
	if o.spam == nil {
		o.spam = make(map[graph.NodeID]struct{})
	}
}

func sortedKeys(m map[graph.NodeID]struct{}) []graph.NodeID {
	out := make([]graph.NodeID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
