package partition

import "github.com/accelgraph/partition/pkg/core/model"

// Export is the partitioning core's output, consumed by the downstream
// subgraph-construction and weight-allocation collaborators.
type Export struct {
	// Groups is the final Group DAG, sorted ascending by id.
	Groups []*Group

	NodeToGroup    map[model.OpNode]*Group
	NodeToProdCons map[model.OpNode]*ProdCons
	PortsMap       map[NodeEdge]Port

	// Matches maps a kept repeat class's friendly id to its archetype layer
	// sets: one set per layer position, each containing one node name per
	// repeat instance.
	Matches map[string][]map[string]struct{}
}

// Export snapshots the current state of the Group DAG and repeat registry
// for downstream consumption. Safe to call at any point, though it is
// normally called once after Run succeeds.
func (s *Snapshot) Export() *Export {
	return &Export{
		Groups:         s.sortedGroupsByID(),
		NodeToGroup:    s.nodeToGroup,
		NodeToProdCons: s.nodeToProdCons,
		PortsMap:       s.portsMap,
		Matches:        s.layerMatches,
	}
}
