package partition

import (
	"sort"

	"github.com/accelgraph/partition/pkg/core/model"
	"github.com/accelgraph/partition/pkg/core/rewrite"
	"github.com/accelgraph/partition/pkg/support/sets"
	"k8s.io/klog/v2"
)

// NodeEdge is a directed OpNode→OpNode edge, used as the key of the port map.
type NodeEdge struct {
	Src, Dst model.OpNode
}

// Port records the (source port, destination port) pair for one node-level
// edge. Established once at build time and never mutated afterward.
type Port struct {
	SrcPort, DstPort int
}

// ProdCons is the producer/consumer index for one OpNode, covering
// constants and parameters too (so later passes can reason about them).
type ProdCons struct {
	Producers sets.Set[model.OpNode]
	Consumers sets.Set[model.OpNode]
}

// Snapshot is the partitioning core's single stateful object: the operation
// index, the Group DAG, and the repeat registry, plus the pass pipeline
// operating over them.
type Snapshot struct {
	graph *model.Graph
	ctx   PassContext

	registry *rewrite.Registry

	// groups holds every Group still live in the DAG, keyed by its id.
	groups map[int]*Group
	nextID int

	nodeToGroup  map[model.OpNode]*Group
	nodeToProdCons map[model.OpNode]*ProdCons
	portsMap     map[NodeEdge]Port

	repeatSeq int // monotonic counter, used for Repeated.FriendlyID ordering

	// layerMatches is populated by cleanUpUniques/completeRepeating: for
	// each kept repeat-class's friendly id, one set of friendly layer names
	// per archetype position.
	layerMatches map[string][]map[string]struct{}
}

// NewSnapshot constructs an empty Snapshot over graph with the given config.
// Call Build to populate the initial Group DAG.
func NewSnapshot(graph *model.Graph, ctx PassContext, registry *rewrite.Registry) *Snapshot {
	return &Snapshot{
		graph:          graph,
		ctx:            ctx,
		registry:       registry,
		groups:         make(map[int]*Group),
		nodeToGroup:    make(map[model.OpNode]*Group),
		nodeToProdCons: make(map[model.OpNode]*ProdCons),
		portsMap:       make(map[NodeEdge]Port),
		layerMatches:   make(map[string][]map[string]struct{}),
	}
}

// isOp reports whether a node is operational and gets its own Group. A
// constant, parameter, or output never does, and neither does a Convert
// with exactly one input whose sole producer is a constant — that counts
// as a constant and is skipped too.
func isOp(n model.OpNode) bool {
	if n.IsConstant() || n.IsParameter() || n.IsOutput() {
		return false
	}
	if n.Description() == "Convert" && n.NumInputs() == 1 {
		producer, _ := n.Input(0)
		if producer != nil && producer.IsConstant() {
			return false
		}
	}
	return true
}

// Build wraps each operational OpNode in a singleton Group, mirrors OpNode
// edges as Group edges (idempotent), and populates the producer/consumer
// index (for every node, including non-operational ones) and the port map.
func (s *Snapshot) Build() {
	klog.V(1).Infof("partition: building initial groups")

	for _, n := range s.graph.Ops() {
		s.nodeToProdCons[n] = &ProdCons{
			Producers: sets.Make[model.OpNode](),
			Consumers: sets.Make[model.OpNode](),
		}
		if !isOp(n) {
			continue
		}
		g := newGroup(s.nextID, n)
		s.groups[g.id] = g
		s.nodeToGroup[n] = g
		s.nextID++
	}

	for _, n := range s.graph.Ops() {
		for i := 0; i < n.NumOutputs(); i++ {
			for _, c := range n.OutputConsumers(i) {
				s.nodeToProdCons[n].Consumers.Insert(c.Node)
				s.portsMap[NodeEdge{Src: n, Dst: c.Node}] = Port{SrcPort: i, DstPort: c.Port}

				if cc, ok := s.nodeToProdCons[c.Node]; ok {
					cc.Producers.Insert(n)
				}

				if !isOp(n) || !isOp(c.Node) {
					continue
				}
				gSrc, gDst := s.nodeToGroup[n], s.nodeToGroup[c.Node]
				if gSrc != gDst {
					gSrc.consumers.Insert(gDst)
					gDst.producers.Insert(gSrc)
				}
			}
		}
	}

	klog.V(1).Infof("partition: initial number of groups: %d", s.GraphSize())
}

// GraphSize is the number of Groups still live in the DAG.
func (s *Snapshot) GraphSize() int { return len(s.groups) }

// Producers returns the producer OpNodes of node (constants/parameters
// included).
func (s *Snapshot) Producers(node model.OpNode) sets.Set[model.OpNode] {
	return s.nodeToProdCons[node].Producers
}

// Consumers returns the consumer OpNodes of node (constants/parameters
// included).
func (s *Snapshot) Consumers(node model.OpNode) sets.Set[model.OpNode] {
	return s.nodeToProdCons[node].Consumers
}

// GroupOf returns the Group owning an operational node.
func (s *Snapshot) GroupOf(node model.OpNode) *Group {
	return s.nodeToGroup[node]
}

// sortedGroupsByID returns every live Group sorted ascending by id.
func (s *Snapshot) sortedGroupsByID() []*Group {
	out := make([]*Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// topoOrder computes a stable topological order over the current Group DAG
// (Kahn's algorithm, ties broken ascending by id, i.e. build order). Passes
// recompute this at the start of every sweep since merges invalidate any
// previously computed order.
func (s *Snapshot) topoOrder() []*Group {
	inDegree := make(map[*Group]int, len(s.groups))
	for _, g := range s.groups {
		inDegree[g] = len(g.producers)
	}

	ready := make([]*Group, 0)
	for _, g := range s.sortedGroupsByID() {
		if inDegree[g] == 0 {
			ready = append(ready, g)
		}
	}

	var order []*Group
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i].id < ready[j].id })
		g := ready[0]
		ready = ready[1:]
		order = append(order, g)

		next := g.Consumers()
		for _, c := range next {
			inDegree[c]--
			if inDegree[c] == 0 {
				ready = append(ready, c)
			}
		}
	}
	return order
}
