package partition

import (
	"sort"

	"github.com/accelgraph/partition/pkg/core/model"
	"github.com/accelgraph/partition/pkg/support/sets"
)

// Group is one vertex of the partitioning DAG: a set of source operations
// that will become one subgraph.
type Group struct {
	id int

	// initialNode is the single OpNode this Group was built around. It
	// never changes across merges (by convention the surviving Group in any
	// merge keeps its own id and initialNode), and is what identifyUniques
	// and earlyAvoids key off of.
	initialNode model.OpNode

	content sets.Set[model.OpNode]

	frozen bool
	noFold bool

	avoidedDevices sets.Set[string]
	isolatedTag    string
	specialTags    []string // sorted, unique

	repeatTag *Repeated

	// reptrack records, for each OpNode in content, an archetype path
	// summarizing how it was fused in. Used only by completeRepeating to
	// match corresponding layers across repeat instances.
	reptrack map[model.OpNode]string

	producers sets.Set[*Group]
	consumers sets.Set[*Group]
}

func newGroup(id int, node model.OpNode) *Group {
	g := &Group{
		id:             id,
		initialNode:    node,
		content:        sets.MakeWith(node),
		avoidedDevices: sets.Make[string](),
		reptrack:       map[model.OpNode]string{node: ""},
		producers:      sets.Make[*Group](),
		consumers:      sets.Make[*Group](),
	}
	return g
}

func (g *Group) ID() int                { return g.id }
func (g *Group) InitialNode() model.OpNode { return g.initialNode }
func (g *Group) Size() int              { return len(g.content) }
func (g *Group) IsFrozen() bool         { return g.frozen }
func (g *Group) Freeze()                { g.frozen = true }
func (g *Group) IsNoFold() bool         { return g.noFold }
func (g *Group) SetNoFold()             { g.noFold = true }
func (g *Group) IsolatedTag() string    { return g.isolatedTag }
func (g *Group) RepeatTag() *Repeated   { return g.repeatTag }
func (g *Group) SetRepeatTag(r *Repeated) { g.repeatTag = r }

func (g *Group) SetIsolatedTag(tag string) {
	g.isolatedTag = tag
}

func (g *Group) Avoid(device string) {
	g.avoidedDevices.Insert(device)
}

// AvoidedDevices returns the set of devices this group must not be placed on.
func (g *Group) AvoidedDevices() sets.Set[string] {
	return g.avoidedDevices
}

// SpecialTags returns the group's ordered, deduplicated special tags.
func (g *Group) SpecialTags() []string {
	return g.specialTags
}

func (g *Group) AddSpecialTag(tag string) {
	for _, t := range g.specialTags {
		if t == tag {
			return
		}
	}
	g.specialTags = append(g.specialTags, tag)
	sort.Strings(g.specialTags)
}

// Has reports whether node belongs to this group's content.
func (g *Group) Has(node model.OpNode) bool {
	return g.content.Has(node)
}

// Content returns every OpNode in the group, sorted by Index for
// determinism.
func (g *Group) Content() []model.OpNode {
	nodes := make([]model.OpNode, 0, len(g.content))
	for n := range g.content {
		nodes = append(nodes, n)
	}
	return model.SortByIndex(nodes)
}

// Reptrack returns the archetype path recorded for node, which must be in
// this group's content.
func (g *Group) Reptrack(node model.OpNode) string {
	return g.reptrack[node]
}

// Producers returns the group's direct producers, sorted ascending by id —
// the deterministic order every pass relies on.
func (g *Group) Producers() []*Group {
	return sortedGroups(g.producers)
}

// Consumers returns the group's direct consumers, sorted ascending by id.
func (g *Group) Consumers() []*Group {
	return sortedGroups(g.consumers)
}

func sortedGroups(s sets.Set[*Group]) []*Group {
	out := make([]*Group, 0, len(s))
	for g := range s {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// structurallyCompatibleWith reports whether two repeat-class instances are
// compatible: same avoided_devices, same special_tags.
func (g *Group) structurallyCompatibleWith(o *Group) bool {
	return g.avoidedDevices.Equal(o.avoidedDevices) && sameStrings(g.specialTags, o.specialTags)
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
