package partition

import "github.com/accelgraph/partition/pkg/support/sets"

// merge is the one primitive every higher-level merge operation (fuse,
// fuseWith, fuseInputs, tryMergeRepeating, tryMergeTriangles) reduces to:
// receiver absorbs absorbed. receiver's id, initialNode, isolatedTag, and
// frozen/noFold state (except noFold, which is OR'd in) all survive
// unchanged; absorbed is removed from the DAG entirely.
//
// marker is appended to the reptrack of every node coming in from absorbed,
// so completeRepeating can later tell which side of which fuse a node came
// through.
func (s *Snapshot) merge(receiver, absorbed *Group, marker string) {
	for node := range absorbed.content {
		receiver.content.Insert(node)
		receiver.reptrack[node] = absorbed.reptrack[node] + "/" + marker
		s.nodeToGroup[node] = receiver
	}
	receiver.avoidedDevices = receiver.avoidedDevices.Union(absorbed.avoidedDevices)
	for _, t := range absorbed.specialTags {
		receiver.AddSpecialTag(t)
	}
	if absorbed.noFold {
		receiver.noFold = true
	}

	for p := range absorbed.producers {
		p.consumers.Delete(absorbed)
		if p != receiver {
			p.consumers.Insert(receiver)
			receiver.producers.Insert(p)
		}
	}
	for c := range absorbed.consumers {
		c.producers.Delete(absorbed)
		if c != receiver {
			c.producers.Insert(receiver)
			receiver.consumers.Insert(c)
		}
	}
	receiver.producers.Delete(absorbed)
	receiver.consumers.Delete(absorbed)

	delete(s.groups, absorbed.id)
}

// fuse absorbs other into g: the direction used by collectLHF (downstream g
// absorbs its sole upstream producer) and by tryMergeRepeating (consumer
// absorbs producer).
func (s *Snapshot) fuse(g, other *Group) {
	s.merge(g, other, "fuse")
}

// fuseWith absorbs other into g where g is conceptually upstream of other
// (fuseRemnants: g's remnant content is merged into its consumer — so the
// caller passes receiver=consumer, absorbed=g) or, in mergeTriangles, where
// g is the apex absorbing a base. Both call sites reduce to the same
// receiver-absorbs-absorbed primitive; fuseWith exists as a distinct name
// only to mirror the two call sites' own vocabulary.
func (s *Snapshot) fuseWith(receiver, absorbed *Group) {
	s.merge(receiver, absorbed, "fuseWith")
}

// fuseInputs merges p1 and p2 into a single surviving producer (p1, by
// convention: the one discovered first). Every consumer of p1 or p2 — in
// particular the common consumer that triggered the search — ends up with
// one producer instead of two, automatically, since merge() rewires edges
// generically.
func (s *Snapshot) fuseInputs(p1, p2 *Group) {
	s.merge(p1, p2, "fuseInputs")
}

// hasCycle reports whether merging a and b would introduce a cycle into the
// Group DAG: true iff some path connects a and b in either direction other
// than the single direct edge between them. A naive BFS per call is acceptable at the graph sizes this core targets
// and is never cached across merges, since merges invalidate reachability.
func (s *Snapshot) hasCycle(a, b *Group) bool {
	return reachableExcludingDirectEdge(a, b) || reachableExcludingDirectEdge(b, a)
}

func reachableExcludingDirectEdge(from, to *Group) bool {
	visited := sets.Make[*Group]()
	visited.Insert(from)
	queue := []*Group{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for c := range cur.consumers {
			if cur == from && c == to {
				continue // the single direct edge being contracted, if any
			}
			if c == to {
				return true
			}
			if !visited.Has(c) {
				visited.Insert(c)
				queue = append(queue, c)
			}
		}
	}
	return false
}
