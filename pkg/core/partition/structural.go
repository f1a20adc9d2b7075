package partition

import "sort"

// repeat is the fixed-point wrapper used by fuseRemnantsExtended: the
// min-size gate is checked *before* the pass runs, including on the very
// first iteration, so a graph already at or below min_graph_size never runs
// the pass even once. This is deliberate, not an oversight.
func (s *Snapshot) repeat(pass func() bool) {
	for s.GraphSize() > s.ctx.MinGraphSize {
		if !pass() {
			break
		}
	}
}

// collectLHF is a single topological sweep that collapses straight-line
// chains. For each Group g with exactly one producer p, where p
// has exactly one consumer (g itself), neither is frozen, and the graph is
// still above the minimum size, g absorbs p (g's id survives).
func (s *Snapshot) collectLHF() {
	for _, g := range s.topoOrder() {
		if s.GraphSize() <= s.ctx.MinGraphSize {
			return
		}
		if _, live := s.groups[g.id]; !live {
			continue
		}
		if g.IsFrozen() {
			continue
		}
		producers := g.Producers()
		if len(producers) != 1 {
			continue
		}
		p := producers[0]
		if p.IsFrozen() {
			continue
		}
		if len(p.Consumers()) != 1 {
			continue
		}
		s.fuse(g, p)
	}
}

// fuseRemnantsExtended runs fuseRemnants to fixed-point, then fuseInputsPass
// to fixed-point.
func (s *Snapshot) fuseRemnantsExtended() {
	s.repeat(s.fuseRemnants)
	s.repeat(s.fuseInputsPass)
}

// fuseRemnants is one sweep: for each non-frozen Group g with at least one
// consumer, sort consumers ascending by size (secondary tiebreak on id, to
// be safe even though determinism is expected to hold without it), then
// absorb g into the
// first non-frozen consumer that would not introduce a cycle. Returns
// whether any merge happened this sweep.
func (s *Snapshot) fuseRemnants() bool {
	changed := false
	for _, g := range s.topoOrder() {
		if s.GraphSize() <= s.ctx.MinGraphSize {
			break
		}
		if _, live := s.groups[g.id]; !live {
			continue
		}
		if g.IsFrozen() {
			continue
		}
		consumers := g.Consumers()
		if len(consumers) == 0 {
			continue
		}
		sort.Slice(consumers, func(i, j int) bool {
			if consumers[i].Size() != consumers[j].Size() {
				return consumers[i].Size() < consumers[j].Size()
			}
			return consumers[i].id < consumers[j].id
		})
		for _, c := range consumers {
			if c.IsFrozen() {
				continue
			}
			if s.hasCycle(g, c) {
				continue
			}
			s.fuseWith(c, g)
			changed = true
			break
		}
	}
	return changed
}

// fuseInputsPass is one sweep: for each non-frozen Group g, scan its
// producer list for an unordered pair of non-frozen, mutually
// acyclic producers and merge them into one sibling. Returns whether any
// merge happened this sweep.
func (s *Snapshot) fuseInputsPass() bool {
	changed := false
	for _, g := range s.topoOrder() {
		if s.GraphSize() <= s.ctx.MinGraphSize {
			break
		}
		if _, live := s.groups[g.id]; !live {
			continue
		}
		if g.IsFrozen() {
			continue
		}
		producers := g.Producers()
		merged := false
		for i := 0; i < len(producers) && !merged; i++ {
			for j := i + 1; j < len(producers) && !merged; j++ {
				p1, p2 := producers[i], producers[j]
				if p1.IsFrozen() || p2.IsFrozen() {
					continue
				}
				if s.hasCycle(p1, p2) {
					continue
				}
				s.fuseInputs(p1, p2)
				changed = true
				merged = true
			}
		}
	}
	return changed
}
