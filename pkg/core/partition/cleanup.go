package partition

import (
	"sort"

	"github.com/accelgraph/partition/pkg/support/sets"
)

// cleanUpUniques is the terminal repeat-class decision pass. Every distinct
// token still present across live Groups is visited once: a cohort is kept
// (frozen and passed to completeRepeating) if any member has avoided_devices
// or is noFold, or if it meets the keep_blocks/keep_block_size thresholds;
// otherwise the tag is cleared from every member and the Groups themselves
// survive ungrouped.
func (s *Snapshot) cleanUpUniques() {
	seen := sets.Make[*Repeated]()
	for _, g := range s.sortedGroupsByID() {
		t := g.RepeatTag()
		if t == nil || seen.Has(t) {
			continue
		}
		seen.Insert(t)

		cohort := s.cohortOf(t)
		keep := false
		for _, m := range cohort {
			if m.AvoidedDevices().Len() > 0 || m.IsNoFold() {
				keep = true
				break
			}
		}
		if !keep {
			keep = len(cohort) >= s.ctx.KeepBlocks
			if keep {
				for _, m := range cohort {
					if m.Size() < s.ctx.KeepBlockSize {
						keep = false
						break
					}
				}
			}
		}

		if !keep {
			for _, m := range cohort {
				m.SetRepeatTag(nil)
			}
			continue
		}

		for _, m := range cohort {
			m.Freeze()
		}
		s.completeRepeating(t, cohort)
	}

	s.afterUniques()
}

// completeRepeating populates layerMatches for a kept cohort: for every
// OpNode across every kept Group in the token's cohort, it builds the
// composite key (meta-descriptor, reptrack) and inverse-indexes it.
// Each archetype key must occur exactly |cohort| times, and the number of
// distinct keys must equal the content size shared by every Group in the
// cohort — both are invariants, not soft checks.
func (s *Snapshot) completeRepeating(t *Repeated, cohort []*Group) {
	archetypes := make(map[string][]string)
	var keyOrder []string
	for _, g := range cohort {
		for _, n := range g.Content() {
			key := n.Meta().Key() + "|" + g.Reptrack(n)
			if _, ok := archetypes[key]; !ok {
				keyOrder = append(keyOrder, key)
			}
			archetypes[key] = append(archetypes[key], n.Name())
		}
	}
	sort.Strings(keyOrder)

	for _, key := range keyOrder {
		if len(archetypes[key]) != len(cohort) {
			panic(&FatalError{Pass: "completeRepeating", Observed: len(archetypes[key]), Expected: len(cohort), Detail: "archetype key occurrence count mismatch"})
		}
	}
	contentSize := cohort[0].Size()
	for _, g := range cohort {
		if g.Size() != contentSize {
			panic(&FatalError{Pass: "completeRepeating", Observed: g.Size(), Expected: contentSize, Detail: "cohort content size mismatch"})
		}
	}
	if len(keyOrder) != contentSize {
		panic(&FatalError{Pass: "completeRepeating", Observed: len(keyOrder), Expected: contentSize, Detail: "archetype key count does not match content size"})
	}

	layers := make([]map[string]struct{}, 0, len(keyOrder))
	for _, key := range keyOrder {
		names := sets.Make[string](len(archetypes[key]))
		for _, name := range archetypes[key] {
			names.Insert(name)
		}
		layers = append(layers, names)
	}
	s.layerMatches[t.FriendlyID()] = layers
}

// afterUniques sets noFold on every Group whose isolated_tag is listed in
// the nofolds directive.
func (s *Snapshot) afterUniques() {
	noFolds := sets.MakeWith(s.ctx.NoFolds...)
	for _, g := range s.sortedGroupsByID() {
		if g.IsolatedTag() != "" && noFolds.Has(g.IsolatedTag()) {
			g.SetNoFold()
		}
	}
}
