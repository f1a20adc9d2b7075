package partition

import (
	"sort"

	"github.com/accelgraph/partition/pkg/support/sets"
)

type triangleBucket struct {
	apexOrder   []*Group
	basesByApex map[*Group][]*Group
	seen        map[*Group]sets.Set[*Group]
}

// mergeTriangles runs exactly once after mergeUniques reaches its own fixed
// point. It handles the shape mergeUniques rejects:
// one repeat-instance producer (apex) feeding several repeat-instance
// consumers (bases) of another token. Each token's cohort is visited at most
// once (guarded by touched, which records every token visited); candidate apex→base pairs are
// bucketed by MIC, then each bucket is committed via tryMergeTriangles.
func (s *Snapshot) mergeTriangles() {
	touched := sets.Make[*Repeated]()
	for _, g := range s.topoOrder() {
		if _, live := s.groups[g.id]; !live {
			continue
		}
		if g.IsFrozen() {
			continue
		}
		t := g.RepeatTag()
		if t == nil || touched.Has(t) {
			continue
		}
		touched.Insert(t)

		cohort := s.cohortOf(t)
		sorted := append([]*Group(nil), cohort...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].id > sorted[j].id })

		bucketsByKey := make(map[string]*triangleBucket)
		var keyOrder []string
		for _, apex := range sorted {
			for _, c := range apex.Consumers() {
				ct := c.RepeatTag()
				if ct == nil || ct == t {
					continue
				}
				if !c.AvoidedDevices().Equal(apex.AvoidedDevices()) || !sameStrings(c.SpecialTags(), apex.SpecialTags()) {
					continue
				}
				key := metaInterconnect(apex, c).Key()
				b, ok := bucketsByKey[key]
				if !ok {
					b = &triangleBucket{basesByApex: make(map[*Group][]*Group), seen: make(map[*Group]sets.Set[*Group])}
					bucketsByKey[key] = b
					keyOrder = append(keyOrder, key)
				}
				if _, ok := b.seen[apex]; !ok {
					b.apexOrder = append(b.apexOrder, apex)
					b.seen[apex] = sets.Make[*Group]()
				}
				if !b.seen[apex].Has(c) {
					b.seen[apex].Insert(c)
					b.basesByApex[apex] = append(b.basesByApex[apex], c)
				}
			}
		}

		buckets := make([]*triangleBucket, len(keyOrder))
		for i, k := range keyOrder {
			buckets[i] = bucketsByKey[k]
		}
		sort.SliceStable(buckets, func(i, j int) bool {
			if len(buckets[i].apexOrder) != len(buckets[j].apexOrder) {
				return len(buckets[i].apexOrder) > len(buckets[j].apexOrder)
			}
			return buckets[i].apexOrder[0].id > buckets[j].apexOrder[0].id
		})

		for _, b := range buckets {
			apexes := b.apexOrder
			bases := make([][]*Group, len(apexes))
			for i, a := range apexes {
				bases[i] = b.basesByApex[a]
			}
			s.tryMergeTriangles(apexes, bases)
		}
	}
}

type triangleBaseRef struct {
	apex, base *Group
}

// tryMergeTriangles commits one bucket's apex/base pairs. apexes and bases
// must be equal-length (a bug otherwise); nil if fewer than 2 apexes, if the base
// lists have differing lengths, or if any base is not a leaf triangle edge
// (exactly one producer and one consumer). The second-order MIC — the MIC of
// each base's edge to its own sole consumer — distinguishes which base
// position is which across apexes; the number of distinct second-order keys
// must equal the per-apex base count or it's an invariant violation.
func (s *Snapshot) tryMergeTriangles(apexes []*Group, bases [][]*Group) *Repeated {
	if len(apexes) != len(bases) {
		panic(&FatalError{Pass: "tryMergeTriangles", Observed: len(bases), Expected: len(apexes), Detail: "apex/base count mismatch"})
	}
	if len(apexes) < 2 {
		return nil
	}
	baseLen := len(bases[0])
	for _, bs := range bases {
		if len(bs) != baseLen {
			return nil
		}
		for _, b := range bs {
			if len(b.Consumers()) != 1 || len(b.Producers()) != 1 {
				return nil
			}
		}
	}

	byKey := make(map[string][]triangleBaseRef)
	var keyOrder []string
	for i, apex := range apexes {
		for _, b := range bases[i] {
			sole := b.Consumers()[0]
			key := metaInterconnect(b, sole).Key()
			if _, ok := byKey[key]; !ok {
				keyOrder = append(keyOrder, key)
			}
			byKey[key] = append(byKey[key], triangleBaseRef{apex: apex, base: b})
		}
	}
	if len(byKey) != baseLen {
		panic(&FatalError{Pass: "tryMergeTriangles", Observed: len(byKey), Expected: baseLen, Detail: "second-order MIC key count mismatch"})
	}
	sort.Strings(keyOrder)

	var last *Repeated
	for _, key := range keyOrder {
		tok := newRepeated(s.repeatSeq)
		s.repeatSeq++
		for _, ref := range byKey[key] {
			s.fuseWith(ref.apex, ref.base)
			ref.apex.SetRepeatTag(tok)
		}
		last = tok
	}
	return last
}
