package partition

import (
	"sort"
	"strings"

	"github.com/accelgraph/partition/pkg/support/sets"
)

// identityKey returns the composite key Groups are bucketed by: the
// meta-descriptor of the initial node, avoided_devices, and special_tags.
func identityKey(g *Group) string {
	return g.InitialNode().Meta().Key() + "|" + sortedStringsKey(g.AvoidedDevices()) + "|" + strings.Join(g.SpecialTags(), ",")
}

func sortedStringsKey(s sets.Set[string]) string {
	list := make([]string, 0, len(s))
	for k := range s {
		list = append(list, k)
	}
	sort.Strings(list)
	return strings.Join(list, ",")
}

// identifyUniques runs exactly once. It buckets every Group by identityKey;
// any bucket with 2 or more Groups gets a fresh
// Repeated token stamped onto every member.
func (s *Snapshot) identifyUniques() {
	buckets := make(map[string][]*Group)
	for _, g := range s.sortedGroupsByID() {
		k := identityKey(g)
		buckets[k] = append(buckets[k], g)
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		cohort := buckets[k]
		if len(cohort) < 2 {
			continue
		}
		tok := newRepeated(s.repeatSeq)
		s.repeatSeq++
		for _, g := range cohort {
			g.SetRepeatTag(tok)
		}
	}
}

// cohortOf returns every live Group currently tagged with t, sorted
// ascending by id.
func (s *Snapshot) cohortOf(t *Repeated) []*Group {
	var out []*Group
	for _, g := range s.sortedGroupsByID() {
		if g.RepeatTag() == t {
			out = append(out, g)
		}
	}
	return out
}

// mergeUniques runs repeated topological sweeps. Each sweep visits every
// live Group once; the first Group carrying a given open-for-merge token
// triggers one tryGrowRepeatingGroups attempt for its whole cohort. Only the
// new token a successful attempt produces is remembered as touched for the
// rest of the sweep — stragglers still carrying the old token are free to
// trigger further growth attempts in the same sweep, since the old token's
// cohort just shrank rather than being exhausted. A failed attempt excludes
// the old token itself (inside tryGrowRepeatingGroups), so it naturally
// stops being retried without needing to be marked touched.
// Stops once a full sweep grows nothing.
func (s *Snapshot) mergeUniques() {
	for {
		grown := false
		touched := sets.Make[*Repeated]()
		for _, g := range s.topoOrder() {
			if _, live := s.groups[g.id]; !live {
				continue
			}
			t := g.RepeatTag()
			if t == nil || touched.Has(t) {
				continue
			}
			if !t.OpenForMerge() {
				continue
			}
			cohort := s.cohortOf(t)
			if len(cohort) < 2 {
				continue
			}
			if newTok := s.tryGrowRepeatingGroups(cohort); newTok != nil {
				grown = true
				touched.Insert(newTok)
			}
		}
		if !grown {
			break
		}
	}
}

type producerConsumerPair struct {
	producer, consumer *Group
}

type micBucket struct {
	pairs []producerConsumerPair
}

// tryGrowRepeatingGroups is the heart of repeated-block discovery. Given a
// cohort all sharing one open token, it looks for candidate
// producer→consumer pairs across the whole cohort whose Meta-Interconnect
// matches, groups them into buckets keyed by that canonical MIC, and commits
// the first bucket (largest first, ties broken by descending producer id)
// that tryMergeRepeating accepts.
func (s *Snapshot) tryGrowRepeatingGroups(cohort []*Group) *Repeated {
	t := cohort[0].RepeatTag()
	avoided := cohort[0].AvoidedDevices()
	special := cohort[0].SpecialTags()

	sorted := append([]*Group(nil), cohort...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].id > sorted[j].id })

	bucketsByKey := make(map[string]*micBucket)
	var order []string
	for _, g := range sorted {
		for _, p := range g.Producers() {
			pt := p.RepeatTag()
			if pt == nil || pt == t {
				continue
			}
			if !p.AvoidedDevices().Equal(avoided) || !sameStrings(p.SpecialTags(), special) {
				continue
			}
			if s.hasCycle(p, g) {
				continue
			}
			key := metaInterconnect(p, g).Key()
			b, ok := bucketsByKey[key]
			if !ok {
				b = &micBucket{}
				bucketsByKey[key] = b
				order = append(order, key)
			}
			b.pairs = append(b.pairs, producerConsumerPair{producer: p, consumer: g})
		}
	}

	buckets := make([]*micBucket, len(order))
	for i, k := range order {
		buckets[i] = bucketsByKey[k]
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		if len(buckets[i].pairs) != len(buckets[j].pairs) {
			return len(buckets[i].pairs) > len(buckets[j].pairs)
		}
		return buckets[i].pairs[0].producer.id > buckets[j].pairs[0].producer.id
	})

	for _, b := range buckets {
		prods := make([]*Group, len(b.pairs))
		conss := make([]*Group, len(b.pairs))
		for i, pr := range b.pairs {
			prods[i] = pr.producer
			conss[i] = pr.consumer
		}
		if newTok := s.tryMergeRepeating(prods, conss); newTok != nil {
			return newTok
		}
	}
	t.Exclude()
	return nil
}

// tryMergeRepeating commits one bucket of candidate pairs. Rejects (returns
// nil) if there are fewer than 2 pairs, or if the producer set is smaller than the
// consumer count — the latter is a triangle shape (one producer feeding
// several consumers of the same token) that mergeTriangles handles instead.
// A producer/consumer overlap is an invariant violation, not a rejection.
func (s *Snapshot) tryMergeRepeating(prods, conss []*Group) *Repeated {
	if len(prods) != len(conss) {
		panic(&FatalError{Pass: "tryMergeRepeating", Observed: len(prods), Expected: len(conss), Detail: "producer/consumer list length mismatch"})
	}
	if len(prods) < 2 {
		return nil
	}

	prodSet := sets.Make[*Group](len(prods))
	for _, p := range prods {
		prodSet.Insert(p)
	}
	if prodSet.Len() < len(conss) {
		return nil // triangle shape, left for mergeTriangles
	}

	consSet := sets.Make[*Group](len(conss))
	for _, c := range conss {
		consSet.Insert(c)
	}
	for p := range prodSet {
		if consSet.Has(p) {
			panic(&FatalError{Pass: "tryMergeRepeating", Detail: "producer/consumer overlap"})
		}
	}

	tok := newRepeated(s.repeatSeq)
	s.repeatSeq++
	for i := range prods {
		s.fuse(conss[i], prods[i])
	}
	for _, c := range conss {
		c.SetRepeatTag(tok)
		if c.producers.Has(c) {
			panic(&FatalError{Pass: "tryMergeRepeating", Detail: "merged consumer ended up as its own producer"})
		}
	}
	return tok
}
