// Package rewrite models the "operation-pattern matching" external
// collaborator from the partitioning core's point of view: a named rewriter
// that scans a graph for a known pattern (RMSNorm, SwishMultXMM, ...) and
// tags matched nodes with an isolation tag or a device-avoidance marker via
// the node's mutable metadata channel (model.OpNode.MarkAvoidDevice /
// MarkIsolateTag).
//
// The real pattern-matching machinery (general subgraph isomorphism against
// the host graph) lives outside this module's scope; this package only
// supplies the dispatch surface the core calls into, pre-seeded with the
// five pattern names the original annotation passes recognize.
package rewrite

import "github.com/accelgraph/partition/pkg/core/model"

// Matcher finds every node in g that belongs to one instance of the named
// pattern. A real Matcher would walk the graph looking for a specific
// subgraph shape (e.g. the Square/Mean/Sqrt/Divide chain of RMSNorm); the
// matchers registered here are deliberately simple stand-ins keyed off an
// op's Description, since the subgraph-isomorphism engine itself is an
// external collaborator.
type Matcher interface {
	// Name is the pattern name as used in AVOID/ISOLATE directives.
	Name() string
	// Match returns every node that is part of some instance of the pattern.
	Match(g *model.Graph) []model.OpNode
}

type descriptionMatcher struct {
	name string
}

func (m descriptionMatcher) Name() string { return m.name }

func (m descriptionMatcher) Match(g *model.Graph) []model.OpNode {
	var matched []model.OpNode
	for _, n := range g.Ops() {
		if n.Description() == m.name {
			matched = append(matched, n)
		}
	}
	return matched
}

// noOpMatcher is registered for patterns the core recognizes by name but
// whose matching logic has not been ported into this module; it matches
// nothing, so directives naming it are accepted (not warned-and-skipped)
// but have no effect, matching the original dispatcher's "known pattern,
// stub implementation" cases.
type noOpMatcher struct {
	name string
}

func (m noOpMatcher) Name() string                        { return m.name }
func (m noOpMatcher) Match(*model.Graph) []model.OpNode { return nil }

// Registry is the set of pattern names the core's annotation passes know
// how to dispatch to.
type Registry struct {
	matchers map[string]Matcher
}

// NewRegistry returns a registry pre-seeded with the five patterns the
// original online-partitioning annotation passes recognize: RMSNorm and
// AdditionalCompute are fully wired (description-based matching), the other
// three (SwishMultXMM, DequantMatMulCW, DequantMatMulGQ) are registered as
// known-but-unimplemented so the dispatch path exercises "known pattern with
// no-op matcher" rather than "unknown pattern, warn and skip" for them.
func NewRegistry() *Registry {
	r := &Registry{matchers: make(map[string]Matcher)}
	r.Register(descriptionMatcher{name: "RMSNorm"})
	r.Register(descriptionMatcher{name: "AdditionalCompute"})
	r.Register(noOpMatcher{name: "SwishMultXMM"})
	r.Register(noOpMatcher{name: "DequantMatMulCW"})
	r.Register(noOpMatcher{name: "DequantMatMulGQ"})
	return r
}

// Register adds or replaces a matcher under its own Name().
func (r *Registry) Register(m Matcher) {
	r.matchers[m.Name()] = m
}

// Lookup returns the matcher registered for pattern, if any.
func (r *Registry) Lookup(pattern string) (Matcher, bool) {
	m, ok := r.matchers[pattern]
	return m, ok
}
