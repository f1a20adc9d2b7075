// Package model defines the minimal view of a frozen source-model graph that
// the partitioning core consumes. Loading the actual source model (parsing a
// serialized network, resolving weights, etc.) is an external collaborator
// per the core's scope — this package only describes the shape of that
// collaborator's output: an iterable, topologically sortable sequence of
// operation nodes with input/output port connectivity and per-node metadata.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// PortMeta captures the element type and shape of a single tensor port.
// It is comparable only through Key(), since shapes are variable-length;
// Key() is the canonical string used everywhere structural equality matters
// (MIC canonicalization, repeat-class bucketing).
type PortMeta struct {
	ElemType string
	Shape    []int
}

// Key returns a canonical, comparable representation of the port metadata.
func (p PortMeta) Key() string {
	dims := make([]string, len(p.Shape))
	for i, d := range p.Shape {
		dims[i] = fmt.Sprintf("%d", d)
	}
	return p.ElemType + "[" + strings.Join(dims, "x") + "]"
}

// MetaDescriptor captures an operation's kind plus the element type and
// shape of every input and output port. Two nodes with equal MetaDescriptor
// keys are interchangeable for the purposes of structural-repeat discovery.
type MetaDescriptor struct {
	OpKind  string
	Inputs  []PortMeta
	Outputs []PortMeta
}

// Key returns a canonical, comparable string for the descriptor, suitable
// for use as a map key wherever structural equality is required.
func (m MetaDescriptor) Key() string {
	var b strings.Builder
	b.WriteString(m.OpKind)
	b.WriteByte('|')
	for _, p := range m.Inputs {
		b.WriteString(p.Key())
		b.WriteByte(',')
	}
	b.WriteByte('|')
	for _, p := range m.Outputs {
		b.WriteString(p.Key())
		b.WriteByte(',')
	}
	return b.String()
}

// Consumer identifies one (node, input-port) pair fed by some output port.
type Consumer struct {
	Node OpNode
	Port int
}

// OpNode is the opaque identity of one source operation. Implementations are
// expected to be pointer types so that OpNode values compare by identity and
// can be used directly as map keys, matching the "shared identity" style
// used throughout this module (see pkg/core/partition.Repeated).
type OpNode interface {
	// Index is a stable position assigned by the source model's topological
	// iteration order. Used only for deterministic tie-breaking — never for
	// correctness decisions.
	Index() int

	// Name is a friendly, human-readable identifier (used in exported
	// archetype/match reports, never for structural comparisons).
	Name() string

	// Description is the operation kind, e.g. "MatMul", "Convert", "RMSNorm".
	Description() string

	NumInputs() int
	// Input returns the producing node and its source port for input port i.
	Input(i int) (producer OpNode, srcPort int)

	NumOutputs() int
	// OutputConsumers returns every (node, port) pair fed by output port i.
	OutputConsumers(i int) []Consumer

	Meta() MetaDescriptor

	IsConstant() bool
	IsParameter() bool
	IsOutput() bool

	// The mutable metadata channel consumed by the external pattern
	// rewriter (see pkg/core/rewrite): matched nodes get tagged with a
	// device to avoid, or an isolation tag, by the partitioning core's early
	// annotation passes, which run after the initial singleton groups are
	// built and before any merge.
	MarkAvoidDevice(device string)
	MarkIsolateTag(tag string)
	AvoidDevices() []string
	IsolateTag() (string, bool)
}

// SortByIndex returns a new slice of nodes sorted ascending by Index, used
// wherever the Determinism Contract requires stable ordering.
func SortByIndex(nodes []OpNode) []OpNode {
	out := make([]OpNode, len(nodes))
	copy(out, nodes)
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}
