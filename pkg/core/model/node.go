package model

import "github.com/accelgraph/partition/pkg/support/exceptions"

// Node is a concrete, in-memory OpNode. Real deployments would back OpNode
// with a wrapper around the actual source-model's node objects; Node exists
// here so fixtures and tests can build small graphs without a real model
// loader (an external collaborator, out of scope for this module).
type Node struct {
	index int
	name  string
	kind  string
	meta  MetaDescriptor

	constant  bool
	parameter bool
	output    bool

	inputs  []nodeInput
	outputs [][]Consumer

	avoidDevices  []string
	isolateTag    string
	hasIsolateTag bool
}

type nodeInput struct {
	producer *Node
	srcPort  int
}

var _ OpNode = (*Node)(nil)

func (n *Node) Index() int          { return n.index }
func (n *Node) Name() string        { return n.name }
func (n *Node) Description() string { return n.kind }
func (n *Node) Meta() MetaDescriptor { return n.meta }
func (n *Node) IsConstant() bool    { return n.constant }
func (n *Node) IsParameter() bool   { return n.parameter }
func (n *Node) IsOutput() bool      { return n.output }

func (n *Node) NumInputs() int { return len(n.inputs) }

func (n *Node) Input(i int) (OpNode, int) {
	if i < 0 || i >= len(n.inputs) {
		exceptions.Panicf("Node(%q).Input(%d) out-of-bounds for %d inputs", n.name, i, len(n.inputs))
	}
	in := n.inputs[i]
	if in.producer == nil {
		return nil, 0
	}
	return in.producer, in.srcPort
}

func (n *Node) NumOutputs() int { return len(n.outputs) }

func (n *Node) OutputConsumers(i int) []Consumer {
	if i < 0 || i >= len(n.outputs) {
		exceptions.Panicf("Node(%q).OutputConsumers(%d) out-of-bounds for %d outputs", n.name, i, len(n.outputs))
	}
	return n.outputs[i]
}

func (n *Node) MarkAvoidDevice(device string) {
	for _, d := range n.avoidDevices {
		if d == device {
			return
		}
	}
	n.avoidDevices = append(n.avoidDevices, device)
}

func (n *Node) MarkIsolateTag(tag string) {
	n.isolateTag = tag
	n.hasIsolateTag = true
}

func (n *Node) AvoidDevices() []string {
	return n.avoidDevices
}

func (n *Node) IsolateTag() (string, bool) {
	return n.isolateTag, n.hasIsolateTag
}
