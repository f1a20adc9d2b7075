package model

// Graph is a frozen, topologically ordered sequence of operation nodes. It
// is the in-memory stand-in for the "source model" external collaborator:
// real deployments hand the partitioning core something that satisfies the
// same iteration contract, backed by the actual loaded network.
type Graph struct {
	nodes []*Node
}

// Ops returns every node in topological order, including constants,
// parameters, and outputs (the partitioning core's isOp predicate filters
// these out when it builds the initial Group DAG).
func (g *Graph) Ops() []OpNode {
	out := make([]OpNode, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n
	}
	return out
}

// Builder constructs a Graph by appending nodes in topological order: every
// producer must be added (and its ports wired) before any of its consumers.
// This mirrors how a real model loader already hands over ordered ops; the
// builder does not itself perform topological sorting.
type Builder struct {
	nodes []*Node
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) add(n *Node) *Node {
	n.index = len(b.nodes)
	b.nodes = append(b.nodes, n)
	return n
}

// AddOp appends an operational node of the given kind and metadata.
func (b *Builder) AddOp(name, kind string, meta MetaDescriptor) *Node {
	return b.add(&Node{name: name, kind: kind, meta: meta})
}

// AddConstant appends a constant node (excluded from the Group DAG).
func (b *Builder) AddConstant(name string) *Node {
	return b.add(&Node{name: name, kind: "Constant", constant: true})
}

// AddParameter appends a parameter node (excluded from the Group DAG).
func (b *Builder) AddParameter(name string) *Node {
	return b.add(&Node{name: name, kind: "Parameter", parameter: true})
}

// AddOutput appends an output sink node (excluded from the Group DAG).
func (b *Builder) AddOutput(name string) *Node {
	return b.add(&Node{name: name, kind: "Output", output: true})
}

// Connect wires an edge from producer's output port srcPort to consumer's
// input port dstPort. Both nodes must already have been added. Connect
// grows the producer's and consumer's port lists as needed and is safe to
// call multiple times for the same srcPort (fan-out) or dstPort.
func (b *Builder) Connect(producer *Node, srcPort int, consumer *Node, dstPort int) {
	for len(producer.outputs) <= srcPort {
		producer.outputs = append(producer.outputs, nil)
	}
	producer.outputs[srcPort] = append(producer.outputs[srcPort], Consumer{Node: consumer, Port: dstPort})

	for len(consumer.inputs) <= dstPort {
		consumer.inputs = append(consumer.inputs, nodeInput{})
	}
	consumer.inputs[dstPort] = nodeInput{producer: producer, srcPort: srcPort}
}

// Build finalizes the graph.
func (b *Builder) Build() *Graph {
	return &Graph{nodes: b.nodes}
}
