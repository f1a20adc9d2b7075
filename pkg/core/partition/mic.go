package partition

import (
	"sort"
	"strings"

	"github.com/accelgraph/partition/pkg/core/model"
)

// MICEntry is one (source port meta, destination port meta) pair crossing a
// producer→consumer Group boundary.
type MICEntry struct {
	Src model.PortMeta
	Dst model.PortMeta
}

// Key returns a canonical string for one MIC entry, used to sort a MIC into
// its canonical form and to build the composite bucket key.
func (e MICEntry) Key() string {
	return e.Src.Key() + "->" + e.Dst.Key()
}

// MIC is a canonicalized Meta-Interconnect: the sorted sequence of port-meta
// pairs describing every OpNode-level edge crossing one producer→consumer
// Group boundary. Two MICs with the same canonical Key() mean the
// two group-pair boundaries "look the same" structurally.
type MIC []MICEntry

// Key returns the canonical bucket key for this MIC (sorted entries joined).
func (m MIC) Key() string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key()
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

// metaInterconnect computes the MIC for the producer→consumer boundary,
// scanning consumer's content for inputs whose producer OpNode belongs to
// producer's content.
func metaInterconnect(producer, consumer *Group) MIC {
	var mic MIC
	for _, node := range consumer.Content() {
		for i := 0; i < node.NumInputs(); i++ {
			srcNode, srcPort := node.Input(i)
			if srcNode == nil || !producer.Has(srcNode) {
				continue
			}
			mic = append(mic, MICEntry{
				Src: srcNode.Meta().Outputs[srcPort],
				Dst: node.Meta().Inputs[i],
			})
		}
	}
	sort.Slice(mic, func(i, j int) bool { return mic[i].Key() < mic[j].Key() })
	return mic
}
