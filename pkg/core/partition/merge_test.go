package partition

import (
	"fmt"
	"testing"

	"github.com/accelgraph/partition/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroup(t *testing.T, id int) *Group {
	t.Helper()
	b := model.NewBuilder()
	n := b.AddOp(fmt.Sprintf("n%d", id), "Op", scalarMeta("Op"))
	return newGroup(id, n)
}

func link(p, c *Group) {
	p.consumers.Insert(c)
	c.producers.Insert(p)
}

func TestHasCycle_DiamondPathIsDetected(t *testing.T) {
	p1 := newTestGroup(t, 1)
	x := newTestGroup(t, 2)
	p2 := newTestGroup(t, 3)
	g := newTestGroup(t, 4)

	link(p1, x)
	link(x, p2)
	link(p1, g)
	link(p2, g)

	assert.True(t, reachableExcludingDirectEdge(p1, p2))
}

func TestHasCycle_IndependentSiblingsAreSafe(t *testing.T) {
	q1 := newTestGroup(t, 1)
	q2 := newTestGroup(t, 2)
	g := newTestGroup(t, 3)

	link(q1, g)
	link(q2, g)

	assert.False(t, reachableExcludingDirectEdge(q1, q2))
	assert.False(t, reachableExcludingDirectEdge(q2, q1))
}

func TestHasCycle_DirectEdgeAloneIsNotACycle(t *testing.T) {
	a := newTestGroup(t, 1)
	b := newTestGroup(t, 2)
	link(a, b)

	s := &Snapshot{}
	assert.False(t, s.hasCycle(a, b))
}

func TestMerge_ReceiverAbsorbsAbsorbedAndRewiresEdges(t *testing.T) {
	s := &Snapshot{groups: make(map[int]*Group), nodeToGroup: make(map[model.OpNode]*Group)}

	p := newTestGroup(t, 1)
	receiver := newTestGroup(t, 2)
	absorbed := newTestGroup(t, 3)
	consumer := newTestGroup(t, 4)
	s.groups[receiver.id] = receiver
	s.groups[absorbed.id] = absorbed
	for n := range absorbed.content {
		s.nodeToGroup[n] = absorbed
	}
	for n := range receiver.content {
		s.nodeToGroup[n] = receiver
	}

	link(p, absorbed)
	link(absorbed, consumer)
	absorbed.Avoid("NPU")
	absorbed.AddSpecialTag("tagged")

	s.merge(receiver, absorbed, "test")

	assert.Equal(t, 2, receiver.Size())
	assert.True(t, receiver.AvoidedDevices().Has("NPU"))
	assert.Contains(t, receiver.SpecialTags(), "tagged")
	assert.True(t, receiver.producers.Has(p))
	assert.True(t, receiver.consumers.Has(consumer))
	assert.False(t, receiver.producers.Has(absorbed))
	assert.False(t, receiver.consumers.Has(absorbed))
	_, stillLive := s.groups[absorbed.id]
	assert.False(t, stillLive)
	for n := range absorbed.content {
		require.Equal(t, receiver, s.nodeToGroup[n])
	}
}
