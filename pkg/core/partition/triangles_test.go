package partition

import (
	"fmt"
	"testing"

	"github.com/accelgraph/partition/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTriangleFixture builds two apexes, each feeding 3 bases that are
// themselves leaf edges (one producer, one consumer each), positioned so
// that base i under apex A and base i under apex A' share a second-order
// MIC (the sink at each position takes an input of a distinct shape; MICs
// compare port metadata only, not op kinds), letting tryMergeTriangles
// distinguish the 3 positions. Real OpNode-level edges back every Group
// edge, since metaInterconnect reads node-level Input/Meta data rather than
// the Group-level producer/consumer sets.
func buildTriangleFixture(t *testing.T) (apexes []*Group, bases [][]*Group) {
	t.Helper()
	b := model.NewBuilder()
	id := 0
	next := func() int { id++; return id }

	for branch := 0; branch < 2; branch++ {
		apexNode := b.AddOp(fmt.Sprintf("apex%d", branch), "Apex", scalarMeta("Apex"))
		apex := newGroup(next(), apexNode)
		var baseRow []*Group
		for pos := 0; pos < 3; pos++ {
			baseNode := b.AddOp(fmt.Sprintf("base%d_%d", pos, branch), "Base", scalarMeta("Base"))
			b.Connect(apexNode, 0, baseNode, 0)
			sinkKind := fmt.Sprintf("Sink%d", pos)
			sinkMeta := scalarMeta(sinkKind)
			sinkMeta.Inputs = []model.PortMeta{{ElemType: "f32", Shape: []int{pos + 1}}}
			sinkNode := b.AddOp(fmt.Sprintf("sink%d_%d", pos, branch), sinkKind, sinkMeta)
			b.Connect(baseNode, 0, sinkNode, 0)

			base := newGroup(next(), baseNode)
			sink := newGroup(next(), sinkNode)
			link(apex, base)
			link(base, sink)
			baseRow = append(baseRow, base)
		}
		apexes = append(apexes, apex)
		bases = append(bases, baseRow)
	}
	return apexes, bases
}

func TestTryMergeTriangles_TooFewApexesRejects(t *testing.T) {
	s := &Snapshot{}
	apexes, bases := buildTriangleFixture(t)
	assert.Nil(t, s.tryMergeTriangles(apexes[:1], bases[:1]))
}

func TestTryMergeTriangles_MismatchedLengthIsFatal(t *testing.T) {
	s := &Snapshot{}
	apexes, bases := buildTriangleFixture(t)
	assert.Panics(t, func() {
		s.tryMergeTriangles(apexes, bases[:1])
	})
}

func TestTryMergeTriangles_NonLeafBaseRejects(t *testing.T) {
	s := &Snapshot{}
	apexes, bases := buildTriangleFixture(t)
	extra := newTestGroup(t, 100)
	link(bases[0][0], extra) // now has 2 consumers, no longer a leaf edge
	assert.Nil(t, s.tryMergeTriangles(apexes, bases))
}

func TestMergeTriangles_BothApexesEndUpInOneRepeatClass(t *testing.T) {
	s := &Snapshot{groups: make(map[int]*Group), nodeToGroup: make(map[model.OpNode]*Group)}
	apexes, bases := buildTriangleFixture(t)
	for _, a := range apexes {
		s.groups[a.id] = a
		for n := range a.content {
			s.nodeToGroup[n] = a
		}
	}
	for _, row := range bases {
		for _, b := range row {
			s.groups[b.id] = b
			for n := range b.content {
				s.nodeToGroup[n] = b
			}
		}
	}

	tok := s.tryMergeTriangles(apexes, bases)
	require.NotNil(t, tok)
	for _, a := range apexes {
		assert.Equal(t, 4, a.Size()) // apex + 3 absorbed bases
		assert.Same(t, tok, a.RepeatTag())
	}
}
