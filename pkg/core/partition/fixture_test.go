package partition

import "github.com/accelgraph/partition/pkg/core/model"

// scalarMeta is the meta-descriptor shared by every fixture op below: one
// input, one output, both float32 scalars. Using an identical descriptor
// everywhere lets identifyUniques key purely off op kind + avoids/tags.
func scalarMeta(kind string) model.MetaDescriptor {
	p := model.PortMeta{ElemType: "f32", Shape: []int{1}}
	return model.MetaDescriptor{OpKind: kind, Inputs: []model.PortMeta{p}, Outputs: []model.PortMeta{p}}
}

func noInputMeta(kind string) model.MetaDescriptor {
	p := model.PortMeta{ElemType: "f32", Shape: []int{1}}
	return model.MetaDescriptor{OpKind: kind, Outputs: []model.PortMeta{p}}
}

// chainGraph builds a linear A→B→C→... chain of n ops, all same kind, fed
// by one parameter.
func chainGraph(n int, kind string) (*model.Graph, []*model.Node) {
	b := model.NewBuilder()
	param := b.AddParameter("param")
	nodes := make([]*model.Node, n)
	var prev *model.Node
	for i := 0; i < n; i++ {
		op := b.AddOp(letterName(i), kind, scalarMeta(kind))
		if i == 0 {
			b.Connect(param, 0, op, 0)
		} else {
			b.Connect(prev, 0, op, 0)
		}
		prev = op
		nodes[i] = op
	}
	return b.Build(), nodes
}

func letterName(i int) string {
	return string(rune('A' + i))
}

func defaultCtx() PassContext {
	return PassContext{MinGraphSize: 1, KeepBlocks: 2, KeepBlockSize: 1}
}
