// Command partition runs the online partitioning core against a JSON graph
// fixture and configuration, and prints a summary of the resulting Group DAG
// and repeat classes. It exists to exercise pkg/core/partition end-to-end
// without a real source-model loader, which is an external collaborator out
// of this module's scope.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/accelgraph/partition/pkg/core/model"
	"github.com/accelgraph/partition/pkg/core/partition"
	"github.com/accelgraph/partition/pkg/core/rewrite"
	"github.com/accelgraph/partition/pkg/support/xslices"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var flagConfig = flag.String("config", "", "Path to a JSON file describing the graph fixture and PassContext.")

type portSpec struct {
	ElemType string `json:"elem_type"`
	Shape    []int  `json:"shape"`
}

type metaSpec struct {
	Inputs  []portSpec `json:"inputs"`
	Outputs []portSpec `json:"outputs"`
}

type nodeSpec struct {
	Name string    `json:"name"`
	Kind string    `json:"kind"`
	Role string    `json:"role,omitempty"` // "", "constant", "parameter", "output"
	Meta *metaSpec `json:"meta,omitempty"`
}

type edgeSpec struct {
	SrcNode string `json:"src_node"`
	SrcPort int    `json:"src_port"`
	DstNode string `json:"dst_node"`
	DstPort int    `json:"dst_port"`
}

type graphSpec struct {
	Nodes []nodeSpec `json:"nodes"`
	Edges []edgeSpec `json:"edges"`
}

type avoidSpec struct {
	Kind    string `json:"kind"` // "op" or "pattern"
	Pattern string `json:"pattern"`
	Device  string `json:"device"`
}

type isolateSpec struct {
	Pattern string `json:"pattern"`
	Tag     string `json:"tag"`
}

type configSpec struct {
	Graph         graphSpec     `json:"graph"`
	MinGraphSize  int           `json:"min_graph_size"`
	KeepBlocks    int           `json:"keep_blocks"`
	KeepBlockSize int           `json:"keep_block_size"`
	Avoids        []avoidSpec   `json:"avoids"`
	Isolates      []isolateSpec `json:"isolates"`
	NoFolds       []string      `json:"nofolds"`
	PMMDims       []int         `json:"pmm_dims"`
}

func loadConfig(path string) (*configSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	var cfg configSpec
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %q", path)
	}
	return &cfg, nil
}

func toMetaDescriptor(kind string, m *metaSpec) model.MetaDescriptor {
	if m == nil {
		return model.MetaDescriptor{OpKind: kind}
	}
	toPorts := func(ps []portSpec) []model.PortMeta {
		out := make([]model.PortMeta, len(ps))
		for i, p := range ps {
			out[i] = model.PortMeta{ElemType: p.ElemType, Shape: p.Shape}
		}
		return out
	}
	return model.MetaDescriptor{OpKind: kind, Inputs: toPorts(m.Inputs), Outputs: toPorts(m.Outputs)}
}

func buildGraph(gs graphSpec) (*model.Graph, error) {
	b := model.NewBuilder()
	byName := make(map[string]*model.Node, len(gs.Nodes))
	for _, n := range gs.Nodes {
		if _, exists := byName[n.Name]; exists {
			return nil, errors.Errorf("duplicate node name %q", n.Name)
		}
		switch n.Role {
		case "constant":
			byName[n.Name] = b.AddConstant(n.Name)
		case "parameter":
			byName[n.Name] = b.AddParameter(n.Name)
		case "output":
			byName[n.Name] = b.AddOutput(n.Name)
		case "":
			byName[n.Name] = b.AddOp(n.Name, n.Kind, toMetaDescriptor(n.Kind, n.Meta))
		default:
			return nil, errors.Errorf("node %q: unknown role %q", n.Name, n.Role)
		}
	}
	for _, e := range gs.Edges {
		src, ok := byName[e.SrcNode]
		if !ok {
			return nil, errors.Errorf("edge references unknown node %q", e.SrcNode)
		}
		dst, ok := byName[e.DstNode]
		if !ok {
			return nil, errors.Errorf("edge references unknown node %q", e.DstNode)
		}
		b.Connect(src, e.SrcPort, dst, e.DstPort)
	}
	return b.Build(), nil
}

func toPassContext(cfg *configSpec) (partition.PassContext, error) {
	ctx := partition.PassContext{
		MinGraphSize:  cfg.MinGraphSize,
		KeepBlocks:    cfg.KeepBlocks,
		KeepBlockSize: cfg.KeepBlockSize,
		NoFolds:       cfg.NoFolds,
	}
	for _, a := range cfg.Avoids {
		var kind partition.AvoidKind
		switch a.Kind {
		case "op":
			kind = partition.AvoidOp
		case "pattern":
			kind = partition.AvoidPattern
		default:
			return ctx, errors.Errorf("avoid directive: unknown kind %q", a.Kind)
		}
		ctx.Avoids = append(ctx.Avoids, partition.AvoidDirective{Kind: kind, Pattern: a.Pattern, Device: a.Device})
	}
	for _, i := range cfg.Isolates {
		ctx.Isolates = append(ctx.Isolates, partition.IsolateDirective{Pattern: i.Pattern, Tag: i.Tag})
	}
	if len(cfg.PMMDims) > 0 {
		ctx.PMMDims = make(map[int]struct{}, len(cfg.PMMDims))
		for _, d := range cfg.PMMDims {
			ctx.PMMDims[d] = struct{}{}
		}
	}
	return ctx, nil
}

func report(exp *partition.Export) {
	fmt.Printf("groups:  %s\n", humanize.Comma(int64(len(exp.Groups))))
	repeatClasses := len(exp.Matches)
	fmt.Printf("repeats: %s\n", humanize.Comma(int64(repeatClasses)))

	largest := 0
	for _, g := range exp.Groups {
		largest = xslices.Max(largest, g.Size())
	}
	fmt.Printf("largest group: %s ops\n", humanize.Comma(int64(largest)))

	lines := xslices.Map(exp.Groups, func(g *partition.Group) string {
		tag := "-"
		if rt := g.RepeatTag(); rt != nil {
			tag = rt.FriendlyID()
		}
		return fmt.Sprintf("  group %d: %d ops, initial=%s, repeat=%s", g.ID(), g.Size(), g.InitialNode().Name(), tag)
	})
	for _, line := range lines {
		fmt.Println(line)
	}
}

func main() {
	flag.Parse()
	if *flagConfig == "" {
		klog.Errorf("missing -config flag, see -help")
		os.Exit(1)
	}

	cfg, err := loadConfig(*flagConfig)
	if err != nil {
		klog.Errorf("%v", err)
		os.Exit(1)
	}
	graph, err := buildGraph(cfg.Graph)
	if err != nil {
		klog.Errorf("building graph fixture: %v", err)
		os.Exit(1)
	}
	ctx, err := toPassContext(cfg)
	if err != nil {
		klog.Errorf("%v", err)
		os.Exit(1)
	}

	snap := partition.NewSnapshot(graph, ctx, rewrite.NewRegistry())
	if err := snap.Run(); err != nil {
		klog.Errorf("partitioning failed: %v", err)
		os.Exit(1)
	}
	report(snap.Export())
}
