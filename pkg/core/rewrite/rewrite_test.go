package rewrite_test

import (
	"testing"

	"github.com/accelgraph/partition/pkg/core/model"
	"github.com/accelgraph/partition/pkg/core/rewrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RMSNormMatchesByDescription(t *testing.T) {
	b := model.NewBuilder()
	rms := b.AddOp("rms", "RMSNorm", model.MetaDescriptor{})
	_ = b.AddOp("other", "MatMul", model.MetaDescriptor{})
	g := b.Build()

	r := rewrite.NewRegistry()
	m, ok := r.Lookup("RMSNorm")
	require.True(t, ok)
	matched := m.Match(g)
	require.Len(t, matched, 1)
	assert.Equal(t, model.OpNode(rms), matched[0])
}

func TestRegistry_StubPatternsMatchNothing(t *testing.T) {
	b := model.NewBuilder()
	b.AddOp("x", "SwishMultXMM", model.MetaDescriptor{})
	g := b.Build()

	r := rewrite.NewRegistry()
	for _, name := range []string{"SwishMultXMM", "DequantMatMulCW", "DequantMatMulGQ"} {
		m, ok := r.Lookup(name)
		require.True(t, ok, "pattern %q should be registered", name)
		assert.Empty(t, m.Match(g))
	}
}

func TestRegistry_UnknownPatternNotFound(t *testing.T) {
	r := rewrite.NewRegistry()
	_, ok := r.Lookup("NotAPattern")
	assert.False(t, ok)
}

func TestRegistry_RegisterOverridesByName(t *testing.T) {
	r := rewrite.NewRegistry()
	r.Register(fakeMatcher{name: "RMSNorm"})
	m, ok := r.Lookup("RMSNorm")
	require.True(t, ok)
	assert.Nil(t, m.Match(nil))
}

type fakeMatcher struct{ name string }

func (f fakeMatcher) Name() string                      { return f.name }
func (f fakeMatcher) Match(*model.Graph) []model.OpNode { return nil }
