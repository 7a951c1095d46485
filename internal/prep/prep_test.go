package prep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/graphprep/internal/graph"
)

func edge(src, dst string) graph.Edge {
	return graph.Edge{SourceID: src, TargetID: dst}
}

func TestSubset(t *testing.T) {
	edges := []graph.Edge{edge("1", "2"), edge("2", "3"), edge("3", "4")}

	tests := []struct {
		name  string
		limit int
		want  []graph.Edge
	}{
		{"cap above length", 10, edges},
		{"cap equals length", 3, edges},
		{"prefix", 2, edges[:2]},
		{"zero cap", 0, []graph.Edge{}},
		{"negative cap", -1, []graph.Edge{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subset(edges, tt.limit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubset_DoesNotAliasInput(t *testing.T) {
	edges := []graph.Edge{edge("1", "2"), edge("2", "3")}
	got := Subset(edges, 2)
	got[0].SourceID = "changed"
	assert.Equal(t, "1", edges[0].SourceID)
}

func TestFilter(t *testing.T) {
	nodes := []graph.Node{{ID: "4"}, {ID: "1"}, {ID: "2"}, {ID: "9"}, {ID: "3"}}

	t.Run("keeps referenced nodes in node order", func(t *testing.T) {
		got := Filter(nodes, []graph.Edge{edge("3", "1"), edge("1", "4")})
		ids := make([]string, len(got))
		for i, n := range got {
			ids[i] = n.ID
		}
		assert.Equal(t, []string{"4", "1", "3"}, ids)
	})

	t.Run("missing node records pass through silently", func(t *testing.T) {
		got := Filter(nodes, []graph.Edge{edge("2", "100")})
		require.Len(t, got, 1)
		assert.Equal(t, "2", got[0].ID)
	})

	t.Run("no edges keeps no nodes", func(t *testing.T) {
		assert.Empty(t, Filter(nodes, nil))
	})
}

func TestNodeAttributes(t *testing.T) {
	tests := []struct {
		name      string
		mass      float64
		tagged    bool
		wantSize  float64
		wantColor string
	}{
		{"floor reached exactly", 10, true, 1.0, graph.TaggedColor},
		{"above floor", 50, false, 5.0, graph.DefaultColor},
		{"zero mass", 0, false, 1.0, graph.DefaultColor},
		{"negative mass", -40, true, 1.0, graph.TaggedColor},
		{"nan mass", math.NaN(), false, 1.0, graph.DefaultColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantSize, NodeSize(tt.mass), 1e-9)
			assert.Equal(t, tt.wantColor, NodeColor(tt.tagged))
		})
	}
}

func TestEdgeAttributes(t *testing.T) {
	tests := []struct {
		name        string
		influence   float64
		wantWidth   float64
		wantOpacity float64
	}{
		{"negative max", -8, 4.0, 0.9},
		{"zero", 0, 1.0, 0.4},
		{"half", 4, 2.5, 0.65},
		{"negative half", -4, 2.5, 0.65},
		{"beyond clamp", 120, 4.0, 0.9},
		{"positive infinity", math.Inf(1), 4.0, 0.9},
		{"negative infinity", math.Inf(-1), 4.0, 0.9},
		{"nan", math.NaN(), 1.0, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantWidth, EdgeWidth(tt.influence), 1e-9)
			assert.InDelta(t, tt.wantOpacity, EdgeOpacity(tt.influence), 1e-9)
		})
	}
}

func TestDeriveNodes(t *testing.T) {
	in := []graph.Node{{ID: "7", Mass: 10, Tagged: true}}
	out := DeriveNodes(in)

	require.Len(t, out, 1)
	assert.Equal(t, "node_7", out[0].Label)
	assert.Equal(t, graph.TaggedColor, out[0].Color)
	assert.InDelta(t, 1.0, out[0].Size, 1e-9)
	assert.Empty(t, in[0].Label, "input must not be modified")
}

func TestDeriveEdges(t *testing.T) {
	in := []graph.Edge{
		{SourceID: "1", TargetID: "2", Influence: -8, Category: "red"},
		{SourceID: "2", TargetID: "3", Influence: 0, Category: "purple"},
	}
	out := DeriveEdges(in)

	require.Len(t, out, 2)
	assert.Equal(t, "#F87171", out[0].Color)
	assert.Equal(t, "red", out[0].Label)
	assert.InDelta(t, 4.0, out[0].Width, 1e-9)
	assert.Equal(t, graph.FallbackEdgeColor, out[1].Color)
	assert.Equal(t, "purple", out[1].Label)
	assert.InDelta(t, 0.4, out[1].Opacity, 1e-9)
}

func TestPrepare(t *testing.T) {
	ds := graph.Dataset{
		Nodes: []graph.Node{{ID: "1", Mass: 30}, {ID: "2"}, {ID: "3"}, {ID: "4"}},
		Edges: []graph.Edge{
			{SourceID: "1", TargetID: "2", Influence: 2, Category: "green"},
			{SourceID: "3", TargetID: "4", Influence: 2, Category: "green"},
		},
	}

	out := Prepare(ds, 1)

	require.Len(t, out.Edges, 1)
	require.Len(t, out.Nodes, 2)
	assert.Equal(t, "node_1", out.Nodes[0].Label)
	assert.InDelta(t, 3.0, out.Nodes[0].Size, 1e-9)
	assert.Equal(t, "#34D399", out.Edges[0].Color)
}
