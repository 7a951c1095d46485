// Package prep implements the data-preparation stages of the pipeline:
// edge subsetting, node filtering and visual attribute derivation.
//
// Every function here is pure. Inputs are never modified; outputs are fresh
// slices in input order.
package prep

import (
	"math"

	"github.com/leapstack-labs/graphprep/internal/graph"
)

// Scaling constants for the derived attributes.
const (
	minHalfMass   = 5.0
	sizeScale     = 0.2
	maxInfluence  = 8.0
	minWidth      = 1.0
	widthSpan     = 3.0
	minOpacity    = 0.4
	opacitySpan   = 0.5
	nodeLabelPref = "node_"
)

// Subset returns the first limit edges in input order, or all of them when
// fewer exist. A negative limit is treated as zero.
func Subset(edges []graph.Edge, limit int) []graph.Edge {
	if limit < 0 {
		limit = 0
	}
	if len(edges) < limit {
		limit = len(edges)
	}
	out := make([]graph.Edge, limit)
	copy(out, edges[:limit])
	return out
}

// ReferencedIDs returns the set of node identifiers used as a source or
// target by any edge.
func ReferencedIDs(edges []graph.Edge) map[string]struct{} {
	ids := make(map[string]struct{}, len(edges)*2)
	for _, e := range edges {
		ids[e.SourceID] = struct{}{}
		ids[e.TargetID] = struct{}{}
	}
	return ids
}

// Filter keeps the nodes referenced by at least one edge, in node order.
// Referenced identifiers without a node record are ignored.
func Filter(nodes []graph.Node, edges []graph.Edge) []graph.Node {
	ids := ReferencedIDs(edges)
	out := make([]graph.Node, 0, min(len(nodes), len(ids)))
	for _, n := range nodes {
		if _, ok := ids[n.ID]; ok {
			out = append(out, n)
		}
	}
	return out
}

// NodeSize maps mass to a rendered size. Half the mass is floored at 5
// (NaN included) before scaling, so the result is never below 1.
func NodeSize(mass float64) float64 {
	half := mass / 2
	if !(half > minHalfMass) {
		half = minHalfMass
	}
	return half * sizeScale
}

// NodeColor returns the highlight color for tagged nodes.
func NodeColor(tagged bool) string {
	if tagged {
		return graph.TaggedColor
	}
	return graph.DefaultColor
}

// NodeLabel returns the display label for a node identifier.
func NodeLabel(id string) string {
	return nodeLabelPref + id
}

// clampInfluence returns |influence| capped at 8. NaN counts as zero.
func clampInfluence(influence float64) float64 {
	if math.IsNaN(influence) {
		return 0
	}
	return math.Min(math.Abs(influence), maxInfluence)
}

// EdgeWidth maps influence onto [1, 4].
func EdgeWidth(influence float64) float64 {
	return minWidth + (clampInfluence(influence)/maxInfluence)*widthSpan
}

// EdgeOpacity maps influence onto [0.4, 0.9].
func EdgeOpacity(influence float64) float64 {
	return minOpacity + (clampInfluence(influence)/maxInfluence)*opacitySpan
}

// DeriveNodes returns copies of nodes with size, color and label set.
func DeriveNodes(nodes []graph.Node) []graph.Node {
	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		n.Size = NodeSize(n.Mass)
		n.Color = NodeColor(n.Tagged)
		n.Label = NodeLabel(n.ID)
		out[i] = n
	}
	return out
}

// DeriveEdges returns copies of edges with width, opacity, color and label set.
func DeriveEdges(edges []graph.Edge) []graph.Edge {
	out := make([]graph.Edge, len(edges))
	for i, e := range edges {
		e.Width = EdgeWidth(e.Influence)
		e.Opacity = EdgeOpacity(e.Influence)
		e.Color = graph.CategoryColor(e.Category)
		e.Label = e.Category
		out[i] = e
	}
	return out
}

// Prepare runs subset, filter and derive over a dataset.
func Prepare(ds graph.Dataset, edgeCap int) graph.Dataset {
	edges := Subset(ds.Edges, edgeCap)
	nodes := Filter(ds.Nodes, edges)
	return graph.Dataset{
		Nodes: DeriveNodes(nodes),
		Edges: DeriveEdges(edges),
	}
}
