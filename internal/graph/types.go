// Package graph defines the node and edge records that flow through the
// preparation pipeline, together with their derived visual attributes.
package graph

// Column names shared by the loaders and the exporters.
const (
	ColNodeID  = "node_id"
	ColMass    = "mass"
	ColTagged  = "tagged"
	ColSize    = "size"
	ColColor   = "color"
	ColLabel   = "label"
	ColSource  = "source_id"
	ColTarget  = "target_id"
	ColInfl    = "influence"
	ColCat     = "category"
	ColWidth   = "computed_width"
	ColOpacity = "computed_opacity"
	ColEColor  = "edge_color"
	ColELabel  = "edge_label"
)

// NodeColumns lists the columns a node table must provide.
var NodeColumns = []string{ColNodeID, ColMass, ColTagged}

// EdgeColumns lists the columns an edge table must provide.
var EdgeColumns = []string{ColSource, ColTarget, ColInfl, ColCat}

// Node is a single row of the node table.
// Size, Color and Label are zero until the deriver fills them.
type Node struct {
	ID     string  `json:"node_id" parquet:"node_id"`
	Mass   float64 `json:"mass" parquet:"mass"`
	Tagged bool    `json:"tagged" parquet:"tagged"`

	Size  float64 `json:"size" parquet:"size"`
	Color string  `json:"color" parquet:"color"`
	Label string  `json:"label" parquet:"label"`
}

// Edge is a single row of the edge table.
type Edge struct {
	SourceID  string  `json:"source_id" parquet:"source_id"`
	TargetID  string  `json:"target_id" parquet:"target_id"`
	Influence float64 `json:"influence" parquet:"influence"`
	Category  string  `json:"category" parquet:"category"`

	Width   float64 `json:"computed_width" parquet:"computed_width"`
	Opacity float64 `json:"computed_opacity" parquet:"computed_opacity"`
	Color   string  `json:"edge_color" parquet:"edge_color"`
	Label   string  `json:"edge_label" parquet:"edge_label"`
}

// Dataset holds both tables in input order.
type Dataset struct {
	Nodes []Node
	Edges []Edge
}
