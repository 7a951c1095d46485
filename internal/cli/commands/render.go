package commands

import (
	"fmt"
	"math"
	"strconv"

	"github.com/leapstack-labs/graphprep/internal/cli/output"
	"github.com/leapstack-labs/graphprep/internal/engine"
	"github.com/leapstack-labs/graphprep/internal/exporter"
	"github.com/leapstack-labs/graphprep/internal/graph"
)

// renderRun prints the outcome of run and bench.
func renderRun(r *output.Renderer, res *engine.Result, withTimings bool) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(res)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Run "+shortID(res.RunID)))
		r.Println("")
		for _, kv := range summary(res) {
			r.Println(output.FormatKeyValue(kv[0], kv[1]))
		}
	default:
		styles := r.Styles()
		r.Header(1, "Run "+shortID(res.RunID))
		for _, kv := range summary(res) {
			r.KeyValue(kv[0], kv[1])
		}
		r.Println("")
		if res.Export != nil && res.Export.URL != "" {
			r.Success("Uploaded to " + res.Export.Exporter)
			r.Println("  " + styles.URL.Render(res.Export.URL))
		} else {
			r.Muted("Upload skipped (dry run)")
		}
	}

	if withTimings {
		r.Println("")
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println(output.FormatHeader(2, "Stage timings"))
			r.Println("")
		} else {
			r.Header(2, "Stage timings")
		}
		r.Table([]string{"Stage", "Seconds"}, timingRows(res))
	}
	return nil
}

func summary(res *engine.Result) [][2]string {
	rows := [][2]string{
		{"Nodes", fmt.Sprintf("%d (of %d loaded)", res.NodeCount, res.LoadedNodes)},
		{"Edges", fmt.Sprintf("%d (of %d loaded)", res.EdgeCount, res.LoadedEdges)},
	}
	if res.Export != nil {
		rows = append(rows, [2]string{"Exporter", res.Export.Exporter})
		if res.Export.DatasetID != "" {
			rows = append(rows, [2]string{"Dataset", res.Export.DatasetID})
		}
		if res.Export.URL != "" {
			rows = append(rows, [2]string{"URL", res.Export.URL})
		}
	}
	return rows
}

func timingRows(res *engine.Result) [][]string {
	rows := make([][]string, 0, len(res.Timings)+2)
	for _, t := range res.Timings {
		rows = append(rows, []string{string(t.Stage), fmt.Sprintf("%.4f", t.Duration.Seconds())})
	}
	rows = append(rows,
		[]string{"node_count", strconv.Itoa(res.NodeCount)},
		[]string{"edge_count", strconv.Itoa(res.EdgeCount)},
	)
	return rows
}

// PrepareOutput is the JSON form of the prepare command.
type PrepareOutput struct {
	Result   *engine.Result    `json:"result"`
	Nodes    []NodePreview     `json:"nodes"`
	Edges    []EdgePreview     `json:"edges"`
	Bindings exporter.Bindings `json:"bindings"`
}

// NodePreview is a derived node row. Mass is null when missing.
type NodePreview struct {
	ID     string   `json:"node_id"`
	Mass   *float64 `json:"mass"`
	Tagged bool     `json:"tagged"`
	Size   float64  `json:"size"`
	Color  string   `json:"color"`
	Label  string   `json:"label"`
}

// EdgePreview is a derived edge row. Influence is null when missing.
type EdgePreview struct {
	SourceID  string   `json:"source_id"`
	TargetID  string   `json:"target_id"`
	Influence *float64 `json:"influence"`
	Category  string   `json:"category"`
	Width     float64  `json:"computed_width"`
	Opacity   float64  `json:"computed_opacity"`
	Color     string   `json:"edge_color"`
	Label     string   `json:"edge_label"`
}

func renderPrepare(r *output.Renderer, res *engine.Result, limit int) error {
	nodes := head(res.Dataset.Nodes, limit)
	edges := head(res.Dataset.Edges, limit)

	if r.EffectiveMode() == output.ModeJSON {
		out := PrepareOutput{
			Result:   res,
			Nodes:    make([]NodePreview, len(nodes)),
			Edges:    make([]EdgePreview, len(edges)),
			Bindings: exporter.DefaultBindings(),
		}
		for i, n := range nodes {
			out.Nodes[i] = NodePreview{n.ID, nullable(n.Mass), n.Tagged, n.Size, n.Color, n.Label}
		}
		for i, e := range edges {
			out.Edges[i] = EdgePreview{e.SourceID, e.TargetID, nullable(e.Influence), e.Category, e.Width, e.Opacity, e.Color, e.Label}
		}
		return r.JSON(out)
	}

	markdown := r.EffectiveMode() == output.ModeMarkdown
	heading := func(level int, text string) {
		if markdown {
			r.Println(output.FormatHeader(level, text))
			r.Println("")
			return
		}
		r.Header(level, text)
	}

	heading(1, "Prepared graph")
	for _, kv := range summary(res) {
		if markdown {
			r.Println(output.FormatKeyValue(kv[0], kv[1]))
		} else {
			r.KeyValue(kv[0], kv[1])
		}
	}
	if limit <= 0 {
		return nil
	}

	r.Println("")
	heading(2, fmt.Sprintf("Nodes (first %d)", len(nodes)))
	nodeRows := make([][]string, len(nodes))
	for i, n := range nodes {
		nodeRows[i] = []string{n.ID, formatFloat(n.Mass), strconv.FormatBool(n.Tagged), formatFloat(n.Size), n.Color, n.Label}
	}
	r.Table([]string{graph.ColNodeID, graph.ColMass, graph.ColTagged, graph.ColSize, graph.ColColor, graph.ColLabel}, nodeRows)

	r.Println("")
	heading(2, fmt.Sprintf("Edges (first %d)", len(edges)))
	edgeRows := make([][]string, len(edges))
	for i, e := range edges {
		edgeRows[i] = []string{
			e.SourceID, e.TargetID, formatFloat(e.Influence), e.Category,
			formatFloat(e.Width), formatFloat(e.Opacity), e.Color, e.Label,
		}
	}
	r.Table([]string{
		graph.ColSource, graph.ColTarget, graph.ColInfl, graph.ColCat,
		graph.ColWidth, graph.ColOpacity, graph.ColEColor, graph.ColELabel,
	}, edgeRows)
	return nil
}

func head[T any](rows []T, limit int) []T {
	if limit <= 0 {
		return nil
	}
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func nullable(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
