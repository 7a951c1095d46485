package graphistry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/leapstack-labs/graphprep/internal/graph"
)

// Encoding is the wire format of an uploaded table.
type Encoding string

// Supported encodings.
const (
	EncodingParquet Encoding = "parquet"
	EncodingJSON    Encoding = "json"
)

// ParseEncoding accepts "parquet" or "json", case-insensitively. Empty
// means parquet.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(s)) {
	case "", EncodingParquet:
		return EncodingParquet, nil
	case EncodingJSON:
		return EncodingJSON, nil
	}
	return "", fmt.Errorf("unsupported graphistry encoding %q (want parquet or json)", s)
}

// Format is the path segment the upload endpoint expects.
func (e Encoding) Format() string { return string(e) }

// ContentType is the request content type for the encoding.
func (e Encoding) ContentType() string {
	if e == EncodingJSON {
		return "application/json"
	}
	return "application/octet-stream"
}

// EncodeNodes serializes the node table.
func EncodeNodes(nodes []graph.Node, enc Encoding) ([]byte, error) {
	if enc == EncodingJSON {
		rows := make([]jsonNode, len(nodes))
		for i, n := range nodes {
			rows[i] = jsonNode{
				ID: n.ID, Mass: finite(n.Mass), Tagged: n.Tagged,
				Size: n.Size, Color: n.Color, Label: n.Label,
			}
		}
		return encodeJSON(rows)
	}
	return encodeParquet(nodes)
}

// EncodeEdges serializes the edge table.
func EncodeEdges(edges []graph.Edge, enc Encoding) ([]byte, error) {
	if enc == EncodingJSON {
		rows := make([]jsonEdge, len(edges))
		for i, e := range edges {
			rows[i] = jsonEdge{
				SourceID: e.SourceID, TargetID: e.TargetID,
				Influence: finite(e.Influence), Category: e.Category,
				Width: e.Width, Opacity: e.Opacity, Color: e.Color, Label: e.Label,
			}
		}
		return encodeJSON(rows)
	}
	return encodeParquet(edges)
}

// jsonNode and jsonEdge carry the raw inputs as nullable numbers; JSON has
// no NaN.
type jsonNode struct {
	ID     string   `json:"node_id"`
	Mass   *float64 `json:"mass"`
	Tagged bool     `json:"tagged"`
	Size   float64  `json:"size"`
	Color  string   `json:"color"`
	Label  string   `json:"label"`
}

type jsonEdge struct {
	SourceID  string   `json:"source_id"`
	TargetID  string   `json:"target_id"`
	Influence *float64 `json:"influence"`
	Category  string   `json:"category"`
	Width     float64  `json:"computed_width"`
	Opacity   float64  `json:"computed_opacity"`
	Color     string   `json:"edge_color"`
	Label     string   `json:"edge_label"`
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func encodeJSON(rows any) ([]byte, error) {
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return b, nil
}

func encodeParquet[T any](rows []T) ([]byte, error) {
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		return nil, fmt.Errorf("failed to encode parquet: %w", err)
	}
	return buf.Bytes(), nil
}
