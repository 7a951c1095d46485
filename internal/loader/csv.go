package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/graphprep/internal/graph"
)

// CSV reads tables with encoding/csv and no database. Identifiers are kept
// verbatim (trimmed), so "07" and "7" are different nodes here, unlike the
// DuckDB loader which infers integer ids.
type CSV struct {
	logger *slog.Logger
}

// NewCSV creates a CSV loader.
func NewCSV(logger *slog.Logger) *CSV {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CSV{logger: logger}
}

// Open is a no-op; the CSV loader holds no resources.
func (c *CSV) Open(context.Context, Config) error { return nil }

// Close is a no-op.
func (c *CSV) Close() error { return nil }

// LoadNodes reads the node table in file order.
func (c *CSV) LoadNodes(ctx context.Context, path string) ([]graph.Node, error) {
	var nodes []graph.Node
	err := c.readRows(ctx, path, graph.NodeColumns, func(line int, get func(string) string) error {
		mass, err := parseFloat(get(graph.ColMass))
		if err != nil {
			return fmt.Errorf("line %d: invalid %s: %w", line, graph.ColMass, err)
		}
		tagged, err := parseBool(get(graph.ColTagged))
		if err != nil {
			return fmt.Errorf("line %d: invalid %s: %w", line, graph.ColTagged, err)
		}
		nodes = append(nodes, graph.Node{
			ID:     get(graph.ColNodeID),
			Mass:   mass,
			Tagged: tagged,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("nodes loaded", "path", path, "rows", len(nodes))
	return nodes, nil
}

// LoadEdges reads the edge table in file order.
func (c *CSV) LoadEdges(ctx context.Context, path string) ([]graph.Edge, error) {
	var edges []graph.Edge
	err := c.readRows(ctx, path, graph.EdgeColumns, func(line int, get func(string) string) error {
		influence, err := parseFloat(get(graph.ColInfl))
		if err != nil {
			return fmt.Errorf("line %d: invalid %s: %w", line, graph.ColInfl, err)
		}
		edges = append(edges, graph.Edge{
			SourceID:  get(graph.ColSource),
			TargetID:  get(graph.ColTarget),
			Influence: influence,
			Category:  get(graph.ColCat),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("edges loaded", "path", path, "rows", len(edges))
	return edges, nil
}

// readRows streams the records of path to fn. get returns the trimmed cell
// for a column name, or "" when the row is short.
func (c *CSV) readRows(ctx context.Context, path string, required []string, fn func(line int, get func(string) string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &MissingColumnError{Path: path, Columns: required}
	}
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if missing := missingColumns(header, required); len(missing) > 0 {
		return &MissingColumnError{Path: path, Columns: missing}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		line++

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if err := fn(line, get); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
}

// parseFloat treats an empty cell as a missing value (NaN).
func parseFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseBool treats an empty cell as false.
func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

var _ Loader = (*CSV)(nil)
