package loader

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/graphprep/internal/graph"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// DuckDB loads CSV files through DuckDB's read_csv_auto, which infers column
// types. Identifiers are cast to VARCHAR so node and edge ids compare as the
// same string representation.
type DuckDB struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDuckDB creates an unopened DuckDB loader.
func NewDuckDB(logger *slog.Logger) *DuckDB {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DuckDB{logger: logger}
}

// Open connects to DuckDB. An empty cfg.Path opens an in-memory database.
func (d *DuckDB) Open(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	d.logger.Debug("duckdb connected", "path", path)
	d.db = db
	return nil
}

// Close closes the database connection.
func (d *DuckDB) Close() error {
	if d.db != nil {
		d.logger.Debug("closing duckdb connection")
		return d.db.Close()
	}
	return nil
}

// LoadCSV loads a CSV file into tableName, replacing any previous contents.
// Column types are inferred from every row, not a leading sample.
func (d *DuckDB) LoadCSV(ctx context.Context, tableName string, filePath string) error {
	if d.db == nil {
		return fmt.Errorf("database connection not established")
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true, sample_size=-1)",
		tableName,
		strings.ReplaceAll(absPath, "'", "''"),
	)

	d.logger.Debug("loading csv", "table", tableName, "path", absPath)
	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to load CSV %s: %w", filePath, err)
	}
	return nil
}

// columns returns the column names of tableName in ordinal order.
func (d *DuckDB) columns(ctx context.Context, tableName string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = 'main' AND table_name = ?
		ORDER BY ordinal_position
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	return cols, nil
}

func (d *DuckDB) loadTable(ctx context.Context, tableName, path string, required []string) error {
	if err := d.LoadCSV(ctx, tableName, path); err != nil {
		return err
	}
	cols, err := d.columns(ctx, tableName)
	if err != nil {
		return err
	}
	if missing := missingColumns(cols, required); len(missing) > 0 {
		return &MissingColumnError{Path: path, Columns: missing}
	}
	return nil
}

// LoadNodes reads the node table in file order.
func (d *DuckDB) LoadNodes(ctx context.Context, path string) ([]graph.Node, error) {
	if err := d.loadTable(ctx, "nodes", path, graph.NodeColumns); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT CAST(node_id AS VARCHAR), CAST(mass AS DOUBLE), CAST(tagged AS BOOLEAN)
		FROM nodes
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var nodes []graph.Node
	for rows.Next() {
		var (
			id     sql.NullString
			mass   sql.NullFloat64
			tagged sql.NullBool
		)
		if err := rows.Scan(&id, &mass, &tagged); err != nil {
			return nil, fmt.Errorf("failed to scan node row %d: %w", len(nodes)+1, err)
		}
		nodes = append(nodes, graph.Node{
			ID:     id.String,
			Mass:   nullFloat(mass),
			Tagged: tagged.Valid && tagged.Bool,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	d.logger.Debug("nodes loaded", "path", path, "rows", len(nodes))
	return nodes, nil
}

// LoadEdges reads the edge table in file order.
func (d *DuckDB) LoadEdges(ctx context.Context, path string) ([]graph.Edge, error) {
	if err := d.loadTable(ctx, "edges", path, graph.EdgeColumns); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT CAST(source_id AS VARCHAR), CAST(target_id AS VARCHAR),
		       CAST(influence AS DOUBLE), CAST(category AS VARCHAR)
		FROM edges
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var edges []graph.Edge
	for rows.Next() {
		var (
			src, dst, category sql.NullString
			influence          sql.NullFloat64
		)
		if err := rows.Scan(&src, &dst, &influence, &category); err != nil {
			return nil, fmt.Errorf("failed to scan edge row %d: %w", len(edges)+1, err)
		}
		edges = append(edges, graph.Edge{
			SourceID:  src.String,
			TargetID:  dst.String,
			Influence: nullFloat(influence),
			Category:  category.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	d.logger.Debug("edges loaded", "path", path, "rows", len(edges))
	return edges, nil
}

func nullFloat(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

var _ Loader = (*DuckDB)(nil)
