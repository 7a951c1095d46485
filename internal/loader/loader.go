// Package loader reads the node and edge tables from disk.
//
// Loaders are registered by name and selected through configuration:
//
//	l, err := loader.New(ctx, loader.Config{Type: "duckdb"}, logger)
//	if err != nil { ... }
//	defer l.Close()
//	edges, err := l.LoadEdges(ctx, "data/dataset_edges.csv")
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/graphprep/internal/graph"
)

// Config selects and configures a loader.
type Config struct {
	// Type is the registered loader name ("duckdb", "csv").
	Type string
	// Path is the DuckDB database path. Empty means in-memory.
	Path string
}

// Loader reads node and edge tables into ordered record slices.
type Loader interface {
	// Open prepares the loader for reads.
	Open(ctx context.Context, cfg Config) error

	// LoadNodes reads the node table at path in file order.
	LoadNodes(ctx context.Context, path string) ([]graph.Node, error)

	// LoadEdges reads the edge table at path in file order.
	LoadEdges(ctx context.Context, path string) ([]graph.Edge, error)

	// Close releases any resources held by the loader.
	Close() error
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Loader)
)

// Register adds a loader factory under name.
func Register(name string, factory func(*slog.Logger) Loader) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// List returns all registered loader names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates and opens the loader named by cfg.Type.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Loader, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Type == "" {
		return nil, fmt.Errorf("loader type not specified")
	}

	registryMu.RLock()
	factory, ok := registry[strings.ToLower(cfg.Type)]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownLoaderError{Type: cfg.Type, Available: List()}
	}

	l := factory(logger)
	if err := l.Open(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to open %s loader: %w", cfg.Type, err)
	}
	return l, nil
}

// UnknownLoaderError is returned when no loader is registered under a name.
type UnknownLoaderError struct {
	Type      string
	Available []string
}

func (e *UnknownLoaderError) Error() string {
	return fmt.Sprintf("unknown loader type %q (available: %s)", e.Type, strings.Join(e.Available, ", "))
}

// MissingColumnError is returned when a table lacks a required column.
type MissingColumnError struct {
	Path    string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Path, strings.Join(e.Columns, ", "))
}

// missingColumns returns the entries of required absent from have.
// Comparison is case-insensitive.
func missingColumns(have []string, required []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, c := range have {
		set[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	var missing []string
	for _, c := range required {
		if _, ok := set[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

func init() {
	Register("duckdb", func(l *slog.Logger) Loader { return NewDuckDB(l) })
	Register("csv", func(l *slog.Logger) Loader { return NewCSV(l) })
}
