// Package exporter hands prepared tables to a visualization sink.
//
// Concrete exporters live in subpackages and register themselves from init:
//
//	import _ "github.com/leapstack-labs/graphprep/internal/exporter/graphistry"
package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/graphprep/internal/graph"
)

// Config holds exporter settings. Fields a given exporter does not use are
// ignored.
type Config struct {
	Type       string
	Server     string
	Protocol   string
	APIVersion int
	Username   string
	Password   string
	Name       string
	Encoding   string
}

// Bindings maps visualization roles to table columns.
type Bindings struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Node        string `json:"node"`
	PointTitle  string `json:"point_title"`
	PointColor  string `json:"point_color"`
	PointSize   string `json:"point_size"`
	EdgeTitle   string `json:"edge_title"`
	EdgeWeight  string `json:"edge_weight"`
	EdgeOpacity string `json:"edge_opacity"`
	EdgeColor   string `json:"edge_color"`
}

// DefaultBindings binds the columns produced by the prep stage.
func DefaultBindings() Bindings {
	return Bindings{
		Source:      graph.ColSource,
		Destination: graph.ColTarget,
		Node:        graph.ColNodeID,
		PointTitle:  graph.ColLabel,
		PointColor:  graph.ColColor,
		PointSize:   graph.ColSize,
		EdgeTitle:   graph.ColELabel,
		EdgeWeight:  graph.ColWidth,
		EdgeOpacity: graph.ColOpacity,
		EdgeColor:   graph.ColEColor,
	}
}

// Result describes a completed export.
type Result struct {
	Exporter  string `json:"exporter"`
	DatasetID string `json:"dataset_id,omitempty"`
	URL       string `json:"url,omitempty"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
}

// Exporter sends a prepared dataset to its destination. It must not
// transform the rows.
type Exporter interface {
	Export(ctx context.Context, ds graph.Dataset, b Bindings) (*Result, error)
}

// Factory builds an exporter from configuration.
type Factory func(cfg Config, logger *slog.Logger) (Exporter, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds an exporter factory under name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// List returns all registered exporter names (sorted).
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

// IsRegistered reports whether an exporter named name exists.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[strings.ToLower(name)]
	return ok
}

// New builds the exporter named by cfg.Type.
func New(cfg Config, logger *slog.Logger) (Exporter, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Type == "" {
		return nil, fmt.Errorf("exporter type not specified")
	}

	registryMu.RLock()
	factory, ok := registry[strings.ToLower(cfg.Type)]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownExporterError{Type: cfg.Type, Available: List()}
	}
	return factory(cfg, logger)
}

// UnknownExporterError is returned when no exporter is registered under a name.
type UnknownExporterError struct {
	Type      string
	Available []string
}

func (e *UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown exporter type %q (available: %s)", e.Type, strings.Join(e.Available, ", "))
}
