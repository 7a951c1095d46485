package graphistry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/graphprep/internal/exporter"
	"github.com/leapstack-labs/graphprep/internal/graph"
)

// Name is the registered exporter name.
const Name = "graphistry"

// SupportedAPIVersion is the only upload API version this exporter speaks.
const SupportedAPIVersion = 3

// Exporter uploads a dataset to Graphistry.
type Exporter struct {
	cfg      exporter.Config
	encoding Encoding
	client   *Client
	logger   *slog.Logger
}

// New validates cfg and builds an exporter. httpClient may be nil.
func New(cfg exporter.Config, httpClient *http.Client, logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.APIVersion != 0 && cfg.APIVersion != SupportedAPIVersion {
		return nil, fmt.Errorf("unsupported graphistry api version %d (want %d)", cfg.APIVersion, SupportedAPIVersion)
	}
	enc, err := ParseEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(cfg.Protocol, cfg.Server, httpClient, logger)
	if err != nil {
		return nil, err
	}
	return &Exporter{cfg: cfg, encoding: enc, client: client, logger: logger}, nil
}

// Export logs in, creates the dataset, uploads edges then nodes, and
// returns the viewer URL.
func (e *Exporter) Export(ctx context.Context, ds graph.Dataset, b exporter.Bindings) (*exporter.Result, error) {
	edgeBody, err := EncodeEdges(ds.Edges, e.encoding)
	if err != nil {
		return nil, err
	}
	nodeBody, err := EncodeNodes(ds.Nodes, e.encoding)
	if err != nil {
		return nil, err
	}

	if err := e.client.Login(ctx, e.cfg.Username, e.cfg.Password); err != nil {
		return nil, err
	}

	id, err := e.client.CreateDataset(ctx, DatasetRequest{
		Name:          e.cfg.Name,
		Description:   fmt.Sprintf("%d nodes, %d edges", len(ds.Nodes), len(ds.Edges)),
		NodeEncodings: Encodings{Bindings: NodeBindings(b)},
		EdgeEncodings: Encodings{Bindings: EdgeBindings(b)},
		Metadata:      map[string]any{"agent": "graphprep"},
	})
	if err != nil {
		return nil, err
	}

	if err := e.client.UploadTable(ctx, id, "edges", e.encoding, edgeBody); err != nil {
		return nil, err
	}
	if err := e.client.UploadTable(ctx, id, "nodes", e.encoding, nodeBody); err != nil {
		return nil, err
	}

	url := e.client.ViewerURL(id)
	e.logger.Info("dataset uploaded", "dataset_id", id, "url", url, "nodes", len(ds.Nodes), "edges", len(ds.Edges))

	return &exporter.Result{
		Exporter:  Name,
		DatasetID: id,
		URL:       url,
		Nodes:     len(ds.Nodes),
		Edges:     len(ds.Edges),
	}, nil
}

// NodeBindings maps the node roles onto Graphistry's binding keys.
func NodeBindings(b exporter.Bindings) map[string]string {
	return compact(map[string]string{
		"node":       b.Node,
		"node_title": b.PointTitle,
		"node_color": b.PointColor,
		"node_size":  b.PointSize,
	})
}

// EdgeBindings maps the edge roles onto Graphistry's binding keys.
func EdgeBindings(b exporter.Bindings) map[string]string {
	return compact(map[string]string{
		"source":       b.Source,
		"destination":  b.Destination,
		"edge_title":   b.EdgeTitle,
		"edge_weight":  b.EdgeWeight,
		"edge_opacity": b.EdgeOpacity,
		"edge_color":   b.EdgeColor,
	})
}

// compact drops unbound roles.
func compact(m map[string]string) map[string]string {
	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
	return m
}

func init() {
	exporter.Register(Name, func(cfg exporter.Config, logger *slog.Logger) (exporter.Exporter, error) {
		return New(cfg, nil, logger)
	})
}
