package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/graphprep/internal/exporter"
	"github.com/leapstack-labs/graphprep/internal/graph"
	"github.com/leapstack-labs/graphprep/internal/loader"
	"github.com/leapstack-labs/graphprep/internal/prep"
)

// Prepare loads both tables and prepares them without exporting.
func (e *Engine) Prepare(ctx context.Context) (*Result, error) {
	res := newResult()
	e.logger.Info("starting prepare", "run_id", res.RunID)

	err := e.prepare(ctx, res)
	e.finish(res, err)
	return res, err
}

// Run loads, prepares and exports the dataset.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	res := newResult()
	e.logger.Info("starting run", "run_id", res.RunID)

	err := e.prepare(ctx, res)
	if err == nil {
		err = e.timed(res, StageRenderInit, func() error {
			return e.export(ctx, res)
		})
	}
	e.finish(res, err)
	return res, err
}

func (e *Engine) prepare(ctx context.Context, res *Result) error {
	l, err := loader.New(ctx, e.loaderCfg, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}
	defer func() { _ = l.Close() }()

	var ds graph.Dataset

	if err := e.timed(res, StageEdgeParsing, func() error {
		ds.Edges, err = l.LoadEdges(ctx, e.edgesPath)
		return err
	}); err != nil {
		return fmt.Errorf("failed to load edges: %w", err)
	}

	if err := e.timed(res, StageNodeParsing, func() error {
		ds.Nodes, err = l.LoadNodes(ctx, e.nodesPath)
		return err
	}); err != nil {
		return fmt.Errorf("failed to load nodes: %w", err)
	}

	res.LoadedNodes, res.LoadedEdges = len(ds.Nodes), len(ds.Edges)
	e.logger.Debug("tables loaded", "run_id", res.RunID, "nodes", res.LoadedNodes, "edges", res.LoadedEdges)

	_ = e.timed(res, StageDataTransformation, func() error {
		ds.Edges = prep.Subset(ds.Edges, e.edgeCap)
		ds.Nodes = prep.Filter(ds.Nodes, ds.Edges)
		return nil
	})

	_ = e.timed(res, StageGraphPreparation, func() error {
		ds.Nodes = prep.DeriveNodes(ds.Nodes)
		ds.Edges = prep.DeriveEdges(ds.Edges)
		return nil
	})

	res.Dataset = ds
	res.NodeCount, res.EdgeCount = len(ds.Nodes), len(ds.Edges)
	return nil
}

func (e *Engine) export(ctx context.Context, res *Result) error {
	cfg := e.exporterCfg
	if cfg.Type == "" {
		cfg.Type = exporter.NoneName
	}
	if cfg.Name == "" {
		cfg.Name = "graphprep-" + res.RunID[:8]
	}

	exp, err := exporter.New(cfg, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	out, err := exp.Export(ctx, res.Dataset, e.bindings)
	if err != nil {
		return fmt.Errorf("failed to export dataset: %w", err)
	}
	res.Export = out
	return nil
}

func (e *Engine) finish(res *Result, err error) {
	e.record(res, StageTotal, time.Since(res.StartedAt))

	if e.metrics != nil {
		e.metrics.SetRows("nodes", res.NodeCount)
		e.metrics.SetRows("edges", res.EdgeCount)
		e.metrics.RecordRun(err)
	}

	if err != nil {
		e.logger.Info("run failed", "run_id", res.RunID, "error", err.Error())
		return
	}
	e.logger.Info("run completed", "run_id", res.RunID, "nodes", res.NodeCount, "edges", res.EdgeCount)
}
