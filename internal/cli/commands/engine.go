package commands

import (
	"log/slog"

	"github.com/leapstack-labs/graphprep/internal/cli/config"
	"github.com/leapstack-labs/graphprep/internal/engine"
	"github.com/leapstack-labs/graphprep/internal/exporter"
	"github.com/leapstack-labs/graphprep/internal/loader"
	"github.com/leapstack-labs/graphprep/internal/metrics"

	// Registers the graphistry exporter.
	_ "github.com/leapstack-labs/graphprep/internal/exporter/graphistry"
)

// createEngine builds an engine from the loaded configuration. exporterType
// overrides cfg.Exporter when non-empty.
func createEngine(cfg *config.Config, exporterType string, logger *slog.Logger, reg *metrics.Registry) (*engine.Engine, error) {
	if exporterType == "" {
		exporterType = cfg.Exporter
	}

	return engine.New(engine.Config{
		Loader: loader.Config{
			Type: cfg.Loader,
			Path: cfg.DuckDBPath,
		},
		Exporter: exporter.Config{
			Type:       exporterType,
			Server:     cfg.Graphistry.Server,
			Protocol:   cfg.Graphistry.Protocol,
			APIVersion: cfg.Graphistry.API,
			Username:   cfg.Graphistry.Username,
			Password:   cfg.Graphistry.Password,
			Name:       cfg.Graphistry.DatasetName,
			Encoding:   cfg.Graphistry.Encoding,
		},
		NodesPath: cfg.NodesPath,
		EdgesPath: cfg.EdgesPath,
		EdgeCap:   cfg.EdgeCap,
		Logger:    logger,
		Metrics:   reg,
	})
}

// exporterFor picks the exporter for a run and checks its credentials.
func exporterFor(cfg *config.Config, dryRun bool) (string, error) {
	if dryRun {
		return exporter.NoneName, nil
	}
	if err := cfg.RequireCredentials(); err != nil {
		return "", err
	}
	return cfg.Exporter, nil
}
