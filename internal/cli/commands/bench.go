package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/graphprep/internal/cli/config"
	"github.com/leapstack-labs/graphprep/internal/cli/output"
	"github.com/leapstack-labs/graphprep/internal/metrics"
)

// BenchOptions holds options for the bench command.
type BenchOptions struct {
	DryRun      bool
	MetricsFile string
}

// NewBenchCommand creates the bench command.
func NewBenchCommand() *cobra.Command {
	opts := &BenchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the pipeline and report per-stage timings",
		Long: `Run the same pipeline as "run" and print the wall-clock duration of every
stage: edge_parsing, node_parsing, data_transformation, graph_preparation,
render_init and total_time, along with the final node and edge counts.`,
		Example: `  # Time a full run
  graphprep bench

  # Time everything except the upload and keep the numbers
  graphprep bench --dry-run --metrics-file bench.prom`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Skip the upload")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write stage metrics to this file in Prometheus text format")

	return cmd
}

func runBench(cmd *cobra.Command, opts *BenchOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	r := output.FromContext(ctx)
	logger := config.GetLogger(ctx)

	exporterType, err := exporterFor(cfg, opts.DryRun)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	eng, err := createEngine(cfg, exporterType, logger, reg)
	if err != nil {
		return err
	}

	res, runErr := eng.Run(ctx)

	// Timings of a failed run are still worth keeping.
	if opts.MetricsFile != "" {
		if err := reg.WriteTextfile(opts.MetricsFile); err != nil {
			return err
		}
		logger.Debug("metrics written", "path", opts.MetricsFile)
	}
	if runErr != nil {
		return runErr
	}

	return renderRun(r, res, true)
}
