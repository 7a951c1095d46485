package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/graphprep/internal/cli/config"
	"github.com/leapstack-labs/graphprep/internal/cli/output"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	DryRun bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load, prepare and upload the graph",
		Long: `Load the node and edge tables, keep the first --edge-cap edges and the
nodes they reference, derive the visual attributes, and upload the result
to Graphistry. The viewer URL is printed on success.`,
		Example: `  # Upload with credentials from .env
  graphprep run

  # Use other inputs and a smaller cap
  graphprep run --nodes data/n.csv --edges data/e.csv --edge-cap 200

  # Prepare everything but skip the upload
  graphprep run --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Prepare the graph but skip the upload")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	r := output.FromContext(ctx)

	exporterType, err := exporterFor(cfg, opts.DryRun)
	if err != nil {
		return err
	}

	eng, err := createEngine(cfg, exporterType, config.GetLogger(ctx), nil)
	if err != nil {
		return err
	}

	res, err := eng.Run(ctx)
	if err != nil {
		return err
	}

	return renderRun(r, res, false)
}
