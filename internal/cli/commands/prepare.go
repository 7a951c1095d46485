package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/graphprep/internal/cli/config"
	"github.com/leapstack-labs/graphprep/internal/cli/output"
)

// DefaultPreviewLimit is how many rows of each table prepare shows.
const DefaultPreviewLimit = 10

// PrepareOptions holds options for the prepare command.
type PrepareOptions struct {
	Limit int
}

// NewPrepareCommand creates the prepare command.
func NewPrepareCommand() *cobra.Command {
	opts := &PrepareOptions{}

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Prepare the graph and preview the derived rows",
		Long: `Load and prepare the node and edge tables without uploading them, then
print a summary and the first rows of each derived table.`,
		Example: `  # Preview the first 10 rows of each table
  graphprep prepare

  # Preview 25 rows as JSON
  graphprep prepare --limit 25 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrepare(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", DefaultPreviewLimit, "Rows to preview per table (0 for none)")

	return cmd
}

func runPrepare(cmd *cobra.Command, opts *PrepareOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	r := output.FromContext(ctx)

	eng, err := createEngine(cfg, "", config.GetLogger(ctx), nil)
	if err != nil {
		return err
	}

	res, err := eng.Prepare(ctx)
	if err != nil {
		return err
	}

	return renderPrepare(r, res, opts.Limit)
}
