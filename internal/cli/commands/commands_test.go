package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/graphprep/internal/cli/config"
	"github.com/leapstack-labs/graphprep/internal/cli/output"
	clitest "github.com/leapstack-labs/graphprep/internal/cli/testutil"
	"github.com/leapstack-labs/graphprep/internal/testutil"
)

const nodesCSV = `node_id,mass,tagged
1,10,true
2,40,false
3,60,false
4,,true
`

const edgesCSV = `source_id,target_id,influence,category
1,2,-8,red
2,3,0,green
3,4,2,purple
`

// testConfig writes the fixtures and returns a config using the csv loader.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Loader = "csv"
	cfg.NodesPath = filepath.Join(dir, "nodes.csv")
	cfg.EdgesPath = filepath.Join(dir, "edges.csv")
	cfg.EdgeCap = 2
	require.NoError(t, os.WriteFile(cfg.NodesPath, []byte(nodesCSV), 0o600))
	require.NoError(t, os.WriteFile(cfg.EdgesPath, []byte(edgesCSV), 0o600))
	return cfg
}

// execute runs cmd with cfg and a renderer in mode, returning stdout.
// Non-JSON output is checked for escape codes and markdown structure.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, mode output.Mode, args ...string) (string, error) {
	t.Helper()
	tr := clitest.NewTestRenderer(mode, false)

	ctx := config.NewContext(context.Background(), cfg)
	ctx = config.WithLogger(ctx, testutil.NewTestLogger(t))
	ctx = output.NewContext(ctx, tr.Renderer)

	cmd.SetArgs(args)
	cmd.SetOut(tr.Out)
	cmd.SetErr(tr.ErrOut)
	err := cmd.ExecuteContext(ctx)

	clitest.AssertNoANSI(t, tr.Output())
	if mode == output.ModeMarkdown {
		clitest.AssertValidMarkdown(t, tr.Output())
	}
	return tr.Output(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewRunCommand(), "run", []string{"dry-run"}},
		{NewBenchCommand(), "bench", []string{"dry-run", "metrics-file"}},
		{NewPrepareCommand(), "prepare", []string{"limit"}},
		{NewVersionCommand("1.0.0"), "version", nil},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "graphprep v1.2.3")
}

func TestRun_DryRun(t *testing.T) {
	cfg := testConfig(t)

	out, err := execute(t, NewRunCommand(), cfg, output.ModeMarkdown, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "# Run ")
	assert.Contains(t, out, "- **Nodes**: 3 (of 4 loaded)")
	assert.Contains(t, out, "- **Edges**: 2 (of 3 loaded)")
	assert.Contains(t, out, "- **Exporter**: none")
	assert.NotContains(t, out, "Stage timings")
}

func TestRun_MissingCredentials(t *testing.T) {
	cfg := testConfig(t)

	_, err := execute(t, NewRunCommand(), cfg, output.ModeMarkdown)
	assert.ErrorIs(t, err, config.ErrMissingCredentials)
}

func TestRun_Graphistry(t *testing.T) {
	var (
		paths       []string
		datasetName string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		paths = append(paths, r.URL.Path)
		switch {
		case r.URL.Path == "/api/v2/auth/token/generate":
			_, _ = io.WriteString(w, `{"token":"opaque"}`)
		case r.URL.Path == "/api/v2/upload/datasets/":
			var req struct {
				Name string `json:"name"`
			}
			_ = json.Unmarshal(body, &req)
			datasetName = req.Name
			_, _ = io.WriteString(w, `{"success":true,"data":{"dataset_id":"xyz"}}`)
		default:
			_, _ = io.WriteString(w, `{"success":true}`)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(t)
	cfg.Graphistry.Server = strings.TrimPrefix(srv.URL, "http://")
	cfg.Graphistry.Protocol = "http"
	cfg.Graphistry.Username = "alice"
	cfg.Graphistry.Password = "pw"

	out, err := execute(t, NewRunCommand(), cfg, output.ModeJSON)
	require.NoError(t, err)

	var res struct {
		RunID     string `json:"run_id"`
		NodeCount int    `json:"node_count"`
		Export    struct {
			DatasetID string `json:"dataset_id"`
			URL       string `json:"url"`
		} `json:"export"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.NodeCount)
	assert.Equal(t, "xyz", res.Export.DatasetID)
	require.Len(t, res.RunID, 36)
	assert.Equal(t, "graphprep-"+res.RunID[:8], datasetName)
	assert.Equal(t, srv.URL+"/graph/graph.html?dataset=xyz", res.Export.URL)

	assert.Equal(t, []string{
		"/api/v2/auth/token/generate",
		"/api/v2/upload/datasets/",
		"/api/v2/upload/datasets/xyz/edges/parquet",
		"/api/v2/upload/datasets/xyz/nodes/parquet",
	}, paths)
}

func TestBench(t *testing.T) {
	cfg := testConfig(t)
	metricsFile := filepath.Join(t.TempDir(), "bench.prom")

	out, err := execute(t, NewBenchCommand(), cfg, output.ModeMarkdown, "--dry-run", "--metrics-file", metricsFile)
	require.NoError(t, err)

	assert.Contains(t, out, "## Stage timings")
	for _, stage := range []string{"edge_parsing", "node_parsing", "data_transformation", "graph_preparation", "render_init", "total_time"} {
		assert.Contains(t, out, "| "+stage+" |")
	}
	assert.Contains(t, out, "| node_count | 3 |")
	assert.Contains(t, out, "| edge_count | 2 |")

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `graphprep_stage_duration_seconds{stage="render_init"}`)
	assert.Contains(t, string(data), `graphprep_runs_total{status="success"} 1`)
}

func TestBench_FailureStillWritesMetrics(t *testing.T) {
	cfg := testConfig(t)
	cfg.EdgesPath = filepath.Join(t.TempDir(), "missing.csv")
	metricsFile := filepath.Join(t.TempDir(), "bench.prom")

	_, err := execute(t, NewBenchCommand(), cfg, output.ModeMarkdown, "--dry-run", "--metrics-file", metricsFile)
	require.Error(t, err)

	data, readErr := os.ReadFile(metricsFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), `graphprep_runs_total{status="failure"} 1`)
}

func TestPrepare(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.EdgeCap = 3

		out, err := execute(t, NewPrepareCommand(), cfg, output.ModeJSON, "--limit", "2")
		require.NoError(t, err)

		var got PrepareOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got.Nodes, 2)
		require.Len(t, got.Edges, 2)
		assert.Equal(t, "node_1", got.Nodes[0].Label)
		assert.Equal(t, 4.0, got.Edges[0].Width)
		assert.Equal(t, "computed_width", got.Bindings.EdgeWeight)
	})

	t.Run("missing mass is null", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.EdgeCap = 3

		out, err := execute(t, NewPrepareCommand(), cfg, output.ModeJSON, "--limit", "10")
		require.NoError(t, err)

		var got PrepareOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got.Nodes, 4)
		assert.Nil(t, got.Nodes[3].Mass)
		assert.Equal(t, 1.0, got.Nodes[3].Size)
	})

	t.Run("markdown tables", func(t *testing.T) {
		cfg := testConfig(t)

		out, err := execute(t, NewPrepareCommand(), cfg, output.ModeMarkdown)
		require.NoError(t, err)
		assert.Contains(t, out, "## Nodes (first 3)")
		assert.Contains(t, out, "| 1 | 10 | true | 1 | #3B82F6 | node_1 |")
		assert.Contains(t, out, "## Edges (first 2)")
	})

	t.Run("no preview", func(t *testing.T) {
		cfg := testConfig(t)

		out, err := execute(t, NewPrepareCommand(), cfg, output.ModeMarkdown, "--limit", "0")
		require.NoError(t, err)
		assert.NotContains(t, out, "## Nodes")
	})
}
