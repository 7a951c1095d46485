package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no graphprep or
// Graphistry variables in the environment.
func isolate(t *testing.T) string {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix) || strings.HasPrefix(name, credentialPrefix) {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("nodes", "", "")
	fs.String("edges", "", "")
	fs.Int("edge-cap", 0, "")
	fs.String("loader", "", "")
	fs.String("exporter", "", "")
	fs.String("env-file", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.StringP("output", "o", "", "")
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.Graphistry.DatasetName, "an unset name is derived from the run id")
	assert.Empty(t, GetConfigFileUsed())
	assert.Empty(t, GetEnvFileUsed())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	project := filepath.Join(dir, "project")
	writeFile(t, filepath.Join(project, "graphprep.yaml"), `
nodes_path: in/nodes.csv
edges_path: /abs/edges.csv
edge_cap: 250
loader: CSV
graphistry:
  server: graphistry.internal
  encoding: json
  dataset_name: demo
`)

	cfg, err := Load(filepath.Join(project, "graphprep.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(project, "in/nodes.csv"), cfg.NodesPath)
	assert.Equal(t, "/abs/edges.csv", cfg.EdgesPath)
	assert.Equal(t, 250, cfg.EdgeCap)
	assert.Equal(t, "csv", cfg.Loader)
	assert.Equal(t, "graphistry.internal", cfg.Graphistry.Server)
	assert.Equal(t, "json", cfg.Graphistry.Encoding)
	assert.Equal(t, "demo", cfg.Graphistry.DatasetName)
	assert.Equal(t, DefaultProtocol, cfg.Graphistry.Protocol)
	assert.Equal(t, filepath.Join(project, ".env"), cfg.EnvFile)
}

func TestLoad_DiscoversConfigInCWD(t *testing.T) {
	isolate(t)
	writeFile(t, "graphprep.yml", "edge_cap: 7\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.EdgeCap)
	assert.Equal(t, "graphprep.yml", GetConfigFileUsed())
}

func TestLoad_MissingConfigFile(t *testing.T) {
	isolate(t)
	_, err := Load("nope.yaml", nil)
	assert.ErrorContains(t, err, "error reading config file")
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	writeFile(t, ".env", `
GRAPHISTRY_USER=alice
GRAPHISTRY_PASS="s3cret"
GRAPHISTRY_SERVER=viz.example.com
GRAPHISTRY_OTHER=ignored
GRAPHPREP_EDGE_CAP=5
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.Graphistry.Username)
	assert.Equal(t, "s3cret", cfg.Graphistry.Password)
	assert.Equal(t, "viz.example.com", cfg.Graphistry.Server)
	assert.Equal(t, DefaultEdgeCap, cfg.EdgeCap, "only credential keys are read from .env")
	assert.Equal(t, ".env", GetEnvFileUsed())
}

func TestLoad_ProcessEnvBeatsDotEnv(t *testing.T) {
	isolate(t)
	writeFile(t, ".env", "GRAPHISTRY_USER=from-file\nGRAPHISTRY_PASS=file-pass\n")
	t.Setenv("GRAPHISTRY_USER", "from-env")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Graphistry.Username)
	assert.Equal(t, "file-pass", cfg.Graphistry.Password)
}

func TestLoad_EnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("GRAPHPREP_EDGE_CAP", "42")
	t.Setenv("GRAPHPREP_EXPORTER", "none")
	t.Setenv("GRAPHPREP_GRAPHISTRY__PROTOCOL", "http")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.EdgeCap)
	assert.Equal(t, "none", cfg.Exporter)
	assert.Equal(t, "http", cfg.Graphistry.Protocol)
}

func TestLoad_FlagsWin(t *testing.T) {
	isolate(t)
	writeFile(t, "graphprep.yaml", "edge_cap: 10\nnodes_path: file-nodes.csv\n")
	t.Setenv("GRAPHPREP_EDGE_CAP", "20")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--edge-cap", "30", "--nodes", "rel/nodes.csv", "-o", "json"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.EdgeCap)
	assert.Equal(t, "rel/nodes.csv", cfg.NodesPath, "flag paths stay relative to the CWD")
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, DefaultLoader, cfg.Loader, "unset flags do not override")
}

func TestLoad_ExplicitEnvFile(t *testing.T) {
	isolate(t)
	writeFile(t, "secrets/creds.env", "GRAPHISTRY_USER=bob\nGRAPHISTRY_PASS=pw\n")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--env-file", "secrets/creds.env"}))
	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Graphistry.Username)

	fs = testFlags()
	require.NoError(t, fs.Parse([]string{"--env-file", "missing.env"}))
	_, err = Load("", fs)
	assert.ErrorContains(t, err, "missing.env")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"negative cap", "edge_cap: -1\n", "edge_cap must be at least 0"},
		{"bad loader", "loader: xlsx\n", "loader must be one of [duckdb csv]"},
		{"bad exporter", "exporter: gephi\n", "exporter must be one of"},
		{"bad api", "graphistry:\n  api: 1\n", "graphistry.api must be 3"},
		{"bad encoding", "graphistry:\n  encoding: arrow\n", "graphistry.encoding must be one of"},
		{"bad output", "output: html\n", "output must be one of"},
		{"empty server", "graphistry:\n  server: \"\"\n", "graphistry.server is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			writeFile(t, "graphprep.yaml", tt.yaml)
			_, err := Load("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.RequireCredentials(), ErrMissingCredentials)

	cfg.Graphistry.Username = "alice"
	assert.ErrorIs(t, cfg.RequireCredentials(), ErrMissingCredentials)

	cfg.Graphistry.Password = "pw"
	assert.NoError(t, cfg.RequireCredentials())

	none := Default()
	none.Exporter = "none"
	assert.NoError(t, none.RequireCredentials())
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Default(), FromContext(ctx))
	assert.NotNil(t, GetLogger(ctx))

	cfg := Default()
	cfg.EdgeCap = 3
	assert.Same(t, cfg, FromContext(NewContext(ctx, cfg)))
}
