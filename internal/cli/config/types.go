// Package config loads graphprep configuration from defaults, an optional
// YAML file, a .env file, the process environment and command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	NodesPath    string           `koanf:"nodes_path" validate:"required"`
	EdgesPath    string           `koanf:"edges_path" validate:"required"`
	EdgeCap      int              `koanf:"edge_cap" validate:"gte=0"`
	Loader       string           `koanf:"loader" validate:"oneof=duckdb csv"`
	DuckDBPath   string           `koanf:"duckdb_path"`
	Exporter     string           `koanf:"exporter" validate:"oneof=graphistry none"`
	EnvFile      string           `koanf:"env_file"`
	Verbose      bool             `koanf:"verbose"`
	OutputFormat string           `koanf:"output" validate:"oneof=auto text markdown json"`
	Graphistry   GraphistryConfig `koanf:"graphistry"`
}

// GraphistryConfig holds the Graphistry server settings and credentials.
type GraphistryConfig struct {
	Server      string `koanf:"server" validate:"required"`
	Protocol    string `koanf:"protocol" validate:"oneof=http https"`
	API         int    `koanf:"api" validate:"eq=3"`
	Username    string `koanf:"username"`
	Password    string `koanf:"password"`
	DatasetName string `koanf:"dataset_name"` // empty: graphprep-<run id prefix>
	Encoding    string `koanf:"encoding" validate:"oneof=parquet json"`
}

// Default configuration values.
const (
	DefaultNodesPath = "data/dataset_nodes.csv"
	DefaultEdgesPath = "data/dataset_edges.csv"
	DefaultEdgeCap   = 1000
	DefaultLoader    = "duckdb"
	DefaultExporter  = "graphistry"
	DefaultEnvFile   = ".env"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultServer    = "hub.graphistry.com"
	DefaultProtocol  = "https"
	DefaultAPI       = 3
	DefaultEncoding  = "parquet"
)

// Default returns a config populated with the default values.
func Default() *Config {
	return &Config{
		NodesPath:    DefaultNodesPath,
		EdgesPath:    DefaultEdgesPath,
		EdgeCap:      DefaultEdgeCap,
		Loader:       DefaultLoader,
		Exporter:     DefaultExporter,
		EnvFile:      DefaultEnvFile,
		OutputFormat: DefaultOutput,
		Graphistry: GraphistryConfig{
			Server:      DefaultServer,
			Protocol:    DefaultProtocol,
			API:         DefaultAPI,
			Encoding:    DefaultEncoding,
		},
	}
}
