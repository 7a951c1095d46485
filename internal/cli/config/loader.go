package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every graphprep environment variable.
const EnvPrefix = "GRAPHPREP_"

// credentialPrefix prefixes the Graphistry variables read from the
// environment and the .env file.
const credentialPrefix = "GRAPHISTRY_"

// credentialKeys maps the Graphistry variables to config keys.
var credentialKeys = map[string]string{
	"GRAPHISTRY_USER":   "graphistry.username",
	"GRAPHISTRY_PASS":   "graphistry.password",
	"GRAPHISTRY_SERVER": "graphistry.server",
}

// flagKeys maps flags whose names differ from their config keys.
var flagKeys = map[string]string{
	"nodes":  "nodes_path",
	"edges":  "edges_path",
	"config": "",
}

var (
	k              = koanf.New(".")
	configFileUsed string
	envFileUsed    string
)

type (
	configCtxKey struct{}
	loggerKey    struct{}
)

// findConfigFile returns explicit, or the first of graphprep.yaml and
// graphprep.yml found in the current directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"graphprep.yaml", "graphprep.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func credentialKey(s string) string {
	return credentialKeys[s]
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	envFileUsed = ""
}

// Load reads configuration from every source and validates it.
// Precedence (highest to lowest): flags > process env > .env file > config
// file > defaults.
//
// Relative paths that do not come from flags are resolved against the
// directory of the config file, when one is used.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	ResetConfig()

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"nodes_path":          DefaultNodesPath,
		"edges_path":          DefaultEdgesPath,
		"edge_cap":            DefaultEdgeCap,
		"loader":              DefaultLoader,
		"exporter":            DefaultExporter,
		"env_file":            DefaultEnvFile,
		"verbose":             false,
		"output":              DefaultOutput,
		"graphistry.server":   DefaultServer,
		"graphistry.protocol": DefaultProtocol,
		"graphistry.api":      DefaultAPI,
		"graphistry.encoding": DefaultEncoding,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	var baseDir string
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}

	// 3. .env file, credential keys only
	envFile, explicitEnvFile := envFilePath(flags, baseDir)
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := k.Load(file.Provider(envFile), dotenv.ParserEnv(credentialPrefix, ".", credentialKey)); err != nil {
				return nil, fmt.Errorf("error reading env file %s: %w", envFile, err)
			}
			envFileUsed = envFile
		} else if explicitEnvFile {
			return nil, fmt.Errorf("env file %s: %w", envFile, err)
		}
	}

	// 4. Process environment
	// Transform: GRAPHPREP_EDGE_CAP -> edge_cap, GRAPHPREP_GRAPHISTRY__ENCODING -> graphistry.encoding
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	if err := k.Load(env.Provider(credentialPrefix, ".", credentialKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Decode, resolve and validate
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if !changed(flags, "nodes") {
		cfg.NodesPath = resolvePathRelativeTo(cfg.NodesPath, baseDir)
	}
	if !changed(flags, "edges") {
		cfg.EdgesPath = resolvePathRelativeTo(cfg.EdgesPath, baseDir)
	}
	cfg.DuckDBPath = resolvePathRelativeTo(cfg.DuckDBPath, baseDir)
	cfg.EnvFile = envFile
	cfg.Loader = strings.ToLower(cfg.Loader)
	cfg.Exporter = strings.ToLower(cfg.Exporter)
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	cfg.Graphistry.Encoding = strings.ToLower(cfg.Graphistry.Encoding)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envFilePath picks the .env path. The flag wins and is taken as given;
// otherwise the configured value is resolved against baseDir.
func envFilePath(flags *pflag.FlagSet, baseDir string) (string, bool) {
	if changed(flags, "env-file") {
		v, _ := flags.GetString("env-file")
		return v, v != ""
	}
	if v, ok := os.LookupEnv(EnvPrefix + "ENV_FILE"); ok {
		return v, v != ""
	}
	return resolvePathRelativeTo(k.String("env_file"), baseDir), false
}

func changed(flags *pflag.FlagSet, name string) bool {
	return flags != nil && flags.Changed(name)
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetEnvFileUsed returns the path to the .env file that was read, if any.
func GetEnvFileUsed() string {
	return envFileUsed
}

// NewContext returns ctx carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configCtxKey{}, cfg)
}

// FromContext returns the config stored in ctx, or the defaults.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configCtxKey{}).(*Config); ok {
		return c
	}
	return Default()
}

// WithLogger returns ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
