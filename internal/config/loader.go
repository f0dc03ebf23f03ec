package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigDir is the per-project settings directory.
const ConfigDir = ".astdigest"

// EnvPrefix prefixes environment overrides, e.g. ASTDIGEST_OUTPUT_FORMAT.
const EnvPrefix = "ASTDIGEST"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// LoaderOption customizes a loader.
type LoaderOption func(*loader)

// WithConfigFile reads the given file instead of searching rootDir. A
// missing explicit file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) {
		l.configFile = path
	}
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// envKeys are bound explicitly so overrides apply even when the key is
// absent from the config file.
var envKeys = []string{
	"compression.max_depth",
	"compression.preserve_comments",
	"compression.track_control_flow",
	"compression.track_data_flow",
	"compression.include_method_intent",
	"compression.use_symbol_table",
	"compression.deduplicate",
	"compression.prune_empty_nodes",
	"compression.aggregation_level",
	"compression.use_key_mapping",
	"compression.include_tree",
	"compression.count_boolean_operators",
	"compression.comment_top_k",
	"compression.dedupe_floor",
	"compression.min_symbol_length",
	"compression.summary_width",
	"batch.workers",
	"batch.respect_gitignore",
	"batch.cache_size",
	"batch.output_dir",
	"output.format",
	"output.frame",
	"watch.debounce_ms",
	"logging.level",
	"logging.format",
	"logging.output",
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (ASTDIGEST_*)
// 2. Config file (.astdigest/config.yml or .astdigest/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ConfigDir))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("compression.max_depth", d.Compression.MaxDepth)
	v.SetDefault("compression.preserve_comments", d.Compression.PreserveComments)
	v.SetDefault("compression.track_control_flow", d.Compression.TrackControlFlow)
	v.SetDefault("compression.track_data_flow", d.Compression.TrackDataFlow)
	v.SetDefault("compression.include_method_intent", d.Compression.IncludeMethodIntent)
	v.SetDefault("compression.use_symbol_table", d.Compression.UseSymbolTable)
	v.SetDefault("compression.deduplicate", d.Compression.Deduplicate)
	v.SetDefault("compression.prune_empty_nodes", d.Compression.PruneEmptyNodes)
	v.SetDefault("compression.aggregation_level", d.Compression.AggregationLevel)
	v.SetDefault("compression.use_key_mapping", d.Compression.UseKeyMapping)
	v.SetDefault("compression.include_tree", d.Compression.IncludeTree)
	v.SetDefault("compression.count_boolean_operators", d.Compression.CountBooleanOperators)
	v.SetDefault("compression.comment_top_k", d.Compression.CommentTopK)
	v.SetDefault("compression.dedupe_floor", d.Compression.DedupeFloor)
	v.SetDefault("compression.min_symbol_length", d.Compression.MinSymbolLength)
	v.SetDefault("compression.summary_width", d.Compression.SummaryWidth)

	v.SetDefault("intent.method_rules", d.Intent.MethodRules)
	v.SetDefault("comments.keywords", d.Comments.Keywords)

	v.SetDefault("batch.include", d.Batch.Include)
	v.SetDefault("batch.exclude", d.Batch.Exclude)
	v.SetDefault("batch.workers", d.Batch.Workers)
	v.SetDefault("batch.respect_gitignore", d.Batch.RespectGitignore)
	v.SetDefault("batch.cache_size", d.Batch.CacheSize)
	v.SetDefault("batch.output_dir", d.Batch.OutputDir)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.frame", d.Output.Frame)

	v.SetDefault("watch.debounce_ms", d.Watch.DebounceMS)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
