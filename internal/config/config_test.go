package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/astdigest/internal/engine"
	"github.com/mvp-joe/astdigest/internal/intent"
)

// Test Plan for Config System:
// - Default() returns valid configuration matching the engine defaults
// - Load() uses defaults when no config file exists
// - Load() reads .astdigest/config.yml and merges it with defaults
// - Load() reads an explicit file and fails when it is missing
// - Environment variables override file values and defaults
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects each bad setting with its sentinel
// - Validate() reports every problem at once
// - EngineOptions() carries every toggle plus intent and comment settings

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	cfgDir := filepath.Join(dir, ConfigDir)
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	path := filepath.Join(cfgDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "medium", cfg.Compression.AggregationLevel)
	assert.Equal(t, 50, cfg.Compression.MaxDepth)
	assert.True(t, cfg.Compression.UseKeyMapping)
	assert.False(t, cfg.Compression.CountBooleanOperators)
	assert.Equal(t, []string{"**/*.java"}, cfg.Batch.Include)
	assert.True(t, cfg.Batch.RespectGitignore)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "none", cfg.Output.Frame)
	assert.Equal(t, 500, cfg.Watch.DebounceMS)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, Validate(cfg))
	assert.Equal(t, engine.DefaultOptions().Aggregation, cfg.EngineOptions().Aggregation)
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	expected := Default()
	assert.Equal(t, expected.Compression, cfg.Compression)
	assert.Equal(t, expected.Batch, cfg.Batch)
	assert.Equal(t, expected.Output, cfg.Output)
	assert.Equal(t, expected.Comments, cfg.Comments)
	assert.Empty(t, cfg.Intent.MethodRules)
}

func TestLoad_MergesConfigFileWithDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", `
compression:
  aggregation_level: high
  include_tree: false

intent:
  method_rules:
    - role: lifecycle
      prefixes: ["init", "destroy"]

batch:
  include: ["src/**/*.java"]
  workers: 4

output:
  format: json-indent
  frame: gzip+base64
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "high", cfg.Compression.AggregationLevel)
	assert.False(t, cfg.Compression.IncludeTree)
	assert.True(t, cfg.Compression.TrackDataFlow)
	assert.Equal(t, []intent.PrefixRule{{Role: "lifecycle", Prefixes: []string{"init", "destroy"}}}, cfg.Intent.MethodRules)
	assert.Equal(t, []string{"src/**/*.java"}, cfg.Batch.Include)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, Default().Batch.Exclude, cfg.Batch.Exclude)

	format, frame, err := cfg.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, engine.FormatJSONIndent, format)
	assert.Equal(t, engine.FrameGzipBase64, frame)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watch:\n  debounce_ms: 50\n"), 0644))

	cfg, err := NewLoader(t.TempDir(), WithConfigFile(path)).Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Watch.DebounceMS)

	_, err = NewLoader(dir, WithConfigFile(filepath.Join(dir, "missing.yml"))).Load()
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "output:\n  format: json-indent\n")

	t.Setenv("ASTDIGEST_OUTPUT_FORMAT", "json")
	t.Setenv("ASTDIGEST_COMPRESSION_AGGREGATION_LEVEL", "low")
	t.Setenv("ASTDIGEST_BATCH_WORKERS", "2")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "low", cfg.Compression.AggregationLevel)
	assert.Equal(t, 2, cfg.Batch.Workers)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "config.yml", "compression: [unclosed\n")
		_, err := NewLoader(dir).Load()
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "config.yml", "compression:\n  aggregation_level: extreme\n")
		_, err := NewLoader(dir).Load()
		assert.ErrorIs(t, err, ErrInvalidAggregation)
	})
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"max depth", func(c *Config) { c.Compression.MaxDepth = 0 }, ErrInvalidMaxDepth},
		{"aggregation", func(c *Config) { c.Compression.AggregationLevel = "max" }, ErrInvalidAggregation},
		{"top k", func(c *Config) { c.Compression.CommentTopK = -1 }, ErrInvalidLimit},
		{"dedupe floor", func(c *Config) { c.Compression.DedupeFloor = -2 }, ErrInvalidLimit},
		{"summary width", func(c *Config) { c.Compression.SummaryWidth = 3 }, ErrInvalidLimit},
		{"rule role", func(c *Config) {
			c.Intent.MethodRules = []intent.PrefixRule{{Prefixes: []string{"init"}}}
		}, ErrInvalidRule},
		{"rule prefixes", func(c *Config) {
			c.Intent.MethodRules = []intent.PrefixRule{{Role: "lifecycle"}}
		}, ErrInvalidRule},
		{"include", func(c *Config) { c.Batch.Include = nil }, ErrEmptyInclude},
		{"workers", func(c *Config) { c.Batch.Workers = -1 }, ErrInvalidWorkers},
		{"cache size", func(c *Config) { c.Batch.CacheSize = -1 }, ErrInvalidCacheSize},
		{"format", func(c *Config) { c.Output.Format = "yaml" }, ErrInvalidOutput},
		{"frame", func(c *Config) { c.Output.Frame = "zip" }, engine.ErrUnknownFrame},
		{"debounce", func(c *Config) { c.Watch.DebounceMS = 0 }, ErrInvalidDebounce},
		{"logging", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogging},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Compression.MaxDepth = -1
	cfg.Compression.CommentTopK = -1
	cfg.Batch.Workers = -3

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMaxDepth)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
	assert.Contains(t, err.Error(), "validation failed:")
	assert.Contains(t, err.Error(), "max_depth must be positive")
}

func TestEngineOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Compression.AggregationLevel = "low"
	cfg.Compression.CountBooleanOperators = true
	cfg.Compression.SummaryWidth = 20
	cfg.Comments.Keywords = []string{"perf"}
	cfg.Intent.MethodRules = []intent.PrefixRule{{Role: "lifecycle", Prefixes: []string{"init"}}}

	opts := cfg.EngineOptions()
	assert.Equal(t, engine.Low, opts.Aggregation)
	assert.True(t, opts.CountBooleanOperators)
	assert.Equal(t, 20, opts.SummaryWidth)
	assert.Equal(t, []string{"perf"}, opts.CommentKeywords)
	require.Len(t, opts.MethodRules, 1)
	assert.Equal(t, "lifecycle", opts.MethodRules[0].Role)
	assert.Equal(t, cfg.Compression.MaxDepth, opts.MaxDepth)
}
