// Package config loads astdigest settings from .astdigest/config.yml with
// ASTDIGEST_* environment overrides.
package config

import (
	"github.com/mvp-joe/astdigest/internal/comments"
	"github.com/mvp-joe/astdigest/internal/engine"
	"github.com/mvp-joe/astdigest/internal/intent"
	"github.com/mvp-joe/astdigest/internal/logging"
)

// Config represents the complete astdigest configuration.
type Config struct {
	Compression CompressionConfig `yaml:"compression" mapstructure:"compression"`
	Intent      IntentConfig      `yaml:"intent" mapstructure:"intent"`
	Comments    CommentsConfig    `yaml:"comments" mapstructure:"comments"`
	Batch       BatchConfig       `yaml:"batch" mapstructure:"batch"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Watch       WatchConfig       `yaml:"watch" mapstructure:"watch"`
	Logging     logging.Config    `yaml:"logging" mapstructure:"logging"`
}

// CompressionConfig holds the engine toggles.
type CompressionConfig struct {
	MaxDepth              int    `yaml:"max_depth" mapstructure:"max_depth"`
	PreserveComments      bool   `yaml:"preserve_comments" mapstructure:"preserve_comments"`
	TrackControlFlow      bool   `yaml:"track_control_flow" mapstructure:"track_control_flow"`
	TrackDataFlow         bool   `yaml:"track_data_flow" mapstructure:"track_data_flow"`
	IncludeMethodIntent   bool   `yaml:"include_method_intent" mapstructure:"include_method_intent"`
	UseSymbolTable        bool   `yaml:"use_symbol_table" mapstructure:"use_symbol_table"`
	Deduplicate           bool   `yaml:"deduplicate" mapstructure:"deduplicate"`
	PruneEmptyNodes       bool   `yaml:"prune_empty_nodes" mapstructure:"prune_empty_nodes"`
	AggregationLevel      string `yaml:"aggregation_level" mapstructure:"aggregation_level"` // low, medium, high
	UseKeyMapping         bool   `yaml:"use_key_mapping" mapstructure:"use_key_mapping"`
	IncludeTree           bool   `yaml:"include_tree" mapstructure:"include_tree"`
	CountBooleanOperators bool   `yaml:"count_boolean_operators" mapstructure:"count_boolean_operators"`
	CommentTopK           int    `yaml:"comment_top_k" mapstructure:"comment_top_k"`
	DedupeFloor           int    `yaml:"dedupe_floor" mapstructure:"dedupe_floor"`
	MinSymbolLength       int    `yaml:"min_symbol_length" mapstructure:"min_symbol_length"`
	SummaryWidth          int    `yaml:"summary_width" mapstructure:"summary_width"`
}

// IntentConfig extends the built-in method rules. Extra rules are tried
// first.
type IntentConfig struct {
	MethodRules []intent.PrefixRule `yaml:"method_rules" mapstructure:"method_rules"`
}

// CommentsConfig sets the words that make a plain comment worth keeping.
type CommentsConfig struct {
	Keywords []string `yaml:"keywords" mapstructure:"keywords"`
}

// BatchConfig controls directory processing.
type BatchConfig struct {
	Include          []string `yaml:"include" mapstructure:"include"`                     // glob patterns of files to compress
	Exclude          []string `yaml:"exclude" mapstructure:"exclude"`                     // glob patterns to skip
	Workers          int      `yaml:"workers" mapstructure:"workers"`                     // 0 means one per CPU
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"` // skip files ignored by .gitignore
	CacheSize        int      `yaml:"cache_size" mapstructure:"cache_size"`               // cached documents, 0 disables
	OutputDir        string   `yaml:"output_dir" mapstructure:"output_dir"`               // empty writes next to each file
}

// OutputConfig selects the serialized form.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // json or json-indent
	Frame  string `yaml:"frame" mapstructure:"frame"`   // none or gzip+base64
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with the engine defaults.
func Default() *Config {
	opts := engine.DefaultOptions()
	return &Config{
		Compression: CompressionConfig{
			MaxDepth:              opts.MaxDepth,
			PreserveComments:      opts.PreserveComments,
			TrackControlFlow:      opts.TrackControlFlow,
			TrackDataFlow:         opts.TrackDataFlow,
			IncludeMethodIntent:   opts.IncludeMethodIntent,
			UseSymbolTable:        opts.UseSymbolTable,
			Deduplicate:           opts.Deduplicate,
			PruneEmptyNodes:       opts.PruneEmptyNodes,
			AggregationLevel:      string(opts.Aggregation),
			UseKeyMapping:         opts.UseKeyMapping,
			IncludeTree:           opts.IncludeTree,
			CountBooleanOperators: opts.CountBooleanOperators,
			CommentTopK:           opts.CommentTopK,
			DedupeFloor:           opts.DedupeFloor,
			MinSymbolLength:       opts.MinSymbolLength,
			SummaryWidth:          opts.SummaryWidth,
		},
		Intent: IntentConfig{
			MethodRules: []intent.PrefixRule{},
		},
		Comments: CommentsConfig{
			Keywords: append([]string(nil), comments.DefaultKeywords...),
		},
		Batch: BatchConfig{
			Include: []string{"**/*.java"},
			Exclude: []string{
				".git/**",
				"**/build/**",
				"**/target/**",
				"**/out/**",
				"**/generated/**",
			},
			Workers:          0,
			RespectGitignore: true,
			CacheSize:        1000,
			OutputDir:        "",
		},
		Output: OutputConfig{
			Format: string(engine.FormatJSON),
			Frame:  string(engine.FrameNone),
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
		Logging: logging.DefaultConfig(),
	}
}

// EngineOptions converts the compression section, together with intent and
// comment settings, into engine options. The config is assumed valid.
func (c *Config) EngineOptions() engine.Options {
	level, err := engine.ParseLevel(c.Compression.AggregationLevel)
	if err != nil {
		level = engine.Medium
	}
	return engine.Options{
		MaxDepth:              c.Compression.MaxDepth,
		PreserveComments:      c.Compression.PreserveComments,
		TrackControlFlow:      c.Compression.TrackControlFlow,
		TrackDataFlow:         c.Compression.TrackDataFlow,
		IncludeMethodIntent:   c.Compression.IncludeMethodIntent,
		UseSymbolTable:        c.Compression.UseSymbolTable,
		Deduplicate:           c.Compression.Deduplicate,
		PruneEmptyNodes:       c.Compression.PruneEmptyNodes,
		Aggregation:           level,
		UseKeyMapping:         c.Compression.UseKeyMapping,
		IncludeTree:           c.Compression.IncludeTree,
		CountBooleanOperators: c.Compression.CountBooleanOperators,
		CommentTopK:           c.Compression.CommentTopK,
		DedupeFloor:           c.Compression.DedupeFloor,
		MinSymbolLength:       c.Compression.MinSymbolLength,
		SummaryWidth:          c.Compression.SummaryWidth,
		CommentKeywords:       c.Comments.Keywords,
		MethodRules:           c.Intent.MethodRules,
	}
}

// OutputFormat returns the parsed output format and frame.
func (c *Config) OutputFormat() (engine.Format, engine.Frame, error) {
	format, err := engine.ParseFormat(c.Output.Format)
	if err != nil {
		return "", "", err
	}
	frame, err := engine.ParseFrame(c.Output.Frame)
	if err != nil {
		return "", "", err
	}
	return format, frame, nil
}
