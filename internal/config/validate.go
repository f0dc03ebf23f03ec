package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/astdigest/internal/engine"
	"github.com/mvp-joe/astdigest/internal/flow"
)

var (
	// ErrInvalidMaxDepth indicates a non-positive traversal depth
	ErrInvalidMaxDepth = errors.New("invalid max depth")

	// ErrInvalidAggregation indicates an unknown aggregation level
	ErrInvalidAggregation = errors.New("invalid aggregation level")

	// ErrInvalidLimit indicates a negative count or too narrow a width
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidRule indicates an intent rule without role or prefixes
	ErrInvalidRule = errors.New("invalid intent rule")

	// ErrEmptyInclude indicates batch mode has nothing to select
	ErrEmptyInclude = errors.New("empty batch include patterns")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidCacheSize indicates a negative cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidOutput indicates an unknown output format or frame
	ErrInvalidOutput = errors.New("invalid output settings")

	// ErrInvalidDebounce indicates a non-positive watch debounce
	ErrInvalidDebounce = errors.New("invalid debounce")

	// ErrInvalidLogging indicates unusable logging settings
	ErrInvalidLogging = errors.New("invalid logging settings")
)

// minSummaryWidth leaves room for one character plus the "..." marker.
const minSummaryWidth = 4

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateCompression(&cfg.Compression); err != nil {
		errs = append(errs, err)
	}

	if err := validateIntent(&cfg.Intent); err != nil {
		errs = append(errs, err)
	}

	if err := validateBatch(&cfg.Batch); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.DebounceMS <= 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms must be positive, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMS))
	}

	if err := cfg.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidLogging, err))
	}

	return joinErrors(errs)
}

func validateCompression(cfg *CompressionConfig) error {
	var errs []error

	if cfg.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_depth must be positive, got %d", ErrInvalidMaxDepth, cfg.MaxDepth))
	}

	if _, err := engine.ParseLevel(cfg.AggregationLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: must be 'low', 'medium' or 'high', got '%s'", ErrInvalidAggregation, cfg.AggregationLevel))
	}

	if cfg.CommentTopK < 0 {
		errs = append(errs, fmt.Errorf("%w: comment_top_k cannot be negative, got %d", ErrInvalidLimit, cfg.CommentTopK))
	}
	if cfg.DedupeFloor < 0 {
		errs = append(errs, fmt.Errorf("%w: dedupe_floor cannot be negative, got %d", ErrInvalidLimit, cfg.DedupeFloor))
	}
	if cfg.MinSymbolLength < 0 {
		errs = append(errs, fmt.Errorf("%w: min_symbol_length cannot be negative, got %d", ErrInvalidLimit, cfg.MinSymbolLength))
	}
	if cfg.SummaryWidth != 0 && cfg.SummaryWidth < minSummaryWidth {
		errs = append(errs, fmt.Errorf("%w: summary_width must be at least %d (0 selects %d), got %d",
			ErrInvalidLimit, minSummaryWidth, flow.DefaultWidth, cfg.SummaryWidth))
	}

	return joinErrors(errs)
}

func validateIntent(cfg *IntentConfig) error {
	var errs []error
	for i, r := range cfg.MethodRules {
		if strings.TrimSpace(r.Role) == "" {
			errs = append(errs, fmt.Errorf("%w: method_rules[%d] has no role", ErrInvalidRule, i))
		}
		if len(r.Prefixes) == 0 {
			errs = append(errs, fmt.Errorf("%w: method_rules[%d] has no prefixes", ErrInvalidRule, i))
		}
	}
	return joinErrors(errs)
}

func validateBatch(cfg *BatchConfig) error {
	var errs []error

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one pattern required", ErrEmptyInclude))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers))
	}
	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.CacheSize))
	}

	return joinErrors(errs)
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	if _, err := engine.ParseFormat(cfg.Format); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidOutput, err))
	}
	if _, err := engine.ParseFrame(cfg.Frame); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidOutput, err))
	}

	return joinErrors(errs)
}

// validationErrors formats several problems as one list while keeping each
// reachable through errors.Is.
type validationErrors []error

func (v validationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (v validationErrors) Unwrap() []error {
	return v
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}

	// flatten nested lists so the message stays one level deep
	var flat validationErrors
	for _, err := range errs {
		var nested validationErrors
		if errors.As(err, &nested) {
			flat = append(flat, nested...)
			continue
		}
		flat = append(flat, err)
	}
	return flat
}
