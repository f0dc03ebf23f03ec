package engine

import (
	"fmt"

	"github.com/mvp-joe/astdigest/internal/comments"
	"github.com/mvp-joe/astdigest/internal/compact"
	"github.com/mvp-joe/astdigest/internal/dedupe"
	"github.com/mvp-joe/astdigest/internal/flow"
	"github.com/mvp-joe/astdigest/internal/intent"
	"github.com/mvp-joe/astdigest/internal/intern"
)

// Level selects how aggressively the document is aggregated.
type Level string

const (
	Low    Level = "low"
	Medium Level = "medium"
	High   Level = "high"
)

// ParseLevel validates a level name.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case Low, Medium, High:
		return Level(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Options are the per-run toggles of the engine.
type Options struct {
	MaxDepth              int
	PreserveComments      bool
	TrackControlFlow      bool
	TrackDataFlow         bool
	IncludeMethodIntent   bool
	UseSymbolTable        bool
	Deduplicate           bool
	PruneEmptyNodes       bool
	Aggregation           Level
	UseKeyMapping         bool
	IncludeTree           bool
	CountBooleanOperators bool
	CommentTopK           int
	DedupeFloor           int
	MinSymbolLength       int
	SummaryWidth          int
	CommentKeywords       []string
	MethodRules           []intent.PrefixRule
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		MaxDepth:            compact.DefaultMaxDepth,
		PreserveComments:    true,
		TrackControlFlow:    true,
		TrackDataFlow:       true,
		IncludeMethodIntent: true,
		UseSymbolTable:      true,
		Deduplicate:         true,
		PruneEmptyNodes:     true,
		Aggregation:         Medium,
		UseKeyMapping:       true,
		IncludeTree:         true,
		CommentTopK:         comments.DefaultTopK,
		DedupeFloor:         dedupe.DefaultFloor,
		MinSymbolLength:     intern.DefaultMinLength,
		SummaryWidth:        flow.DefaultWidth,
	}
}

func (o Options) compactOptions() compact.Options {
	return compact.Options{
		MaxDepth:         o.MaxDepth,
		PreserveComments: o.PreserveComments,
		PruneEmpty:       o.PruneEmptyNodes,
		Deduplicate:      o.Deduplicate,
		UseSymbols:       o.UseSymbolTable,
		DedupeFloor:      o.DedupeFloor,
		MinSymbolLength:  o.MinSymbolLength,
		Width:            o.SummaryWidth,
	}
}
