package complexity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mvp-joe/astdigest/internal/flow"
)

// Test Plan for Analyze:
// - an empty body has complexity 1 and nesting 0
// - branches, loops, catches and non-default cases each add one
// - boolean operators count only when enabled
// - nesting follows container depth, not sibling count
// - Rating buckets at 3 and 7

func TestAnalyze_Empty(t *testing.T) {
	t.Parallel()

	m := Analyze(nil, Options{})
	assert.Equal(t, 1, m.Cyclomatic)
	assert.Equal(t, 0, m.MaxNesting)
}

func TestAnalyze_Counts(t *testing.T) {
	t.Parallel()

	nodes := []*flow.Node{
		{Kind: flow.Branch, ShortCircuit: 2, Then: []*flow.Node{{Kind: flow.Return}}},
		{Kind: flow.Loop, Body: []*flow.Node{{Kind: flow.Call}}},
		{Kind: flow.Try, Catches: []*flow.Catch{{ExceptionType: "A"}, {ExceptionType: "B"}}},
		{Kind: flow.Switch, Cases: []*flow.Case{{Label: "0"}, {Label: "1"}, {Label: flow.DefaultLabel}}},
	}

	plain := Analyze(nodes, Options{})
	assert.Equal(t, 1+1+1+2+2, plain.Cyclomatic)
	assert.Equal(t, 1, plain.MaxNesting)
	assert.Equal(t, 2, plain.BoolOps)

	withOps := Analyze(nodes, Options{CountBooleanOperators: true})
	assert.Equal(t, plain.Cyclomatic+2, withOps.Cyclomatic)
}

func TestAnalyze_Nesting(t *testing.T) {
	t.Parallel()

	leaf := &flow.Node{Kind: flow.Assignment}
	three := []*flow.Node{{
		Kind: flow.Branch,
		Then: []*flow.Node{{
			Kind: flow.Loop,
			Body: []*flow.Node{{Kind: flow.Loop, Body: []*flow.Node{leaf}}},
		}},
	}}
	siblings := []*flow.Node{{Kind: flow.Branch}, {Kind: flow.Branch}, {Kind: flow.Loop}}
	elseIf := []*flow.Node{{
		Kind: flow.Branch,
		Else: []*flow.Node{{Kind: flow.Branch}},
	}}

	assert.Equal(t, 3, Analyze(three, Options{}).MaxNesting)
	assert.Equal(t, 1, Analyze(siblings, Options{}).MaxNesting)
	assert.Equal(t, 2, Analyze(elseIf, Options{}).MaxNesting)
}

func TestRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		c    int
		want string
	}{
		{1, "low"}, {3, "low"}, {4, "medium"}, {7, "medium"}, {8, "high"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rating(tt.c))
	}
}
