// Package complexity derives per-callable metrics from flow trees.
package complexity

import "github.com/mvp-joe/astdigest/internal/flow"

// Options tunes the analysis.
type Options struct {
	// CountBooleanOperators adds one per && or || in a guard.
	CountBooleanOperators bool
}

// Metrics summarizes one callable.
type Metrics struct {
	Cyclomatic int `json:"complexity"`
	MaxNesting int `json:"max_nesting"`
	Branches   int `json:"-"`
	Loops      int `json:"-"`
	Cases      int `json:"-"`
	Catches    int `json:"-"`
	BoolOps    int `json:"-"`
}

// Analyze computes metrics for the flow forest of one callable.
func Analyze(nodes []*flow.Node, opts Options) Metrics {
	var m Metrics
	flow.Walk(nodes, func(n *flow.Node) {
		switch n.Kind {
		case flow.Branch:
			m.Branches++
		case flow.Loop:
			m.Loops++
		case flow.Try:
			m.Catches += len(n.Catches)
		case flow.Switch:
			for _, c := range n.Cases {
				if c.Label != flow.DefaultLabel {
					m.Cases++
				}
			}
		}
		m.BoolOps += n.ShortCircuit
	})

	m.Cyclomatic = 1 + m.Branches + m.Loops + m.Cases + m.Catches
	if opts.CountBooleanOperators {
		m.Cyclomatic += m.BoolOps
	}
	m.MaxNesting = maxNesting(nodes, 0)
	return m
}

func maxNesting(nodes []*flow.Node, depth int) int {
	deepest := depth
	for _, n := range nodes {
		if n == nil || !n.IsContainer() {
			continue
		}
		for _, r := range n.Regions() {
			if d := maxNesting(r, depth+1); d > deepest {
				deepest = d
			}
		}
		if depth+1 > deepest {
			deepest = depth + 1
		}
	}
	return deepest
}

// Rating buckets a cyclomatic complexity.
func Rating(c int) string {
	switch {
	case c <= 3:
		return "low"
	case c <= 7:
		return "medium"
	default:
		return "high"
	}
}
