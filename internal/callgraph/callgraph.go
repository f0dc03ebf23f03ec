// Package callgraph links the callables of one file through their
// unqualified and this-qualified invocations.
package callgraph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/astdigest/internal/source"
)

// Call is one method invocation found in a callable body.
type Call struct {
	Name   string `json:"name"`
	Object string `json:"object,omitempty"`
	Line   int    `json:"line"`
}

// Local reports whether the call targets the enclosing class.
func (c Call) Local() bool {
	return c.Object == "" || c.Object == "this"
}

// Method is one callable taking part in the graph.
type Method struct {
	Key   string
	Name  string
	Class string
	Calls []Call
}

// Collect returns the invocations in body in source order. Bodies of nested
// and anonymous classes belong to their own callables and are skipped.
func Collect(body *source.Node) []Call {
	var calls []Call
	source.Walk(body, func(n *source.Node) bool {
		switch n.Kind {
		case "class_body", "class_declaration":
			return n == body
		case "method_invocation":
			calls = append(calls, Call{
				Name:   n.ChildByField("name").GetText(),
				Object: n.ChildByField("object").Content(),
				Line:   n.Span.StartLine,
			})
		}
		return true
	})
	return calls
}

// Graph is the resolved call graph of one file.
type Graph struct {
	g         graph.Graph[string, string]
	callers   map[string]int
	recursive map[string]bool
}

// Build resolves local calls between methods and computes caller counts and
// recursion.
func Build(methods []Method) (*Graph, error) {
	g := graph.New(graph.StringHash, graph.Directed())
	byName := make(map[string][]string)

	for _, m := range methods {
		if err := g.AddVertex(m.Key); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("add method %s: %w", m.Key, err)
		}
		byName[m.Class+"\x00"+m.Name] = append(byName[m.Class+"\x00"+m.Name], m.Key)
	}

	selfLoops := make(map[string]bool)
	for _, m := range methods {
		for _, c := range m.Calls {
			if !c.Local() {
				continue
			}
			for _, target := range byName[m.Class+"\x00"+c.Name] {
				if target == m.Key {
					selfLoops[target] = true
				}
				err := g.AddEdge(m.Key, target)
				if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
					return nil, fmt.Errorf("link %s -> %s: %w", m.Key, target, err)
				}
			}
		}
	}

	preds, err := g.PredecessorMap()
	if err != nil {
		return nil, fmt.Errorf("predecessors: %w", err)
	}
	callers := make(map[string]int, len(preds))
	for key, from := range preds {
		n := len(from)
		if _, self := from[key]; self {
			n--
		}
		callers[key] = n
	}

	sccs, err := graph.StronglyConnectedComponents(g)
	if err != nil {
		return nil, fmt.Errorf("components: %w", err)
	}
	recursive := make(map[string]bool)
	for _, comp := range sccs {
		if len(comp) > 1 {
			for _, k := range comp {
				recursive[k] = true
			}
		}
	}
	for k := range selfLoops {
		recursive[k] = true
	}

	return &Graph{g: g, callers: callers, recursive: recursive}, nil
}

// CalledBy returns the number of distinct other methods calling key.
func (g *Graph) CalledBy(key string) int {
	return g.callers[key]
}

// Recursive reports whether key sits on a call cycle.
func (g *Graph) Recursive(key string) bool {
	return g.recursive[key]
}

// Callees returns the local methods key calls, sorted.
func (g *Graph) Callees(key string) []string {
	adj, err := g.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	var out []string
	for k := range adj[key] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
