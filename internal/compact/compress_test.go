package compact

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/astdigest/internal/flow"
	"github.com/mvp-joe/astdigest/internal/scope"
	"github.com/mvp-joe/astdigest/internal/source"
)

// Test Plan for the structural compressor:
// - repeated subtrees deeper than the floor become refs, the first keeps an id
// - repeated subtrees at or above the floor are emitted in full
// - sharing compares compacted content: a copy cut off by the depth ceiling is
//   never the target of a fuller copy, and dropped comments do not split copies
// - every ref in a tree resolves to an earlier node with a unique id, for
//   nested blocks, single-call statements and every Java fixture
// - identical helper methods in two classes share one stored subtree
// - Expand restores refs and text_refs to their first occurrence
// - the depth ceiling yields a bare tag and anything deeper is dropped
// - pruning drops nodes without content, declarations survive
// - texts seen twice are interned, short texts never are
// - comments are kept or dropped per option
// - declarations, control flow and calls carry their specialized fields
// - output is byte-identical across runs

const testJavaDir = "../../testdata/code/java"

func leaf(kind, text string) *source.Node {
	return &source.Node{Kind: kind, Text: text, Named: true}
}

func node(kind string, children ...*source.Node) *source.Node {
	return &source.Node{Kind: kind, Named: true, Children: children}
}

func pair() *source.Node {
	return node("pair", leaf("identifier", "alpha"), leaf("identifier", "beta"))
}

func plainOptions() Options {
	opts := DefaultOptions()
	opts.UseSymbols = false
	return opts
}

func parseFile(t *testing.T, name string) *source.Node {
	t.Helper()
	root, _, err := source.NewJavaParser().ParseFile(context.Background(), filepath.Join(testJavaDir, name))
	require.NoError(t, err)
	return root
}

func collectIDs(root *Node) (ids, refs []int) {
	Walk(root, func(n *Node) {
		if n.ID != 0 {
			ids = append(ids, n.ID)
		}
		if n.Ref != 0 {
			refs = append(refs, n.Ref)
		}
	})
	return ids, refs
}

func TestCompress_DedupeBelowFloor(t *testing.T) {
	t.Parallel()

	root := node("program", node("outer", node("left", pair()), node("right", pair())))
	out := New(plainOptions()).Tree(root)

	left := out.Children[0].Children[0].Children[0]
	right := out.Children[0].Children[1].Children[0]

	assert.Equal(t, 1, left.ID)
	assert.Equal(t, "pair", left.Type)
	assert.Len(t, left.Children, 2)
	assert.Equal(t, 1, right.Ref)
	assert.Empty(t, right.Type)
	assert.Empty(t, right.Children)
}

func TestCompress_NoDedupeAtFloor(t *testing.T) {
	t.Parallel()

	root := node("program", pair(), pair())
	out := New(plainOptions()).Tree(root)

	require.Len(t, out.Children, 2)
	for _, c := range out.Children {
		assert.False(t, c.IsRef())
		assert.Zero(t, c.ID)
		assert.Len(t, c.Children, 2)
	}
}

func TestCompress_DedupeDisabled(t *testing.T) {
	t.Parallel()

	opts := plainOptions()
	opts.Deduplicate = false
	root := node("program", node("outer", node("left", pair()), node("right", pair())))

	ids, refs := collectIDs(New(opts).Tree(root))
	assert.Empty(t, ids)
	assert.Empty(t, refs)
}

func TestCompress_IdenticalHelpers(t *testing.T) {
	t.Parallel()

	c := New(DefaultOptions())
	out := c.Tree(parseFile(t, "Helpers.java"))

	ids, refs := collectIDs(out)
	require.Equal(t, []int{1}, ids)
	require.Equal(t, []int{1}, refs)

	shared, issued := c.Stats()
	assert.Equal(t, 1, shared)
	assert.Equal(t, 1, issued)

	var first *Node
	Walk(out, func(n *Node) {
		if n.ID == 1 {
			first = n
		}
	})
	require.NotNil(t, first)
	assert.Equal(t, "method_declaration", first.Type)
	assert.Equal(t, "twice", first.Name)
}

func TestExpand_RestoresFirstOccurrence(t *testing.T) {
	t.Parallel()

	c := New(DefaultOptions())
	out := c.Tree(parseFile(t, "Helpers.java"))

	expanded, err := Expand(out, c.Symbols())
	require.NoError(t, err)

	var twice []*Node
	Walk(expanded, func(n *Node) {
		assert.False(t, n.IsRef())
		assert.Nil(t, n.TextRef)
		if n.Type == "method_declaration" && n.Name == "twice" {
			twice = append(twice, n)
		}
	})
	require.Len(t, twice, 2)

	a, err := json.Marshal(twice[0])
	require.NoError(t, err)
	b, err := json.Marshal(twice[1])
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestExpand_Unresolved(t *testing.T) {
	t.Parallel()

	_, err := Expand(&Node{Type: "program", Children: []*Node{{Ref: 7}}}, nil)
	require.Error(t, err)
}

func TestCompress_MaxDepth(t *testing.T) {
	t.Parallel()

	opts := plainOptions()
	opts.MaxDepth = 2
	root := node("program", node("a", node("b", node("c", leaf("identifier", "deep")))))

	out := New(opts).Tree(root)
	require.Len(t, out.Children, 1)
	require.Len(t, out.Children[0].Children, 1)

	ceiling := out.Children[0].Children[0]
	assert.Equal(t, "b", ceiling.Type)
	assert.True(t, ceiling.exempt)
	assert.Empty(t, ceiling.Children)
	assert.Empty(t, ceiling.Text)

	assert.Nil(t, New(opts).compress(root, 3, scope.Context{}))
}

func TestCompress_Prune(t *testing.T) {
	t.Parallel()

	root := node("program",
		node("wrapper", &source.Node{Kind: ";"}),
		node("keeper", leaf("identifier", "x")),
	)

	pruned := New(plainOptions()).Tree(root)
	require.Len(t, pruned.Children, 1)
	assert.Equal(t, "keeper", pruned.Children[0].Type)

	opts := plainOptions()
	opts.PruneEmpty = false
	kept := New(opts).Tree(root)
	assert.Len(t, kept.Children, 2)
}

func TestCompress_Symbols(t *testing.T) {
	t.Parallel()

	c := New(DefaultOptions())
	out := c.Tree(parseFile(t, "OrderRepository.java"))

	symbols := c.Symbols().Symbols()
	assert.Contains(t, symbols, "orders")
	assert.Contains(t, symbols, "result")
	for _, s := range symbols {
		assert.Greater(t, len(s), 3, s)
	}

	id, ok := c.Symbols().Lookup("result")
	require.True(t, ok)
	found := false
	Walk(out, func(n *Node) {
		if n.TextRef != nil && *n.TextRef == id {
			found = true
		}
		assert.NotEqual(t, "result", n.Text)
	})
	assert.True(t, found)
}

func TestCompress_Comments(t *testing.T) {
	t.Parallel()

	root := parseFile(t, "Nesting.java")
	hasComment := func(n *Node) bool {
		found := false
		Walk(n, func(x *Node) {
			if x.Type == "line_comment" {
				found = true
				assert.Equal(t, "// NOTE: each method adds one level of nesting", x.Text)
			}
		})
		return found
	}

	assert.True(t, hasComment(New(DefaultOptions()).Tree(root)))

	opts := DefaultOptions()
	opts.PreserveComments = false
	assert.False(t, hasComment(New(opts).Tree(root)))
}

func TestCompress_Declarations(t *testing.T) {
	t.Parallel()

	out := New(plainOptions()).Tree(parseFile(t, "OrderRepository.java"))

	var class *Node
	var fields, methods []*Node
	Walk(out, func(n *Node) {
		switch n.Type {
		case "class_declaration":
			class = n
		case "field_declaration":
			fields = append(fields, n)
		case "method_declaration":
			methods = append(methods, n)
		}
	})

	require.NotNil(t, class)
	assert.Equal(t, "OrderRepository", class.Name)
	assert.Equal(t, []string{"public"}, class.Modifiers)

	require.Len(t, fields, 3)
	assert.Equal(t, []string{"MAX"}, fields[0].Names)
	assert.Equal(t, "int", fields[0].DeclaredType)
	assert.Equal(t, "10", fields[0].Value)
	assert.Equal(t, []string{"public", "static", "final"}, fields[0].Modifiers)
	assert.Equal(t, "Map<Long, Order>", fields[1].DeclaredType)
	assert.Empty(t, fields[2].Value)

	require.Len(t, methods, 5)
	find := methods[0]
	assert.Equal(t, "findById", find.Name)
	assert.Equal(t, "Order", find.ReturnType)
	assert.Equal(t, []Param{{Type: "long", Name: "orderId"}}, find.Parameters)
	require.Len(t, find.Children, 1)
	assert.Equal(t, "return_statement", find.Children[0].Type)
	require.NotNil(t, find.Children[0].Node)
	assert.Equal(t, flow.Return, find.Children[0].Kind)
	assert.Equal(t, "orders.get(…)", find.Children[0].Expression)
}

func TestCompress_ControlFlowMerged(t *testing.T) {
	t.Parallel()

	out := New(plainOptions()).Tree(parseFile(t, "Predicates.java"))

	var branch *Node
	Walk(out, func(n *Node) {
		if n.Type == "if_statement" {
			branch = n
		}
	})
	require.NotNil(t, branch)
	assert.Equal(t, "x.size() == 0", branch.Condition)
	assert.Len(t, branch.Then, 1)
	assert.Len(t, branch.Else, 1)

	raw, err := json.Marshal(branch)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "if_statement",
		"condition": "x.size() == 0",
		"then": [{"type": "return", "has_value": true, "expression": "true", "value_type": "boolean"}],
		"else": [{"type": "return", "has_value": true, "expression": "false", "value_type": "boolean"}]
	}`, string(raw))
}

func TestCompress_Calls(t *testing.T) {
	t.Parallel()

	src := `class A { void f() { log.info("x", 1); } }`
	root, err := source.NewJavaParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	out := New(plainOptions()).Tree(root)
	var call *Node
	Walk(out, func(n *Node) {
		if n.Type == "method_invocation" {
			call = n
		}
	})
	require.NotNil(t, call)
	assert.Equal(t, "info", call.Name)
	assert.Equal(t, "log", call.Object)
	require.NotNil(t, call.Arguments)
	assert.Equal(t, 2, *call.Arguments)
}

func TestCompress_Simplified(t *testing.T) {
	t.Parallel()

	src := `class A { void f() { Runnable r = () -> { int aVeryLongLocalName = computeTheThing(1, 2, 3); }; } }`
	root, err := source.NewJavaParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	out := New(plainOptions()).Tree(root)
	var lambda *Node
	Walk(out, func(n *Node) {
		if n.Type == "lambda_expression" {
			lambda = n
		}
	})
	require.NotNil(t, lambda)
	assert.Empty(t, lambda.Text)
	assert.Greater(t, lambda.TextLength, flow.DefaultWidth)
}

func TestCompress_Deterministic(t *testing.T) {
	t.Parallel()

	root := parseFile(t, "OrderRepository.java")
	a, err := json.Marshal(New(DefaultOptions()).Tree(root))
	require.NoError(t, err)
	b, err := json.Marshal(New(DefaultOptions()).Tree(root))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCompress_DedupeComparesCompactedContent(t *testing.T) {
	t.Parallel()

	opts := plainOptions()
	opts.DedupeFloor = 0
	opts.MaxDepth = 4

	// the first pair sits at depth 3, so its leaves are cut to bare tags
	root := node("program",
		node("deep", node("deeper", pair())),
		node("shallow", pair()),
	)
	out := New(opts).Tree(root)

	truncated := out.Children[0].Children[0].Children[0]
	require.Equal(t, "pair", truncated.Type)
	require.Len(t, truncated.Children, 2)
	assert.Empty(t, truncated.Children[0].Text)

	full := out.Children[1].Children[0]
	require.False(t, full.IsRef())
	require.Len(t, full.Children, 2)
	assert.Equal(t, "alpha", full.Children[0].Text)
	assert.Equal(t, "beta", full.Children[1].Text)
	assert.Zero(t, truncated.ID)
}

func TestCompress_DedupeIgnoresDroppedComments(t *testing.T) {
	t.Parallel()

	commented := node("pair",
		leaf("identifier", "alpha"),
		&source.Node{Kind: "line_comment", Text: "// note"},
		leaf("identifier", "beta"),
	)
	root := node("program", node("outer", node("left", pair()), node("right", commented)))

	opts := plainOptions()
	opts.PreserveComments = false
	out := New(opts).Tree(root)
	assert.Equal(t, 1, out.Children[0].Children[1].Children[0].Ref)

	kept := New(plainOptions()).Tree(root)
	assert.False(t, kept.Children[0].Children[1].Children[0].IsRef())
}

func TestCompress_RefsResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{
			name: "nested blocks",
			src: `class A {
				void f(int a) { { doWork(a); other(a); } }
				void g(int a) { { doWork(a); other(a); } }
			}`,
		},
		{
			name: "single call statements",
			src: `class A {
				void a() { doWork(a); }
				void b() { doWork(a); }
				void c() { int x = doWork(a); }
			}`,
		},
		{
			name: "repeated branches in nested blocks",
			src: `class A {
				void f() { { if (n > 1) { n--; } } }
				void g() { { { if (n > 1) { n--; } } } }
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root, err := source.NewJavaParser().Parse(context.Background(), []byte(tt.src))
			require.NoError(t, err)

			c := New(DefaultOptions())
			requireRefsResolve(t, c, c.Tree(root))
		})
	}
}

func TestCompress_FixtureRefsResolve(t *testing.T) {
	t.Parallel()

	files, err := filepath.Glob(filepath.Join(testJavaDir, "*.java"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			t.Parallel()

			c := New(DefaultOptions())
			requireRefsResolve(t, c, c.Tree(parseFile(t, filepath.Base(file))))
		})
	}
}

func TestCompress_RepeatedClassShared(t *testing.T) {
	t.Parallel()

	c := New(DefaultOptions())
	out := c.Tree(parseFile(t, "Repeats.java"))
	requireRefsResolve(t, c, out)

	targets := map[int]*Node{}
	Walk(out, func(n *Node) {
		if n.ID != 0 {
			targets[n.ID] = n
		}
	})

	var kinds []string
	Walk(out, func(n *Node) {
		if n.Ref != 0 {
			kinds = append(kinds, targets[n.Ref].Type)
		}
	})
	assert.Contains(t, kinds, "class_declaration")
	assert.Contains(t, kinds, "if_statement")

	// refs inside the replaced copy of Window are never issued
	shared, issued := c.Stats()
	assert.Equal(t, len(kinds), issued)
	assert.LessOrEqual(t, shared, issued)
}

// requireRefsResolve checks that ids are unique, every ref names an id seen
// earlier in document order, and Expand succeeds.
func requireRefsResolve(t *testing.T, c *Compressor, out *Node) {
	t.Helper()

	seen := map[int]bool{}
	Walk(out, func(n *Node) {
		if n.ID != 0 {
			require.False(t, seen[n.ID], "duplicate id %d", n.ID)
			seen[n.ID] = true
		}
		if n.Ref != 0 {
			require.True(t, seen[n.Ref], "ref %d precedes its target", n.Ref)
		}
		require.Nil(t, n.entry)
	})

	expanded, err := Expand(out, c.Symbols())
	require.NoError(t, err)
	Walk(expanded, func(n *Node) {
		require.False(t, n.IsRef())
	})
}
