package callgraph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/astdigest/internal/source"
)

// Test Plan for the call graph:
// - Collect finds invocations with object and line, skipping nested classes
// - local calls link methods of the same class only
// - called_by counts distinct callers, not calls, and ignores self-calls
// - direct recursion and mutual recursion are both detected

func TestCollect(t *testing.T) {
	t.Parallel()

	root, _, err := source.NewJavaParser().ParseFile(context.Background(), filepath.Join("../../testdata/code/java", "Nesting.java"))
	require.NoError(t, err)

	var factorial *source.Node
	for _, m := range source.Find(root, "method_declaration") {
		if m.ChildByField("name").GetText() == "factorial" {
			factorial = m
		}
	}
	require.NotNil(t, factorial)

	calls := Collect(factorial.ChildByField("body"))
	require.Len(t, calls, 1)
	assert.Equal(t, Call{Name: "factorial", Line: 37}, calls[0])
	assert.True(t, calls[0].Local())
}

func TestCollect_SkipsAnonymousClasses(t *testing.T) {
	t.Parallel()

	src := `class A { void f() { g(); new Runnable() { public void run() { h(); } }; this.k(); } }`
	root, err := source.NewJavaParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	body := source.Find(root, "method_declaration")[0].ChildByField("body")
	calls := Collect(body)

	var names []string
	for _, c := range calls {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"g", "k"}, names)
	assert.Equal(t, "this", calls[1].Object)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	methods := []Method{
		{Key: "run", Name: "run", Class: "First", Calls: []Call{{Name: "twice"}, {Name: "twice"}}},
		{Key: "twice", Name: "twice", Class: "First"},
		{Key: "go", Name: "go", Class: "Second", Calls: []Call{{Name: "twice", Object: "this"}, {Name: "size", Object: "list"}}},
		{Key: "twice#2", Name: "twice", Class: "Second"},
		{Key: "fact", Name: "fact", Class: "M", Calls: []Call{{Name: "fact"}}},
		{Key: "ping", Name: "ping", Class: "M", Calls: []Call{{Name: "pong"}}},
		{Key: "pong", Name: "pong", Class: "M", Calls: []Call{{Name: "ping"}}},
	}

	g, err := Build(methods)
	require.NoError(t, err)

	assert.Equal(t, 1, g.CalledBy("twice"))
	assert.Equal(t, 1, g.CalledBy("twice#2"))
	assert.Equal(t, 0, g.CalledBy("run"))
	assert.Equal(t, 0, g.CalledBy("fact"))
	assert.Equal(t, []string{"twice"}, g.Callees("run"))

	assert.True(t, g.Recursive("fact"))
	assert.True(t, g.Recursive("ping"))
	assert.True(t, g.Recursive("pong"))
	assert.False(t, g.Recursive("run"))
	assert.False(t, g.Recursive("twice"))
}
