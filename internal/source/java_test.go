package source

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for JavaParser:
// - Parses in-memory source into an owned tree rooted at "program"
// - Records grammar field names on children (name, body, condition)
// - Collapses string literals and comments into single leaves
// - Records 1-based line spans
// - ParseFile reads from disk and returns source bytes
// - ParseFile surfaces missing files as errors
// - A cancelled context aborts before parsing
// - Cancelling a live context right after parsing is safe, also across goroutines
// - Content() rebuilds expression text with spacing from spans

const testJavaDir = "../../testdata/code/java"

func parseJava(t *testing.T, src string) *Node {
	t.Helper()
	root, err := NewJavaParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	require.NotNil(t, root)
	return root
}

func TestJavaParser_ParseProgram(t *testing.T) {
	t.Parallel()

	root := parseJava(t, "class A { void run() {} }")

	assert.Equal(t, "program", root.Kind)
	class := root.ChildOfKind("class_declaration")
	require.NotNil(t, class)
	assert.Equal(t, "A", class.ChildByField("name").Text)

	body := class.ChildByField("body")
	require.NotNil(t, body)
	method := body.ChildOfKind("method_declaration")
	require.NotNil(t, method)
	assert.Equal(t, "run", method.ChildByField("name").Text)
	assert.Equal(t, "void_type", method.ChildByField("type").Kind)
}

func TestJavaParser_FieldNames(t *testing.T) {
	t.Parallel()

	root := parseJava(t, "class A { void f(int a) { if (a > 0) { a = 1; } else { a = 2; } } }")

	ifs := Find(root, "if_statement")
	require.Len(t, ifs, 1)
	assert.Equal(t, "parenthesized_expression", ifs[0].ChildByField("condition").Kind)
	assert.NotNil(t, ifs[0].ChildByField("consequence"))
	assert.NotNil(t, ifs[0].ChildByField("alternative"))

	assigns := Find(root, "assignment_expression")
	require.Len(t, assigns, 2)
	assert.Equal(t, "a", assigns[0].ChildByField("left").Text)
	assert.Equal(t, "=", assigns[0].ChildByField("operator").Text)
}

func TestJavaParser_AtomicLeaves(t *testing.T) {
	t.Parallel()

	root := parseJava(t, "class A {\n  // TODO: fix\n  String s = \"hello world\";\n}")

	strs := Find(root, "string_literal")
	require.Len(t, strs, 1)
	assert.True(t, strs[0].IsLeaf())
	assert.Equal(t, `"hello world"`, strs[0].Text)

	comments := Find(root, "line_comment")
	require.Len(t, comments, 1)
	assert.Equal(t, "// TODO: fix", comments[0].Text)
	assert.Equal(t, 2, comments[0].Span.StartLine)
}

func TestJavaParser_ParseFile(t *testing.T) {
	t.Parallel()

	path, err := filepath.Abs(filepath.Join(testJavaDir, "Predicates.java"))
	require.NoError(t, err)

	root, src, err := NewJavaParser().ParseFile(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.NotEmpty(t, src)
	assert.Len(t, Find(root, "method_declaration"), 1)
}

func TestJavaParser_MissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := NewJavaParser().ParseFile(context.Background(), "/nonexistent/Nope.java")
	require.Error(t, err)
}

func TestJavaParser_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJavaParser().Parse(ctx, []byte("class A {}"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestJavaParser_CancelAfterParse(t *testing.T) {
	t.Parallel()

	p := NewJavaParser()
	src := []byte("class A { int f(int x) { return x > 0 ? x : -x; } }")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				ctx, cancel := context.WithCancel(context.Background())
				root, err := p.Parse(ctx, src)
				cancel()
				assert.NoError(t, err)
				assert.NotNil(t, root)
			}
		}()
	}
	wg.Wait()

	// give any stray goroutine tied to a freed parser time to run
	time.Sleep(50 * time.Millisecond)
}

func TestNode_ContentSpacing(t *testing.T) {
	t.Parallel()

	root := parseJava(t, "class A { boolean f(java.util.List x) { return x.size() == 0; } }")

	bins := Find(root, "binary_expression")
	require.Len(t, bins, 1)
	assert.Equal(t, "x.size() == 0", bins[0].Content())
}
