package source

import (
	"context"
	"errors"
	"fmt"
	"os"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// ErrParseFailed is returned when tree-sitter produces no tree.
var ErrParseFailed = errors.New("parse failed")

// atomicKinds are collapsed into a single leaf carrying the token text.
var atomicKinds = map[string]bool{
	"string_literal":    true,
	"character_literal": true,
	"text_block":        true,
	"line_comment":      true,
	"block_comment":     true,
}

// JavaParser turns Java source into an owned Node tree.
// It is safe for concurrent use; each call creates its own tree-sitter parser.
type JavaParser struct {
	language *sitter.Language
}

// NewJavaParser creates a new Java parser.
func NewJavaParser() *JavaParser {
	return &JavaParser{
		language: sitter.NewLanguage(java.Language()),
	}
}

// Language returns the language name handled by this parser.
func (p *JavaParser) Language() string {
	return "java"
}

// ParseFile reads and parses a Java source file. The source bytes are
// returned alongside the tree since comment and line statistics need them.
func (p *JavaParser) ParseFile(ctx context.Context, filePath string) (*Node, []byte, error) {
	src, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	root, err := p.Parse(ctx, src)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return root, src, nil
}

// Parse parses Java source held in memory.
func (p *JavaParser) Parse(ctx context.Context, src []byte) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, ErrParseFailed
	}
	defer tree.Close()

	return convert(tree.RootNode(), src, ""), nil
}

// convert copies a tree-sitter node and its subtree into the owned model.
func convert(n *sitter.Node, src []byte, field string) *Node {
	start := n.StartPosition()
	end := n.EndPosition()
	out := &Node{
		Kind:  n.Kind(),
		Field: field,
		Named: n.IsNamed(),
		Span: Span{
			StartLine: int(start.Row) + 1,
			StartCol:  int(start.Column),
			EndLine:   int(end.Row) + 1,
			EndCol:    int(end.Column),
		},
	}

	count := n.ChildCount()
	if count == 0 || atomicKinds[out.Kind] {
		out.Text = n.Utf8Text(src)
		return out
	}

	out.Children = make([]*Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		out.Children = append(out.Children, convert(child, src, n.FieldNameForChild(uint32(i))))
	}
	return out
}
