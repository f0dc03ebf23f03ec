package source

import (
	"strings"
)

// Span is the source range of a node. Lines are 1-based, columns 0-based.
type Span struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

// Contains reports whether line falls inside the span.
func (s Span) Contains(line int) bool {
	return line >= s.StartLine && line <= s.EndLine
}

// Node is a read-only syntax tree node handed to the engine.
// The zero value and nil are both valid and behave as an empty node.
type Node struct {
	Kind     string
	Text     string
	Field    string
	Named    bool
	Children []*Node
	Span     Span
}

// GetKind returns the kind tag, or "" for a nil node.
func (n *Node) GetKind() string {
	if n == nil {
		return ""
	}
	return n.Kind
}

// GetText returns the literal text, or "" when absent.
func (n *Node) GetText() string {
	if n == nil {
		return ""
	}
	return n.Text
}

// GetChildren returns the children, or nil for a nil node.
func (n *Node) GetChildren() []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n == nil || len(n.Children) == 0
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	if n == nil {
		return 0
	}
	return len(n.Children)
}

// ChildByField returns the first child carrying the given field name.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenByField returns all children carrying the given field name.
func (n *Node) ChildrenByField(field string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// ChildOfKind returns the first child whose kind is any of kinds.
func (n *Node) ChildOfKind(kinds ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		for _, k := range kinds {
			if c.Kind == k {
				return c
			}
		}
	}
	return nil
}

// ChildrenOfKind returns all children of the given kind.
func (n *Node) ChildrenOfKind(kind string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the children that are grammar rules rather than
// anonymous tokens.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// Content rebuilds the token text of the subtree. Adjacent tokens are joined
// without a separator when their spans touch, otherwise with one space.
func (n *Node) Content() string {
	if n == nil {
		return ""
	}
	if n.IsLeaf() {
		return n.Text
	}
	var b strings.Builder
	var prev *Node
	Walk(n, func(c *Node) bool {
		if !c.IsLeaf() {
			return true
		}
		if prev != nil && !touches(prev.Span, c.Span) {
			b.WriteByte(' ')
		}
		b.WriteString(c.Text)
		prev = c
		return true
	})
	return b.String()
}

func touches(a, b Span) bool {
	return a.EndLine == b.StartLine && a.EndCol == b.StartCol
}

// Walk visits the subtree in pre-order. Returning false from visit skips the
// node's children.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// Find returns every node in the subtree with the given kind, in pre-order.
func Find(n *Node, kind string) []*Node {
	var out []*Node
	Walk(n, func(c *Node) bool {
		if c.Kind == kind {
			out = append(out, c)
		}
		return true
	})
	return out
}
