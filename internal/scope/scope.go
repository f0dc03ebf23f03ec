// Package scope carries the traversal context threaded through tree walks.
package scope

import "github.com/mvp-joe/astdigest/internal/source"

// FieldScope names the pseudo-callable that owns field declarations.
const FieldScope = "<fields>"

// Context is an immutable view of where a walker currently is. The With
// methods return modified copies, so a subtree's context is dropped simply by
// returning from the recursive call.
type Context struct {
	Class  string
	Method string
	parent *frame
}

type frame struct {
	node *source.Node
	up   *frame
}

// WithClass enters a type declaration. Nested types are dot-qualified.
func (c Context) WithClass(name string) Context {
	if c.Class != "" && name != "" {
		name = c.Class + "." + name
	}
	c.Class = name
	c.Method = ""
	return c
}

// WithMethod enters a callable.
func (c Context) WithMethod(key string) Context {
	c.Method = key
	return c
}

// Push records n as the parent of the nodes visited next.
func (c Context) Push(n *source.Node) Context {
	c.parent = &frame{node: n, up: c.parent}
	return c
}

// Parent returns the nearest ancestor, or nil at the root.
func (c Context) Parent() *source.Node {
	if c.parent == nil {
		return nil
	}
	return c.parent.node
}

// Ancestor returns the ancestor n levels up; Ancestor(0) is the parent.
func (c Context) Ancestor(n int) *source.Node {
	f := c.parent
	for ; f != nil && n > 0; n-- {
		f = f.up
	}
	if f == nil {
		return nil
	}
	return f.node
}

// Callable returns the enclosing callable key, or FieldScope outside methods.
func (c Context) Callable() string {
	if c.Method == "" {
		return FieldScope
	}
	return c.Method
}
