package compact

import (
	"fmt"

	"github.com/mvp-joe/astdigest/internal/intern"
)

// Expand returns a copy of root with every back-reference replaced by a copy
// of the node it names and every text_ref replaced by its text. It fails when
// a reference does not resolve.
func Expand(root *Node, symbols *intern.Table) (*Node, error) {
	targets := make(map[int]*Node)
	collect(root, targets)
	return expand(root, targets, symbols)
}

func collect(n *Node, targets map[int]*Node) {
	if n == nil {
		return
	}
	if n.ID != 0 {
		targets[n.ID] = n
	}
	for _, c := range n.Children {
		collect(c, targets)
	}
}

func expand(n *Node, targets map[int]*Node, symbols *intern.Table) (*Node, error) {
	if n == nil {
		return nil, nil
	}
	if n.IsRef() {
		target, ok := targets[n.Ref]
		if !ok {
			return nil, fmt.Errorf("unresolved ref %d", n.Ref)
		}
		n = target
	}

	cp := *n
	cp.ID = 0
	if n.TextRef != nil {
		text, ok := symbols.Symbol(*n.TextRef)
		if !ok {
			return nil, fmt.Errorf("unresolved text_ref %d", *n.TextRef)
		}
		cp.Text = text
		cp.TextRef = nil
	}
	if n.Children != nil {
		cp.Children = make([]*Node, 0, len(n.Children))
		for _, c := range n.Children {
			ec, err := expand(c, targets, symbols)
			if err != nil {
				return nil, err
			}
			cp.Children = append(cp.Children, ec)
		}
	}
	return &cp, nil
}

// Walk visits every node of the tree in pre-order without following refs.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}
