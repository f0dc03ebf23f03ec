// Package flow projects callable bodies onto their control-flow shape.
package flow

// Kind is the variant of a flow node.
type Kind string

const (
	Branch     Kind = "branch"
	Loop       Kind = "loop"
	Try        Kind = "try"
	Switch     Kind = "switch"
	Return     Kind = "return"
	Throw      Kind = "throw"
	Call       Kind = "call"
	Assignment Kind = "assignment"
)

// DefaultLabel is the case label of a switch default arm.
const DefaultLabel = "default"

// Node is one element of a flow tree. Only the fields relevant to Kind are
// set; regions are kept in source order.
type Node struct {
	Kind      Kind   `json:"type"`
	Construct string `json:"construct,omitempty"`
	Condition string `json:"condition,omitempty"`

	Then    []*Node  `json:"then,omitempty"`
	Else    []*Node  `json:"else,omitempty"`
	Body    []*Node  `json:"body,omitempty"`
	Catches []*Catch `json:"catches,omitempty"`
	Finally []*Node  `json:"finally,omitempty"`
	Cases   []*Case  `json:"cases,omitempty"`

	HasValue      *bool  `json:"has_value,omitempty"`
	Expression    string `json:"expression,omitempty"`
	ValueType     string `json:"value_type,omitempty"`
	ExceptionType string `json:"exception_type,omitempty"`
	Target        string `json:"target,omitempty"`
	Operator      string `json:"operator,omitempty"`

	// ShortCircuit counts && and || in the guard of a branch, loop or switch.
	ShortCircuit int `json:"-"`
}

// Catch is one catch clause of a try node.
type Catch struct {
	ExceptionType string  `json:"exception_type"`
	Body          []*Node `json:"body,omitempty"`
}

// Case is one labelled arm of a switch node.
type Case struct {
	Label string  `json:"label"`
	Body  []*Node `json:"body,omitempty"`
}

// IsContainer reports whether n opens a nesting level.
func (n *Node) IsContainer() bool {
	switch n.Kind {
	case Branch, Loop, Try, Switch:
		return true
	}
	return false
}

// Regions returns the nested flow lists of n in source order.
func (n *Node) Regions() [][]*Node {
	var out [][]*Node
	switch n.Kind {
	case Branch:
		out = append(out, n.Then, n.Else)
	case Loop:
		out = append(out, n.Body)
	case Try:
		out = append(out, n.Body)
		for _, c := range n.Catches {
			out = append(out, c.Body)
		}
		out = append(out, n.Finally)
	case Switch:
		for _, c := range n.Cases {
			out = append(out, c.Body)
		}
	}
	return out
}

// Walk visits every node of the forest in pre-order.
func Walk(nodes []*Node, visit func(*Node)) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		visit(n)
		for _, r := range n.Regions() {
			Walk(r, visit)
		}
	}
}

// Count returns how many nodes of kind k the forest holds.
func Count(nodes []*Node, k Kind) int {
	count := 0
	Walk(nodes, func(n *Node) {
		if n.Kind == k {
			count++
		}
	})
	return count
}

// ControlOnly returns a copy of the forest without call and assignment nodes.
func ControlOnly(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n == nil || n.Kind == Call || n.Kind == Assignment {
			continue
		}
		cp := *n
		cp.Then = ControlOnly(n.Then)
		cp.Else = ControlOnly(n.Else)
		cp.Body = ControlOnly(n.Body)
		cp.Finally = ControlOnly(n.Finally)
		if n.Catches != nil {
			cp.Catches = make([]*Catch, len(n.Catches))
			for i, c := range n.Catches {
				cp.Catches[i] = &Catch{ExceptionType: c.ExceptionType, Body: ControlOnly(c.Body)}
			}
		}
		if n.Cases != nil {
			cp.Cases = make([]*Case, len(n.Cases))
			for i, c := range n.Cases {
				cp.Cases[i] = &Case{Label: c.Label, Body: ControlOnly(c.Body)}
			}
		}
		out = append(out, &cp)
	}
	return out
}
