// Package compact builds the compact tree: a pruned, summarized and
// deduplicated projection of a syntax tree.
package compact

import (
	"github.com/mvp-joe/astdigest/internal/dedupe"
	"github.com/mvp-joe/astdigest/internal/flow"
	"github.com/mvp-joe/astdigest/internal/intern"
)

// Param is one declared parameter.
type Param struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Node is one element of the compact tree. A node with Ref set stands for the
// earlier node carrying the same ID and has no other content.
type Node struct {
	Type string `json:"type,omitempty"`
	ID   int    `json:"id,omitempty"`
	Ref  int    `json:"ref,omitempty"`

	Text       string           `json:"text,omitempty"`
	TextRef    *intern.SymbolID `json:"text_ref,omitempty"`
	TextLength int              `json:"text_length,omitempty"`

	Name         string   `json:"name,omitempty"`
	Modifiers    []string `json:"modifiers,omitempty"`
	Extends      string   `json:"extends,omitempty"`
	Interfaces   []string `json:"interfaces,omitempty"`
	ReturnType   string   `json:"return_type,omitempty"`
	DeclaredType string   `json:"declared_type,omitempty"`
	Parameters   []Param  `json:"parameters,omitempty"`
	Throws       []string `json:"throws,omitempty"`
	Names        []string `json:"names,omitempty"`
	Value        string   `json:"value,omitempty"`

	Object    string   `json:"object,omitempty"`
	Arguments *int     `json:"arguments,omitempty"`
	Count     *int     `json:"count,omitempty"`
	Items     []string `json:"items,omitempty"`

	// Flow holds the merged control-flow or state-change summary. Its kind
	// is not serialized; Type already names the node.
	*flow.Node

	Children []*Node `json:"children,omitempty"`

	// exempt nodes survive pruning even without content.
	exempt bool

	// digest covers the compacted content; a ref carries its target's.
	digest dedupe.Digest
	sealed bool
	// entry is the shared subtree a ref stands for until Tree links it.
	entry *dedupe.Entry[*Node]
}

// IsRef reports whether n is a back-reference.
func (n *Node) IsRef() bool {
	return n != nil && (n.Ref != 0 || n.entry != nil)
}

// composite reports whether n has enough structure to be worth sharing.
func (n *Node) composite() bool {
	return n.Node != nil || len(n.Children) > 0
}

// empty reports whether n carries nothing beyond its tag.
func (n *Node) empty() bool {
	return n.Text == "" && n.TextRef == nil && n.TextLength == 0 &&
		n.Name == "" && len(n.Modifiers) == 0 && n.Extends == "" &&
		len(n.Interfaces) == 0 && n.ReturnType == "" && n.DeclaredType == "" &&
		len(n.Parameters) == 0 && len(n.Throws) == 0 && len(n.Names) == 0 &&
		n.Value == "" && n.Object == "" && n.Arguments == nil && n.Count == nil &&
		len(n.Items) == 0 && n.Node == nil && len(n.Children) == 0 && !n.IsRef()
}

func intPtr(v int) *int {
	return &v
}
