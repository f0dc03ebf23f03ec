package flow

import (
	"strings"

	"github.com/mvp-joe/astdigest/internal/policy"
	"github.com/mvp-joe/astdigest/internal/source"
)

// Extractor builds flow trees from statements.
type Extractor struct {
	format Formatter
}

// NewExtractor creates an extractor that summarizes with f.
func NewExtractor(f Formatter) *Extractor {
	return &Extractor{format: f}
}

// Formatter returns the summary formatter in use.
func (e *Extractor) Formatter() Formatter {
	return e.format
}

// Extract returns the flow list of a block or single statement. Blocks are
// unwrapped and their statements flattened in source order.
func (e *Extractor) Extract(n *source.Node) []*Node {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case "block", "constructor_body", "program", "class_body", "switch_block_statement_group":
		var out []*Node
		for _, c := range n.Children {
			out = append(out, e.Extract(c)...)
		}
		return out

	case "labeled_statement":
		named := n.NamedChildren()
		if len(named) == 0 {
			return nil
		}
		return e.Extract(named[len(named)-1])

	case "synchronized_statement":
		return e.Extract(n.ChildByField("body"))

	case "expression_statement":
		named := n.NamedChildren()
		if len(named) == 0 {
			return nil
		}
		if node := e.Statement(named[0]); node != nil {
			return []*Node{node}
		}
		return nil

	case "local_variable_declaration":
		var out []*Node
		for _, decl := range n.ChildrenByField("declarator") {
			value := decl.ChildByField("value")
			if value == nil {
				continue
			}
			out = append(out, &Node{
				Kind:       Assignment,
				Target:     decl.ChildByField("name").GetText(),
				Operator:   "=",
				Expression: e.format.Summarize(value),
			})
		}
		return out

	case "explicit_constructor_invocation":
		return []*Node{{Kind: Call, Expression: e.format.Clip(n.Content())}}
	}

	if policy.Classify(n.Kind) == policy.Ignored || policy.Classify(n.Kind) == policy.Comment {
		return nil
	}
	if node := e.Statement(n); node != nil {
		return []*Node{node}
	}
	return nil
}

// Statement maps one statement or expression to its flow node, or nil when
// the node carries no flow meaning.
func (e *Extractor) Statement(n *source.Node) *Node {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case "if_statement":
		cond := firstOperand(n.ChildByField("condition"))
		return &Node{
			Kind:         Branch,
			Condition:    e.format.Summarize(cond),
			ShortCircuit: countShortCircuit(cond),
			Then:         e.Extract(n.ChildByField("consequence")),
			Else:         e.Extract(n.ChildByField("alternative")),
		}

	case "while_statement", "do_statement":
		cond := firstOperand(n.ChildByField("condition"))
		construct := "while"
		if n.Kind == "do_statement" {
			construct = "do"
		}
		return &Node{
			Kind:         Loop,
			Construct:    construct,
			Condition:    e.format.Summarize(cond),
			ShortCircuit: countShortCircuit(cond),
			Body:         e.Extract(n.ChildByField("body")),
		}

	case "for_statement":
		node := &Node{
			Kind:      Loop,
			Construct: "for",
			Body:      e.Extract(n.ChildByField("body")),
		}
		if cond := n.ChildByField("condition"); cond != nil {
			node.Condition = e.format.Summarize(cond)
			node.ShortCircuit = countShortCircuit(cond)
		}
		return node

	case "enhanced_for_statement":
		return &Node{
			Kind:      Loop,
			Construct: "foreach",
			Condition: n.ChildByField("name").GetText() + " : " + e.format.Summarize(n.ChildByField("value")),
			Body:      e.Extract(n.ChildByField("body")),
		}

	case "try_statement", "try_with_resources_statement":
		return e.try(n)

	case "switch_expression":
		return e.switchNode(n)

	case "return_statement":
		node := &Node{Kind: Return}
		value := firstValue(n)
		has := value != nil
		node.HasValue = &has
		if has {
			node.Expression = e.format.Summarize(value)
			node.ValueType = ValueType(value)
		}
		return node

	case "throw_statement":
		value := firstValue(n)
		node := &Node{
			Kind:       Throw,
			Expression: e.format.Summarize(value),
			ValueType:  ValueType(value),
		}
		if value.GetKind() == "object_creation_expression" {
			node.ExceptionType = value.ChildByField("type").Content()
		}
		return node

	case "method_invocation", "object_creation_expression":
		node := &Node{Kind: Call, Expression: e.format.Summarize(n)}
		if n.Kind == "method_invocation" {
			node.Target = n.ChildByField("name").GetText()
		}
		return node

	case "assignment_expression":
		return &Node{
			Kind:       Assignment,
			Target:     n.ChildByField("left").Content(),
			Operator:   n.ChildByField("operator").GetText(),
			Expression: e.format.Summarize(n.ChildByField("right")),
		}

	case "update_expression":
		var target, op string
		for _, c := range n.Children {
			if c.Named {
				target = c.Content()
			} else {
				op = c.Text
			}
		}
		return &Node{
			Kind:       Assignment,
			Target:     target,
			Operator:   op,
			Expression: e.format.Clip(n.Content()),
		}
	}

	return nil
}

func (e *Extractor) try(n *source.Node) *Node {
	node := &Node{
		Kind: Try,
		Body: e.Extract(n.ChildByField("body")),
	}
	if res := n.ChildByField("resources"); res != nil {
		node.Expression = e.format.Clip(res.Content())
	}
	for _, c := range n.Children {
		switch c.Kind {
		case "catch_clause":
			node.Catches = append(node.Catches, &Catch{
				ExceptionType: catchType(c),
				Body:          e.Extract(c.ChildByField("body")),
			})
		case "finally_clause":
			node.Finally = e.Extract(c.ChildOfKind("block"))
		}
	}
	return node
}

func catchType(clause *source.Node) string {
	param := clause.ChildOfKind("catch_formal_parameter")
	if t := param.ChildOfKind("catch_type"); t != nil {
		return t.Content()
	}
	return "unknown"
}

func (e *Extractor) switchNode(n *source.Node) *Node {
	cond := firstOperand(n.ChildByField("condition"))
	node := &Node{
		Kind:         Switch,
		Condition:    e.format.Summarize(cond),
		ShortCircuit: countShortCircuit(cond),
	}

	for _, arm := range n.ChildByField("body").GetChildren() {
		switch arm.Kind {
		case "switch_block_statement_group":
			var labels []string
			var body []*Node
			for _, c := range arm.Children {
				if c.Kind == "switch_label" {
					labels = append(labels, e.label(c))
					continue
				}
				body = append(body, e.Extract(c)...)
			}
			for i, l := range labels {
				cs := &Case{Label: l}
				if i == len(labels)-1 {
					cs.Body = body
				}
				node.Cases = append(node.Cases, cs)
			}

		case "switch_rule":
			cs := &Case{}
			for _, c := range arm.Children {
				if c.Kind == "switch_label" {
					cs.Label = e.label(c)
					continue
				}
				cs.Body = append(cs.Body, e.Extract(c)...)
			}
			node.Cases = append(node.Cases, cs)
		}
	}
	return node
}

func (e *Extractor) label(n *source.Node) string {
	var parts []string
	for _, c := range n.Children {
		if c.Kind == "default" {
			return DefaultLabel
		}
		if c.Named {
			parts = append(parts, e.format.Summarize(c))
		}
	}
	if len(parts) == 0 {
		return DefaultLabel
	}
	return strings.Join(parts, ", ")
}

// firstValue returns the first named, non-comment child of a statement.
func firstValue(n *source.Node) *source.Node {
	for _, c := range n.NamedChildren() {
		if policy.Classify(c.Kind) != policy.Comment {
			return c
		}
	}
	return nil
}
