package flow

import (
	"strings"
	"unicode/utf8"

	"github.com/mvp-joe/astdigest/internal/source"
)

// DefaultWidth bounds condition and expression summaries.
const DefaultWidth = 30

// textKinds render as their token text.
var textKinds = map[string]bool{
	"identifier":                     true,
	"type_identifier":                true,
	"scoped_identifier":              true,
	"field_access":                   true,
	"this":                           true,
	"string_literal":                 true,
	"character_literal":              true,
	"text_block":                     true,
	"decimal_integer_literal":        true,
	"hex_integer_literal":            true,
	"octal_integer_literal":          true,
	"binary_integer_literal":         true,
	"decimal_floating_point_literal": true,
	"hex_floating_point_literal":     true,
	"true":                           true,
	"false":                          true,
	"null_literal":                   true,
	"array_access":                   true,
	"class_literal":                  true,
}

// Formatter renders expressions as short, bounded strings.
type Formatter struct {
	Width int
}

// NewFormatter returns a formatter with the given width, or DefaultWidth when
// width is not positive.
func NewFormatter(width int) Formatter {
	if width <= 0 {
		width = DefaultWidth
	}
	return Formatter{Width: width}
}

// Summarize renders n. It never fails; a nil node yields "unknown".
func (f Formatter) Summarize(n *source.Node) string {
	if n == nil {
		return "unknown"
	}

	switch {
	case textKinds[n.Kind] || n.IsLeaf():
		return f.Clip(n.Content())

	case n.Kind == "binary_expression":
		left := f.Clip(f.Summarize(n.ChildByField("left")))
		right := f.Clip(f.Summarize(n.ChildByField("right")))
		op := n.ChildByField("operator").GetText()
		if op == "" {
			op = "?"
		}
		return left + " " + op + " " + right

	case n.Kind == "parenthesized_expression":
		return "(" + f.Summarize(firstOperand(n)) + ")"

	case n.Kind == "unary_expression":
		return n.ChildByField("operator").GetText() + f.Summarize(n.ChildByField("operand"))

	case n.Kind == "method_invocation":
		return f.Clip(f.invocation(n))

	case n.Kind == "object_creation_expression":
		return f.Clip("new " + n.ChildByField("type").Content() + args(n.ChildByField("arguments")))
	}

	return n.Kind
}

func (f Formatter) invocation(n *source.Node) string {
	var b strings.Builder
	if obj := n.ChildByField("object"); obj != nil {
		b.WriteString(f.Summarize(obj))
		b.WriteByte('.')
	}
	b.WriteString(n.ChildByField("name").GetText())
	b.WriteString(args(n.ChildByField("arguments")))
	return b.String()
}

// args renders an argument list as "()" or "(…)".
func args(list *source.Node) string {
	if len(list.NamedChildren()) == 0 {
		return "()"
	}
	return "(…)"
}

// Clip truncates s to the formatter width, marking the cut with "...".
func (f Formatter) Clip(s string) string {
	width := f.Width
	if width <= 0 {
		width = DefaultWidth
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	keep := width - 3
	if keep < 1 {
		keep = 1
	}
	runes := []rune(s)
	return string(runes[:keep]) + "..."
}

// firstOperand returns the first child that is not a parenthesis token.
func firstOperand(n *source.Node) *source.Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind != "(" && c.Kind != ")" {
			return c
		}
	}
	return nil
}

// ValueType guesses the literal type of an expression for display.
func ValueType(n *source.Node) string {
	switch n.GetKind() {
	case "string_literal", "text_block", "character_literal":
		return "string"
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		return "int"
	case "true", "false":
		return "boolean"
	case "null_literal":
		return "null"
	}
	return "unknown"
}

// countShortCircuit counts && and || operators in an expression.
func countShortCircuit(n *source.Node) int {
	count := 0
	source.Walk(n, func(c *source.Node) bool {
		if c.Kind == "lambda_expression" {
			return false
		}
		if c.Kind == "binary_expression" {
			switch c.ChildByField("operator").GetText() {
			case "&&", "||":
				count++
			}
		}
		return true
	})
	return count
}
