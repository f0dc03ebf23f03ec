// Package policy classifies syntax node kinds into compression categories.
//
// Classification depends on the kind tag alone, never on node content, so the
// table can be audited and tested without a parser.
package policy

// Category tells the compressor how to treat a node kind.
type Category int

const (
	Default Category = iota
	Text
	ControlFlow
	StateChange
	Comment
	Ignored
	Simplified
	Structural
)

var categoryNames = [...]string{
	Default:     "default",
	Text:        "text",
	ControlFlow: "control_flow",
	StateChange: "state_change",
	Comment:     "comment",
	Ignored:     "ignored",
	Simplified:  "simplified",
	Structural:  "structural",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Table maps kind tags to categories. Kinds absent from the table are Default.
type Table map[string]Category

// Classify returns the category of kind. It is total.
func (t Table) Classify(kind string) Category {
	if c, ok := t[kind]; ok {
		return c
	}
	return Default
}

// KindsOf lists the kinds the table assigns to c.
func (t Table) KindsOf(c Category) []string {
	var out []string
	for k, v := range t {
		if v == c {
			out = append(out, k)
		}
	}
	return out
}

// Java is the policy table for tree-sitter-java node kinds.
var Java = Table{
	// Text-bearing leaves and names.
	"identifier":                     Text,
	"type_identifier":                Text,
	"scoped_identifier":              Text,
	"scoped_type_identifier":         Text,
	"string_literal":                 Text,
	"character_literal":              Text,
	"text_block":                     Text,
	"decimal_integer_literal":        Text,
	"hex_integer_literal":            Text,
	"octal_integer_literal":          Text,
	"binary_integer_literal":         Text,
	"decimal_floating_point_literal": Text,
	"hex_floating_point_literal":     Text,
	"true":                           Text,
	"false":                          Text,
	"null_literal":                   Text,
	"this":                           Text,
	"void_type":                      Text,
	"boolean_type":                   Text,
	"integral_type":                  Text,
	"floating_point_type":            Text,

	// Control flow.
	"if_statement":                 ControlFlow,
	"while_statement":              ControlFlow,
	"for_statement":                ControlFlow,
	"enhanced_for_statement":       ControlFlow,
	"do_statement":                 ControlFlow,
	"try_statement":                ControlFlow,
	"try_with_resources_statement": ControlFlow,
	"switch_expression":            ControlFlow,
	"return_statement":             ControlFlow,
	"throw_statement":              ControlFlow,

	// State changes.
	"assignment_expression": StateChange,
	"update_expression":     StateChange,

	// Comments.
	"line_comment":  Comment,
	"block_comment": Comment,
	"comment":       Comment,

	// Punctuation and empty statements.
	";":               Ignored,
	",":               Ignored,
	".":               Ignored,
	"{":               Ignored,
	"}":               Ignored,
	"(":               Ignored,
	")":               Ignored,
	"[":               Ignored,
	"]":               Ignored,
	"empty_statement": Ignored,

	// Subtrees replaced by a summary.
	"formal_parameters": Simplified,
	"argument_list":     Simplified,
	"modifiers":         Simplified,
	"type_arguments":    Simplified,
	"type_parameters":   Simplified,
	"annotation":        Simplified,
	"marker_annotation": Simplified,
	"array_initializer": Simplified,
	"throws":            Simplified,
	"dimensions":        Simplified,
	"lambda_expression": Simplified,

	// Declarations with fixed extraction.
	"class_declaration":       Structural,
	"interface_declaration":   Structural,
	"enum_declaration":        Structural,
	"record_declaration":      Structural,
	"method_declaration":      Structural,
	"constructor_declaration": Structural,
	"field_declaration":       Structural,
	"constant_declaration":    Structural,
	"package_declaration":     Structural,
	"import_declaration":      Structural,
}

// Classify classifies kind using the Java table.
func Classify(kind string) Category {
	return Java.Classify(kind)
}
