package dataflow

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mvp-joe/astdigest/internal/naming"
	"github.com/mvp-joe/astdigest/internal/scope"
	"github.com/mvp-joe/astdigest/internal/source"
)

// KeyFunc names the callable a method or constructor declaration opens.
type KeyFunc func(decl *source.Node) string

// Tracker walks a syntax tree and records variable usage.
type Tracker struct {
	keys KeyFunc

	usage    *Usage
	declared map[*source.Node]bool
}

// NewTracker returns a tracker. When keys is nil, callables are keyed by their
// declared name.
func NewTracker(keys KeyFunc) *Tracker {
	if keys == nil {
		keys = func(decl *source.Node) string {
			return decl.ChildByField("name").GetText()
		}
	}
	return &Tracker{keys: keys}
}

// Track walks root and returns the usage it found. Each call starts from
// empty state.
func (t *Tracker) Track(root *source.Node) *Usage {
	t.usage = &Usage{Variables: make(map[string]*Variable)}
	t.declared = make(map[*source.Node]bool)
	t.walk(root, scope.Context{})
	return t.usage
}

func (t *Tracker) walk(n *source.Node, ctx scope.Context) {
	if n == nil {
		return
	}

	switch n.Kind {
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
		ctx = ctx.WithClass(n.ChildByField("name").GetText())

	case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
		ctx = ctx.WithMethod(t.keys(n))

	case "variable_declarator":
		t.declareNamed(n, ctx, ctx.Parent().ChildByField("type"))

	case "formal_parameter", "enhanced_for_statement", "resource":
		t.declareNamed(n, ctx, n.ChildByField("type"))

	case "catch_formal_parameter":
		t.declareNamed(n, ctx, n.ChildOfKind("catch_type"))

	case "lambda_expression":
		t.lambdaParams(n.ChildByField("parameters"), ctx)

	case "identifier":
		t.reference(n, ctx)
		return

	case "method_reference", "package_declaration", "import_declaration",
		"labeled_statement", "break_statement", "continue_statement",
		"marker_annotation", "annotation", "line_comment", "block_comment":
		return
	}

	inner := ctx.Push(n)
	for _, c := range n.Children {
		t.walk(c, inner)
	}
}

func (t *Tracker) declareNamed(n *source.Node, ctx scope.Context, typeNode *source.Node) {
	name := n.ChildByField("name")
	if name == nil || name.Kind != "identifier" {
		return
	}
	t.declared[name] = true
	t.declare(name, ctx, typeNode)
}

func (t *Tracker) declare(name *source.Node, ctx scope.Context, typeNode *source.Node) {
	typ, guessed := typeNode.Content(), false
	if typ == "" || typ == "var" {
		typ, guessed = GuessType(name.Text), true
	}
	t.usage.declare(name.Text, ctx.Callable(), typ, guessed, name.Span.StartLine)
}

// lambdaParams declares the parameters of a lambda written without types.
// Typed parameter lists are formal_parameters and handled by the walk.
func (t *Tracker) lambdaParams(params *source.Node, ctx scope.Context) {
	switch params.GetKind() {
	case "identifier":
		t.declared[params] = true
		t.declare(params, ctx, nil)
	case "inferred_parameters":
		for _, p := range params.ChildrenOfKind("identifier") {
			t.declared[p] = true
			t.declare(p, ctx, nil)
		}
	}
}

// reference records a read or write of an identifier, or nothing when the
// identifier names something other than a variable.
func (t *Tracker) reference(n *source.Node, ctx scope.Context) {
	if t.declared[n] {
		return
	}
	parent := ctx.Parent()

	switch parent.GetKind() {
	case "method_declaration", "constructor_declaration", "class_declaration",
		"interface_declaration", "enum_declaration", "record_declaration",
		"enum_constant", "element_value_pair", "scoped_identifier",
		"annotation_type_element_declaration":
		return

	case "method_invocation":
		if n.Field == "name" {
			return
		}
		if n.Field == "object" && typeLike(n.Text) {
			return
		}

	case "field_access":
		if n.Field == "field" {
			if parent.ChildByField("object").GetKind() != "this" {
				return
			}
			kind := Read
			grand := ctx.Ancestor(1)
			if grand.GetKind() == "assignment_expression" && parent.Field == "left" {
				kind = Write
			}
			t.usage.record(n.Text, ctx.Callable(), kind, n.Span.StartLine)
			return
		}
		if n.Field == "object" && typeLike(n.Text) {
			return
		}
	}

	kind := Read
	switch {
	case parent.GetKind() == "assignment_expression" && n.Field == "left":
		kind = Write
	case parent.GetKind() == "update_expression":
		kind = Write
	}
	t.usage.record(n.Text, ctx.Callable(), kind, n.Span.StartLine)
}

// typeLike reports whether an identifier in object position looks like a
// class name (System.out, Math.max) rather than a variable.
func typeLike(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r) && !naming.IsConstant(name)
}

// GuessType infers a type from a variable name. It returns UnknownType when no
// rule applies.
func GuessType(name string) string {
	lower := strings.ToLower(name)
	switch lower {
	case "i", "j", "k", "n", "index", "count", "size", "length":
		return "int"
	}

	if strings.Contains(lower, "time") &&
		(strings.Contains(lower, "start") || strings.Contains(lower, "end") || strings.Contains(lower, "stamp")) {
		return "long"
	}

	for _, p := range []string{"found", "has", "is", "exists", "contains"} {
		if naming.HasCamelPrefix(name, p) {
			return "boolean"
		}
	}

	if strings.HasSuffix(name, "Num") || strings.HasSuffix(name, "Count") || naming.HasCamelPrefix(name, "num") {
		return "int"
	}

	if strings.HasSuffix(name, "Id") || strings.HasSuffix(name, "ID") {
		return "Long"
	}
	return UnknownType
}
