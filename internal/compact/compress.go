package compact

import (
	"encoding/json"
	"strings"

	"github.com/mvp-joe/astdigest/internal/dedupe"
	"github.com/mvp-joe/astdigest/internal/flow"
	"github.com/mvp-joe/astdigest/internal/intern"
	"github.com/mvp-joe/astdigest/internal/policy"
	"github.com/mvp-joe/astdigest/internal/scope"
	"github.com/mvp-joe/astdigest/internal/source"
)

const (
	// DefaultMaxDepth bounds recursion into the syntax tree.
	DefaultMaxDepth = 50
	// MaxTextLength clips literal text.
	MaxTextLength = 100
	// minSymbolCount is how often a text must occur to be interned.
	minSymbolCount = 2
)

// Options controls a Compressor.
type Options struct {
	MaxDepth         int
	PreserveComments bool
	PruneEmpty       bool
	Deduplicate      bool
	UseSymbols       bool
	DedupeFloor      int
	MinSymbolLength  int
	Width            int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxDepth:         DefaultMaxDepth,
		PreserveComments: true,
		PruneEmpty:       true,
		Deduplicate:      true,
		UseSymbols:       true,
		DedupeFloor:      dedupe.DefaultFloor,
		MinSymbolLength:  intern.DefaultMinLength,
		Width:            flow.DefaultWidth,
	}
}

// Compressor turns one syntax tree into a compact tree. A Compressor holds
// run-scoped state and must not be reused across files.
type Compressor struct {
	opts    Options
	format  flow.Formatter
	flow    *flow.Extractor
	cache   *dedupe.Cache[*Node]
	symbols *intern.Table
}

// New creates a compressor with fresh state.
func New(opts Options) *Compressor {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	f := flow.NewFormatter(opts.Width)
	return &Compressor{
		opts:    opts,
		format:  f,
		flow:    flow.NewExtractor(f),
		cache:   dedupe.NewCache[*Node](opts.DedupeFloor),
		symbols: intern.New(opts.MinSymbolLength),
	}
}

// Tree runs the interning pass over root, compresses it and numbers the
// back-references that made it into the result.
func (c *Compressor) Tree(root *source.Node) *Node {
	c.Prepare(root)
	out := c.compress(root, 0, scope.Context{})
	c.link(out)
	return out
}

// link assigns IDs in document order. Refs built inside subtrees that were
// later replaced themselves never reach the output and take no ID.
func (c *Compressor) link(root *Node) {
	Walk(root, func(n *Node) {
		if n.entry == nil {
			return
		}
		n.Ref = c.cache.Ref(n.entry)
		n.entry.Value.ID = n.Ref
		n.entry = nil
	})
}

// Prepare builds the symbol table from texts occurring at least twice. The
// table is frozen afterwards.
func (c *Compressor) Prepare(root *source.Node) {
	if !c.opts.UseSymbols {
		c.symbols.Freeze()
		return
	}
	counter := intern.NewCounter()
	source.Walk(root, func(n *source.Node) bool {
		switch policy.Classify(n.Kind) {
		case policy.Text:
			counter.Add(clipText(n.Content()))
			return false
		case policy.Comment, policy.Ignored:
			return false
		}
		return true
	})
	c.symbols = counter.Build(c.opts.MinSymbolLength, minSymbolCount)
}

// Symbols returns the symbol table referenced by text_ref values.
func (c *Compressor) Symbols() *intern.Table {
	return c.symbols
}

// Stats reports the number of shared subtrees and back-references issued.
func (c *Compressor) Stats() (shared, refs int) {
	return c.cache.Stats()
}

// compress compacts n found at depth. It returns nil when n contributes
// nothing to the output.
func (c *Compressor) compress(n *source.Node, depth int, ctx scope.Context) *Node {
	if n == nil || depth > c.opts.MaxDepth {
		return nil
	}
	cat := policy.Classify(n.Kind)
	if cat == policy.Ignored {
		return nil
	}
	if depth == c.opts.MaxDepth {
		return seal(&Node{Type: n.Kind, exempt: true})
	}
	if cat == policy.Comment {
		if !c.opts.PreserveComments {
			return nil
		}
		return seal(&Node{Type: n.Kind, Text: clipText(n.Content())})
	}

	out := c.build(n, cat, depth, ctx)
	if out == nil {
		return nil
	}
	if out.sealed {
		// already compressed as the single child of a statement
		return out
	}
	if c.opts.PruneEmpty && !out.exempt && out.empty() {
		return nil
	}
	seal(out)

	if !c.opts.Deduplicate || !out.composite() {
		return out
	}
	if e, ok := c.cache.Lookup(out.digest, depth); ok {
		return &Node{digest: out.digest, sealed: true, entry: e}
	}
	c.cache.Register(out.digest, out)
	return out
}

// seal fixes the digest of n from its own content and its children's
// digests. Children are always sealed before their parent.
func seal(n *Node) *Node {
	fields := *n
	fields.Children = nil
	payload, _ := json.Marshal(&fields)

	children := make([]dedupe.Digest, len(n.Children))
	for i, ch := range n.Children {
		children[i] = ch.digest
	}
	n.digest = dedupe.Sum(n.Type, string(payload), children)
	n.sealed = true
	return n
}

func (c *Compressor) build(n *source.Node, cat policy.Category, depth int, ctx scope.Context) *Node {
	switch cat {
	case policy.Structural:
		return c.structural(n, depth, ctx)

	case policy.ControlFlow, policy.StateChange:
		fn := c.flow.Statement(n)
		if fn == nil {
			return c.children(n, depth, ctx)
		}
		return &Node{Type: n.Kind, Node: fn}

	case policy.Simplified:
		return c.simplified(n)

	case policy.Text:
		return c.text(n)
	}

	switch n.Kind {
	case "method_invocation":
		out := &Node{
			Type:      n.Kind,
			Name:      n.ChildByField("name").GetText(),
			Arguments: intPtr(len(n.ChildByField("arguments").NamedChildren())),
		}
		if obj := n.ChildByField("object"); obj != nil {
			out.Object = c.format.Summarize(obj)
		}
		return out

	case "block", "constructor_body":
		return &Node{Type: n.Kind, Children: c.statements(n, depth, ctx)}

	case "expression_statement":
		if named := n.NamedChildren(); len(named) == 1 {
			return c.compress(named[0], depth+1, ctx.Push(n))
		}
	}
	return c.children(n, depth, ctx)
}

func (c *Compressor) children(n *source.Node, depth int, ctx scope.Context) *Node {
	out := &Node{Type: n.Kind}
	inner := ctx.Push(n)
	for _, child := range n.Children {
		if cn := c.compress(child, depth+1, inner); cn != nil {
			out.Children = append(out.Children, cn)
		}
	}
	return out
}

// statements compresses the statements of a block, splicing nested blocks
// into the surrounding list. Spliced blocks never become nodes of their own,
// so nothing can refer to them.
func (c *Compressor) statements(block *source.Node, depth int, ctx scope.Context) []*Node {
	var out []*Node
	inner := ctx.Push(block)
	for _, child := range block.Children {
		if child.Kind == "block" {
			out = append(out, c.statements(child, depth+1, inner)...)
			continue
		}
		if cn := c.compress(child, depth+1, inner); cn != nil {
			out = append(out, cn)
		}
	}
	return out
}

func (c *Compressor) text(n *source.Node) *Node {
	text := clipText(n.Content())
	out := &Node{Type: n.Kind}
	if id, ok := c.symbols.Lookup(text); ok {
		out.TextRef = &id
		return out
	}
	out.Text = text
	return out
}

func (c *Compressor) simplified(n *source.Node) *Node {
	out := &Node{Type: n.Kind}
	switch n.Kind {
	case "formal_parameters", "argument_list", "type_arguments", "type_parameters":
		out.Count = intPtr(len(n.NamedChildren()))
		out.exempt = true
	case "modifiers":
		out.Items = modifierItems(n)
	default:
		text := n.Content()
		if len([]rune(text)) > c.format.Width {
			out.TextLength = len(text)
		} else {
			out.Text = text
		}
	}
	return out
}

func (c *Compressor) structural(n *source.Node, depth int, ctx scope.Context) *Node {
	out := &Node{Type: n.Kind, exempt: true}

	switch n.Kind {
	case "package_declaration":
		if named := n.NamedChildren(); len(named) > 0 {
			out.Name = named[0].Content()
		}

	case "import_declaration":
		out.Name = ImportName(n)

	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		out.Name = n.ChildByField("name").GetText()
		out.Modifiers = Modifiers(n)
		out.Extends = Superclass(n)
		out.Interfaces = Interfaces(n)
		if params := n.ChildByField("parameters"); params != nil {
			out.Parameters = Params(params)
		}
		body := n.ChildByField("body")
		inner := ctx.WithClass(out.Name).Push(n).Push(body)
		for _, m := range body.GetChildren() {
			if cn := c.compress(m, depth+2, inner); cn != nil {
				out.Children = append(out.Children, cn)
			}
		}

	case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
		out.Name = n.ChildByField("name").GetText()
		out.Modifiers = Modifiers(n)
		out.ReturnType = n.ChildByField("type").Content()
		out.Parameters = Params(n.ChildByField("parameters"))
		out.Throws = Throws(n)
		if body := n.ChildByField("body"); body != nil {
			out.Children = c.statements(body, depth+1, ctx.WithMethod(out.Name).Push(n))
		}

	case "field_declaration", "constant_declaration":
		out.Modifiers = Modifiers(n)
		out.DeclaredType = n.ChildByField("type").Content()
		for _, d := range n.ChildrenByField("declarator") {
			out.Names = append(out.Names, d.ChildByField("name").GetText())
			if out.Value == "" {
				if v := d.ChildByField("value"); v != nil {
					out.Value = c.format.Summarize(v)
				}
			}
		}
	}
	return out
}

func clipText(s string) string {
	if len([]rune(s)) <= MaxTextLength {
		return s
	}
	return string([]rune(s)[:MaxTextLength-3]) + "..."
}

// ImportName returns the imported path of an import declaration, e.g.
// "java.util.List" or "static org.junit.Assert.*".
func ImportName(n *source.Node) string {
	s := strings.TrimSpace(n.Content())
	s = strings.TrimPrefix(s, "import")
	s = strings.TrimSuffix(s, ";")
	return strings.TrimSpace(s)
}

// Modifiers returns the keyword modifiers of a declaration.
func Modifiers(decl *source.Node) []string {
	return modifierKeywords(decl.ChildOfKind("modifiers"))
}

func modifierKeywords(mods *source.Node) []string {
	var out []string
	for _, m := range mods.GetChildren() {
		if !m.Named {
			out = append(out, m.Text)
		}
	}
	return out
}

// modifierItems lists keyword modifiers and annotations.
func modifierItems(mods *source.Node) []string {
	var out []string
	for _, m := range mods.GetChildren() {
		out = append(out, m.Content())
	}
	return out
}

// Superclass returns the extended type of a class, or "".
func Superclass(decl *source.Node) string {
	sc := decl.ChildByField("superclass")
	if named := sc.NamedChildren(); len(named) > 0 {
		return named[0].Content()
	}
	return ""
}

// Interfaces returns implemented (or, for interfaces, extended) types.
func Interfaces(decl *source.Node) []string {
	list := decl.ChildByField("interfaces")
	if list == nil {
		list = decl.ChildOfKind("extends_interfaces", "super_interfaces")
	}
	var out []string
	for _, tl := range list.ChildrenOfKind("type_list") {
		for _, t := range tl.NamedChildren() {
			out = append(out, t.Content())
		}
	}
	return out
}

// Params returns the parameters of a formal parameter list.
func Params(list *source.Node) []Param {
	var out []Param
	for _, p := range list.NamedChildren() {
		switch p.Kind {
		case "formal_parameter":
			out = append(out, Param{Type: p.ChildByField("type").Content(), Name: p.ChildByField("name").GetText()})
		case "spread_parameter":
			var typ, name string
			for _, c := range p.NamedChildren() {
				switch c.Kind {
				case "variable_declarator":
					name = c.ChildByField("name").GetText()
				case "modifiers":
				default:
					if typ == "" {
						typ = c.Content()
					}
				}
			}
			out = append(out, Param{Type: typ + "...", Name: name})
		}
	}
	return out
}

// Throws returns the declared exception types of a callable.
func Throws(decl *source.Node) []string {
	var out []string
	for _, t := range decl.ChildOfKind("throws").NamedChildren() {
		out = append(out, t.Content())
	}
	return out
}
