// Package engine runs the compression pipeline for one source file and
// assembles the output document.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mvp-joe/astdigest/internal/callgraph"
	"github.com/mvp-joe/astdigest/internal/comments"
	"github.com/mvp-joe/astdigest/internal/compact"
	"github.com/mvp-joe/astdigest/internal/complexity"
	"github.com/mvp-joe/astdigest/internal/dataflow"
	"github.com/mvp-joe/astdigest/internal/flow"
	"github.com/mvp-joe/astdigest/internal/intent"
	"github.com/mvp-joe/astdigest/internal/scope"
	"github.com/mvp-joe/astdigest/internal/source"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrUnknownFrame  = errors.New("unknown output frame")
	ErrUnknownLevel  = errors.New("unknown aggregation level")
)

// Engine compresses Java syntax trees. An Engine holds configuration only;
// every call to Compress starts from fresh run state, but an Engine is not
// safe for concurrent use because it owns a parser.
type Engine struct {
	opts   Options
	log    *zap.Logger
	parser *source.JavaParser

	methods   *intent.Classifier[intent.Method]
	classes   *intent.Classifier[intent.Class]
	collector *comments.Collector
}

// New creates an engine. A nil logger discards output.
func New(opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Aggregation == "" {
		opts.Aggregation = Medium
	}
	return &Engine{
		opts:      opts,
		log:       log,
		parser:    source.NewJavaParser(),
		methods:   intent.NewMethodClassifier(opts.MethodRules...),
		classes:   intent.NewClassClassifier(),
		collector: comments.NewCollector(opts.CommentKeywords),
	}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// CompressSource parses src and compresses it.
func (e *Engine) CompressSource(ctx context.Context, src []byte) (*Document, error) {
	root, err := e.parser.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	return e.Compress(ctx, root, src)
}

// CompressFile reads, parses and compresses the file at path. It also returns
// the source bytes read.
func (e *Engine) CompressFile(ctx context.Context, path string) (*Document, []byte, error) {
	root, src, err := e.parser.ParseFile(ctx, path)
	if err != nil {
		return nil, src, err
	}
	doc, err := e.Compress(ctx, root, src)
	return doc, src, err
}

// Compress builds the document for root. src is used for line statistics
// and may be nil.
func (e *Engine) Compress(ctx context.Context, root *source.Node, src []byte) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("compress: %w", source.ErrParseFailed)
	}
	start := time.Now()

	r := &run{opts: e.opts, engine: e, format: flow.NewFormatter(e.opts.SummaryWidth)}
	r.collect(root, scope.Context{})
	r.assignKeys()
	r.analyze()

	graph, err := callgraph.Build(r.graphMethods())
	if err != nil {
		return nil, fmt.Errorf("call graph: %w", err)
	}

	var usage *dataflow.Usage
	if e.opts.TrackDataFlow {
		usage = dataflow.NewTracker(r.keyOf).Track(root)
	}

	var collected []*comments.Comment
	if e.opts.PreserveComments {
		collected = e.collector.Collect(root, r.declarations())
	}

	doc := &Document{
		FileInfo:  fileInfo(root, src, e.opts.Aggregation),
		Structure: Structure{Classes: []Class{}},
	}

	keyComments, ownerIndex := r.keyComments(collected)
	doc.KeyComments = keyComments

	for _, ci := range r.classes {
		doc.Structure.Classes = append(doc.Structure.Classes, r.classDoc(ci, ownerIndex))
	}

	if e.opts.TrackControlFlow {
		doc.ControlFlow = make(map[string]MethodFlow, len(r.callables))
		doc.MethodAnalysis = make(map[string]MethodAnalysis, len(r.callables))
		for _, c := range r.callables {
			elements := c.flow
			if e.opts.Aggregation != Low {
				elements = flow.ControlOnly(elements)
			}
			if elements == nil {
				elements = []*flow.Node{}
			}
			doc.ControlFlow[c.key] = MethodFlow{FlowElements: elements}
			ma := MethodAnalysis{
				Complexity:       c.metrics.Cyclomatic,
				MaxNesting:       c.metrics.MaxNesting,
				ComplexityRating: complexity.Rating(c.metrics.Cyclomatic),
				CallCount:        len(c.calls),
				CalledBy:         graph.CalledBy(c.key),
				Recursive:        graph.Recursive(c.key),
			}
			if e.opts.IncludeMethodIntent {
				ma.Intent = c.intent
			}
			doc.MethodAnalysis[c.key] = ma
		}
	}

	if usage != nil {
		doc.DataFlow = r.dataFlow(usage)
	}

	if e.opts.IncludeTree {
		comp := compact.New(e.opts.compactOptions())
		doc.AST = comp.Tree(root)
		doc.Symbols = comp.Symbols().Symbols()
		shared, refs := comp.Stats()
		e.log.Debug("compact tree built",
			zap.Int("symbols", len(doc.Symbols)),
			zap.Int("shared_subtrees", shared),
			zap.Int("refs", refs))
	}

	e.log.Debug("file compressed",
		zap.Int("classes", len(r.classes)),
		zap.Int("callables", len(r.callables)),
		zap.Duration("duration", time.Since(start)))
	return doc, nil
}

// callable is one method or constructor under analysis.
type callable struct {
	node    *source.Node
	key     string
	name    string
	class   string
	flow    []*flow.Node
	metrics complexity.Metrics
	calls   []callgraph.Call
	intent  string
}

type fieldInfo struct {
	name      string
	typ       string
	modifiers []string
}

type classInfo struct {
	node      *source.Node
	name      string
	fields    []fieldInfo
	callables []*callable
}

// run holds the state of one Compress call.
type run struct {
	opts   Options
	engine *Engine
	format flow.Formatter

	classes   []*classInfo
	callables []*callable
	keys      map[*source.Node]string
}

func isClassKind(kind string) bool {
	switch kind {
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		return true
	}
	return false
}

func isCallableKind(kind string) bool {
	switch kind {
	case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
		return true
	}
	return false
}

// members returns the declarations of a type body, looking through the
// enum_body_declarations wrapper.
func members(body *source.Node) []*source.Node {
	var out []*source.Node
	for _, c := range body.GetChildren() {
		if c.Kind == "enum_body_declarations" {
			out = append(out, c.Children...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *run) collect(n *source.Node, ctx scope.Context) {
	if n == nil {
		return
	}
	if isClassKind(n.Kind) {
		ctx = ctx.WithClass(n.ChildByField("name").GetText())
		ci := &classInfo{node: n, name: ctx.Class}
		r.classes = append(r.classes, ci)

		for _, m := range members(n.ChildByField("body")) {
			switch {
			case m.Kind == "field_declaration" || m.Kind == "constant_declaration":
				typ := m.ChildByField("type").Content()
				mods := compact.Modifiers(m)
				for _, d := range m.ChildrenByField("declarator") {
					ci.fields = append(ci.fields, fieldInfo{name: d.ChildByField("name").GetText(), typ: typ, modifiers: mods})
				}
			case isCallableKind(m.Kind):
				c := &callable{node: m, name: m.ChildByField("name").GetText(), class: ctx.Class}
				ci.callables = append(ci.callables, c)
				r.callables = append(r.callables, c)
			}
		}
	}
	for _, c := range n.Children {
		r.collect(c, ctx)
	}
}

// assignKeys names callables by their simple name, suffixing #2, #3 on
// repeats in source order.
func (r *run) assignKeys() {
	sort.SliceStable(r.callables, func(i, j int) bool {
		a, b := r.callables[i].node.Span, r.callables[j].node.Span
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.StartCol < b.StartCol
	})
	seen := make(map[string]int)
	r.keys = make(map[*source.Node]string, len(r.callables))
	for _, c := range r.callables {
		seen[c.name]++
		c.key = c.name
		if n := seen[c.name]; n > 1 {
			c.key = fmt.Sprintf("%s#%d", c.name, n)
		}
		r.keys[c.node] = c.key
	}
}

func (r *run) keyOf(decl *source.Node) string {
	if k, ok := r.keys[decl]; ok {
		return k
	}
	return decl.ChildByField("name").GetText()
}

func (r *run) analyze() {
	extractor := flow.NewExtractor(r.format)
	copts := complexity.Options{CountBooleanOperators: r.opts.CountBooleanOperators}
	for _, c := range r.callables {
		body := c.node.ChildByField("body")
		c.flow = extractor.Extract(body)
		c.metrics = complexity.Analyze(c.flow, copts)
		c.calls = callgraph.Collect(body)
		c.intent = r.engine.methods.Classify(intent.Method{
			Name:       c.name,
			ReturnType: c.node.ChildByField("type").Content(),
			Modifiers:  compact.Modifiers(c.node),
			Params:     len(compact.Params(c.node.ChildByField("parameters"))),
			Branches:   c.metrics.Branches,
			HasTry:     flow.Count(c.flow, flow.Try) > 0,
		})
	}
}

func (r *run) graphMethods() []callgraph.Method {
	out := make([]callgraph.Method, 0, len(r.callables))
	for _, c := range r.callables {
		out = append(out, callgraph.Method{Key: c.key, Name: c.name, Class: c.class, Calls: c.calls})
	}
	return out
}

func (r *run) declarations() []comments.Declaration {
	var out []comments.Declaration
	for _, ci := range r.classes {
		out = append(out, comments.Declaration{Key: ci.name, Span: ci.node.Span})
	}
	for _, c := range r.callables {
		out = append(out, comments.Declaration{Key: c.key, Span: c.node.Span})
	}
	return out
}

func (r *run) classDoc(ci *classInfo, ownerIndex map[string][]int) Class {
	doc := Class{
		Type:       strings.TrimSuffix(ci.node.Kind, "_declaration"),
		Name:       ci.name,
		Modifiers:  compact.Modifiers(ci.node),
		Extends:    compact.Superclass(ci.node),
		Interfaces: compact.Interfaces(ci.node),
		Fields:     r.fieldsDoc(ci.fields),
	}

	shape := intent.Class{Name: ci.node.ChildByField("name").GetText(), Fields: len(ci.fields)}
	for _, c := range ci.callables {
		shape.Methods = append(shape.Methods, c.name)
		if hasModifier(compact.Modifiers(c.node), "static") {
			shape.StaticMethods++
		}
		doc.Methods = append(doc.Methods, r.methodDoc(c, ownerIndex))
	}
	doc.Responsibility = r.engine.classes.Classify(shape)
	return doc
}

func (r *run) methodDoc(c *callable, ownerIndex map[string][]int) Method {
	typ := "method"
	if c.node.Kind != "method_declaration" {
		typ = "constructor"
	}
	m := Method{
		Type:       typ,
		Name:       c.name,
		Modifiers:  compact.Modifiers(c.node),
		ReturnType: c.node.ChildByField("type").Content(),
		Parameters: compact.Params(c.node.ChildByField("parameters")),
		Throws:     compact.Throws(c.node),
		Comments:   ownerIndex[c.key],
	}
	if r.opts.IncludeMethodIntent {
		m.Intent = c.intent
	}
	if r.opts.Aggregation == Low {
		m.Calls = c.calls
	}
	return m
}

func hasModifier(mods []string, want string) bool {
	for _, m := range mods {
		if m == want {
			return true
		}
	}
	return false
}
