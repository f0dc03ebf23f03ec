// Package intent guesses the role of methods and classes from their names and
// shapes.
package intent

import (
	"strings"

	"github.com/mvp-joe/astdigest/internal/naming"
)

// General is the fallback role.
const General = "general"

// Rule assigns Role to subjects accepted by Match.
type Rule[S any] struct {
	Role  string
	Match func(S) bool
}

// Classifier evaluates rules in order; the first match wins.
type Classifier[S any] struct {
	rules []Rule[S]
}

// NewClassifier builds a classifier from rules.
func NewClassifier[S any](rules ...Rule[S]) *Classifier[S] {
	return &Classifier[S]{rules: rules}
}

// Classify returns the role of s, or General when nothing matches.
func (c *Classifier[S]) Classify(s S) string {
	for _, r := range c.rules {
		if r.Match(s) {
			return r.Role
		}
	}
	return General
}

// Prepend returns a classifier that tries extra before the existing rules.
func (c *Classifier[S]) Prepend(extra ...Rule[S]) *Classifier[S] {
	rules := make([]Rule[S], 0, len(extra)+len(c.rules))
	rules = append(rules, extra...)
	rules = append(rules, c.rules...)
	return &Classifier[S]{rules: rules}
}

// Method describes what the method rules look at.
type Method struct {
	Name       string
	ReturnType string
	Modifiers  []string
	Params     int
	Branches   int
	HasTry     bool
}

// HasModifier reports whether m carries the modifier.
func (m Method) HasModifier(mod string) bool {
	for _, x := range m.Modifiers {
		if x == mod {
			return true
		}
	}
	return false
}

// PrefixRule is a configurable name-prefix method rule.
type PrefixRule struct {
	Role     string   `yaml:"role" mapstructure:"role"`
	Prefixes []string `yaml:"prefixes" mapstructure:"prefixes"`
}

// Rule converts p into a method rule using camel-aware matching.
func (p PrefixRule) Rule() Rule[Method] {
	prefixes := append([]string(nil), p.Prefixes...)
	return Rule[Method]{Role: p.Role, Match: func(m Method) bool {
		for _, pre := range prefixes {
			if naming.HasCamelPrefix(m.Name, pre) {
				return true
			}
		}
		return false
	}}
}

var methodPrefixes = []PrefixRule{
	{Role: "accessor", Prefixes: []string{"get", "find", "read", "retrieve"}},
	{Role: "mutator", Prefixes: []string{"set", "update", "write", "modify"}},
	{Role: "predicate", Prefixes: []string{"is", "has", "can", "should"}},
	{Role: "factory", Prefixes: []string{"create", "new", "build", "make", "generate"}},
	{Role: "transformer", Prefixes: []string{"parse", "convert", "transform"}},
	{Role: "validator", Prefixes: []string{"validate", "check", "ensure", "verify"}},
	{Role: "processor", Prefixes: []string{"process", "handle", "execute"}},
	{Role: "calculator", Prefixes: []string{"calculate", "compute", "count"}},
}

// MethodRules returns the built-in method rule table.
func MethodRules() []Rule[Method] {
	var rules []Rule[Method]
	for _, p := range methodPrefixes {
		rules = append(rules, p.Rule())
	}
	rules = append(rules,
		Rule[Method]{Role: "entry_point", Match: func(m Method) bool { return m.Name == "main" }},
		Rule[Method]{Role: "action", Match: func(m Method) bool { return m.ReturnType == "void" }},
		Rule[Method]{Role: "predicate", Match: func(m Method) bool {
			return m.ReturnType == "boolean" || m.ReturnType == "Boolean"
		}},
		Rule[Method]{Role: "utility", Match: func(m Method) bool { return m.HasModifier("static") && m.Params == 0 }},
		Rule[Method]{Role: "decision_maker", Match: func(m Method) bool { return m.Branches > 3 }},
		Rule[Method]{Role: "protected_action", Match: func(m Method) bool { return m.HasTry }},
	)
	return rules
}

// NewMethodClassifier returns the method classifier with extra rules tried
// before the built-in table.
func NewMethodClassifier(extra ...PrefixRule) *Classifier[Method] {
	c := NewClassifier(MethodRules()...)
	if len(extra) == 0 {
		return c
	}
	rules := make([]Rule[Method], 0, len(extra))
	for _, p := range extra {
		rules = append(rules, p.Rule())
	}
	return c.Prepend(rules...)
}

// Class describes what the class rules look at.
type Class struct {
	Name          string
	Fields        int
	Methods       []string
	StaticMethods int
}

func suffix(role string, suffixes ...string) Rule[Class] {
	return Rule[Class]{Role: role, Match: func(c Class) bool {
		for _, s := range suffixes {
			if naming.HasSuffixFold(c.Name, s) {
				return true
			}
		}
		return false
	}}
}

func contains(role string, parts ...string) Rule[Class] {
	return Rule[Class]{Role: role, Match: func(c Class) bool {
		lower := strings.ToLower(c.Name)
		for _, p := range parts {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	}}
}

// ClassRules returns the built-in class rule table.
func ClassRules() []Rule[Class] {
	return []Rule[Class]{
		suffix("controller", "controller"),
		suffix("service", "service"),
		suffix("data_access", "repository", "dao"),
		suffix("factory", "factory"),
		suffix("builder", "builder"),
		suffix("adapter", "adapter"),
		suffix("event_handler", "listener", "observer"),
		suffix("exception", "exception"),
		suffix("utility", "util", "utils"),
		suffix("data_container", "dto", "bean", "entity"),
		contains("service", "daemon", "service"),
		contains("monitor", "watcher", "monitor"),
		contains("parser", "parser", "reader"),
		{Role: "data_container", Match: func(c Class) bool {
			return c.Fields > 2*len(c.Methods)
		}},
		{Role: "utility", Match: func(c Class) bool {
			return len(c.Methods) > 0 && c.StaticMethods*2 > len(c.Methods)
		}},
		{Role: "service", Match: func(c Class) bool {
			workers := 0
			for _, m := range c.Methods {
				for _, p := range []string{"process", "handle", "execute", "perform"} {
					if naming.HasCamelPrefix(m, p) {
						workers++
						break
					}
				}
			}
			return workers >= 2
		}},
	}
}

// NewClassClassifier returns the built-in class classifier.
func NewClassClassifier() *Classifier[Class] {
	return NewClassifier(ClassRules()...)
}
