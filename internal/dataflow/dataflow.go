// Package dataflow tracks variable declarations, reads and writes per
// callable. Tracking is lexical: names are not resolved across scopes and the
// same name in two callables is accounted separately under each.
package dataflow

import (
	"fmt"
	"sort"

	"github.com/mvp-joe/astdigest/internal/scope"
)

// UnknownType marks a variable whose type could neither be read nor guessed.
const UnknownType = "unknown"

// EventKind is the kind of a usage event.
type EventKind int

const (
	Declaration EventKind = iota
	Read
	Write
)

func (k EventKind) String() string {
	switch k {
	case Declaration:
		return "declaration"
	case Read:
		return "read"
	case Write:
		return "write"
	}
	return "unknown"
}

// MethodUsage counts events of one variable inside one callable.
type MethodUsage struct {
	Declarations int   `json:"declarations"`
	Reads        int   `json:"reads"`
	Writes       int   `json:"writes"`
	Lines        []int `json:"lines,omitempty"`
}

// Total returns the number of events.
func (m *MethodUsage) Total() int {
	return m.Declarations + m.Reads + m.Writes
}

// Summary renders the counts compactly, e.g. "decl=1 read=2". Zero counts are
// omitted.
func (m *MethodUsage) Summary() string {
	return summarize(m.Declarations, m.Reads, m.Writes)
}

func summarize(decl, read, write int) string {
	out := ""
	add := func(label string, n int) {
		if n == 0 {
			return
		}
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", label, n)
	}
	add("decl", decl)
	add("read", read)
	add("write", write)
	return out
}

func (m *MethodUsage) record(kind EventKind, line int) {
	switch kind {
	case Declaration:
		m.Declarations++
	case Read:
		m.Reads++
	case Write:
		m.Writes++
	}
	i := sort.SearchInts(m.Lines, line)
	if i < len(m.Lines) && m.Lines[i] == line {
		return
	}
	m.Lines = append(m.Lines, 0)
	copy(m.Lines[i+1:], m.Lines[i:])
	m.Lines[i] = line
}

// Variable aggregates every event recorded for one name.
type Variable struct {
	Name        string
	Type        string
	TypeGuessed bool
	Methods     map[string]*MethodUsage
}

// Total returns the number of events across callables.
func (v *Variable) Total() int {
	total := 0
	for _, m := range v.Methods {
		total += m.Total()
	}
	return total
}

// Summary renders the counts of all callables combined.
func (v *Variable) Summary() string {
	var decl, read, write int
	for _, m := range v.Methods {
		decl += m.Declarations
		read += m.Reads
		write += m.Writes
	}
	return summarize(decl, read, write)
}

// IsField reports whether the variable is declared at class level.
func (v *Variable) IsField() bool {
	m, ok := v.Methods[scope.FieldScope]
	return ok && m.Declarations > 0
}

// Usage is the result of one tracking run.
type Usage struct {
	Variables map[string]*Variable
}

// Names returns the variable names in sorted order.
func (u *Usage) Names() []string {
	names := make([]string, 0, len(u.Variables))
	for n := range u.Variables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the variable called name, or nil.
func (u *Usage) Get(name string) *Variable {
	return u.Variables[name]
}

func (u *Usage) variable(name string) *Variable {
	v, ok := u.Variables[name]
	if !ok {
		v = &Variable{Name: name, Type: UnknownType, TypeGuessed: true, Methods: make(map[string]*MethodUsage)}
		u.Variables[name] = v
	}
	return v
}

func (u *Usage) record(name, callable string, kind EventKind, line int) *Variable {
	v := u.variable(name)
	m, ok := v.Methods[callable]
	if !ok {
		m = &MethodUsage{}
		v.Methods[callable] = m
	}
	m.record(kind, line)
	return v
}

// declare records a declaration. An explicit type replaces a guessed one; the
// first explicit type wins.
func (u *Usage) declare(name, callable, typ string, guessed bool, line int) {
	v := u.record(name, callable, Declaration, line)
	if v.TypeGuessed && (!guessed || v.Type == UnknownType) {
		v.Type = typ
		v.TypeGuessed = guessed
	}
}
