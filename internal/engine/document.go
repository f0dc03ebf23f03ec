package engine

import (
	"github.com/mvp-joe/astdigest/internal/callgraph"
	"github.com/mvp-joe/astdigest/internal/compact"
	"github.com/mvp-joe/astdigest/internal/dataflow"
	"github.com/mvp-joe/astdigest/internal/flow"
)

// Document is the compressed form of one source file.
type Document struct {
	FileInfo       FileInfo                  `json:"file_info"`
	Structure      Structure                 `json:"structure"`
	ControlFlow    map[string]MethodFlow     `json:"control_flow,omitempty"`
	DataFlow       *DataFlow                 `json:"data_flow,omitempty"`
	MethodAnalysis map[string]MethodAnalysis `json:"method_analysis,omitempty"`
	KeyComments    []KeyComment              `json:"key_comments,omitempty"`
	Symbols        []string                  `json:"symbols,omitempty"`
	AST            *compact.Node             `json:"ast,omitempty"`
}

// FileInfo describes the file as a whole.
type FileInfo struct {
	Type         string   `json:"type"`
	Package      string   `json:"package,omitempty"`
	Imports      []string `json:"imports,omitempty"`
	ImportsCount int      `json:"imports_count,omitempty"`
	TotalLines   int      `json:"total_lines"`
	CodeLines    int      `json:"code_lines"`
	CommentLines int      `json:"comment_lines"`
	BlankLines   int      `json:"blank_lines"`
}

// Structure lists the declared types.
type Structure struct {
	Classes []Class `json:"classes"`
}

// Class is one class, interface, enum or record.
type Class struct {
	Type           string   `json:"type"`
	Name           string   `json:"name"`
	Modifiers      []string `json:"modifiers,omitempty"`
	Extends        string   `json:"extends,omitempty"`
	Interfaces     []string `json:"interfaces,omitempty"`
	Responsibility string   `json:"responsibility,omitempty"`
	Fields         []Field  `json:"fields,omitempty"`
	Methods        []Method `json:"methods,omitempty"`
}

// Field is one declared field.
type Field struct {
	Name      string   `json:"name"`
	Type      string   `json:"type,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// Method is one method or constructor. Comments index into
// Document.KeyComments.
type Method struct {
	Type       string           `json:"type"`
	Name       string           `json:"name"`
	Modifiers  []string         `json:"modifiers,omitempty"`
	ReturnType string           `json:"return_type,omitempty"`
	Parameters []compact.Param  `json:"parameters,omitempty"`
	Throws     []string         `json:"throws,omitempty"`
	Intent     string           `json:"intent,omitempty"`
	Comments   []int            `json:"comments,omitempty"`
	Calls      []callgraph.Call `json:"calls,omitempty"`
}

// MethodFlow is the flow tree of one callable.
type MethodFlow struct {
	FlowElements []*flow.Node `json:"flow_elements"`
}

// DataFlow holds variable usage at the configured aggregation level. Exactly
// one of the maps is set.
type DataFlow struct {
	Variables    map[string]*Variable `json:"variables,omitempty"`
	KeyVariables map[string]*Variable `json:"key_variables,omitempty"`
}

// Variable is the usage of one variable name.
type Variable struct {
	Type          string                           `json:"type"`
	TypeGuessed   bool                             `json:"type_guessed,omitempty"`
	Methods       map[string]*dataflow.MethodUsage `json:"methods,omitempty"`
	UsageByMethod map[string]string                `json:"usage_by_method,omitempty"`
	UsageSummary  string                           `json:"usage_summary,omitempty"`
}

// MethodAnalysis holds the metrics of one callable.
type MethodAnalysis struct {
	Complexity       int    `json:"complexity"`
	MaxNesting       int    `json:"max_nesting"`
	Intent           string `json:"intent,omitempty"`
	ComplexityRating string `json:"complexity_rating"`
	CallCount        int    `json:"call_count"`
	CalledBy         int    `json:"called_by"`
	Recursive        bool   `json:"recursive,omitempty"`
}

// KeyComment is one kept comment. Line and Score are only set at low
// aggregation.
type KeyComment struct {
	Text  string `json:"text"`
	Owner string `json:"owner,omitempty"`
	Line  int    `json:"line,omitempty"`
	Score *int   `json:"score,omitempty"`
}
