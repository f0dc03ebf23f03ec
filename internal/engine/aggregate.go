package engine

import (
	"strings"

	"github.com/mvp-joe/astdigest/internal/comments"
	"github.com/mvp-joe/astdigest/internal/dataflow"
	"github.com/mvp-joe/astdigest/internal/naming"
)

// importantTypes mark a variable as important regardless of usage.
var importantTypes = map[string]bool{
	"String":    true,
	"List":      true,
	"Map":       true,
	"Set":       true,
	"File":      true,
	"Exception": true,
}

// importantUsage is the event count from which any variable is important.
const importantUsage = 5

func importantField(name string, modifiers []string) bool {
	for _, m := range modifiers {
		switch m {
		case "public", "static", "final":
			return true
		}
	}
	return naming.IsConstant(name)
}

// baseType strips generic arguments and array dimensions.
func baseType(t string) string {
	if i := strings.IndexAny(t, "<["); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

func (r *run) fieldsDoc(fields []fieldInfo) []Field {
	var out []Field
	for _, f := range fields {
		important := importantField(f.name, f.modifiers)
		switch r.opts.Aggregation {
		case Low:
			out = append(out, Field{Name: f.name, Type: f.typ, Modifiers: f.modifiers})
		case Medium:
			if important {
				out = append(out, Field{Name: f.name, Type: f.typ, Modifiers: f.modifiers})
			}
		case High:
			if important {
				out = append(out, Field{Name: f.name, Type: f.typ})
			}
		}
	}
	return out
}

// importantFields returns the names of important fields across all classes.
func (r *run) importantFields() map[string]bool {
	out := make(map[string]bool)
	for _, ci := range r.classes {
		for _, f := range ci.fields {
			if importantField(f.name, f.modifiers) {
				out[f.name] = true
			}
		}
	}
	return out
}

func (r *run) dataFlow(u *dataflow.Usage) *DataFlow {
	df := &DataFlow{}
	switch r.opts.Aggregation {
	case Low:
		df.Variables = make(map[string]*Variable, len(u.Variables))
		for name, v := range u.Variables {
			df.Variables[name] = &Variable{Type: v.Type, TypeGuessed: v.TypeGuessed, Methods: v.Methods}
		}

	case Medium:
		df.Variables = make(map[string]*Variable, len(u.Variables))
		for name, v := range u.Variables {
			by := make(map[string]string, len(v.Methods))
			for m, mu := range v.Methods {
				by[m] = mu.Summary()
			}
			df.Variables[name] = &Variable{Type: v.Type, TypeGuessed: v.TypeGuessed, UsageByMethod: by}
		}

	case High:
		fields := r.importantFields()
		for name, v := range u.Variables {
			if !fields[name] && v.Total() < importantUsage && !importantTypes[baseType(v.Type)] {
				continue
			}
			if df.KeyVariables == nil {
				df.KeyVariables = make(map[string]*Variable)
			}
			df.KeyVariables[name] = &Variable{Type: v.Type, TypeGuessed: v.TypeGuessed, UsageSummary: v.Summary()}
		}
	}
	return df
}

// keyComments filters collected comments for the aggregation level and maps
// each owner to the indices of its comments in the result.
func (r *run) keyComments(collected []*comments.Comment) ([]KeyComment, map[string][]int) {
	kept := collected
	if r.opts.Aggregation == High {
		kept = comments.TopK(collected, r.opts.CommentTopK)
	}

	var out []KeyComment
	owners := make(map[string][]int)
	for _, c := range kept {
		kc := KeyComment{Text: c.Text, Owner: c.Owner}
		if r.opts.Aggregation == Low {
			score := c.Score
			kc.Line = c.Line
			kc.Score = &score
		}
		if c.Owner != "" {
			owners[c.Owner] = append(owners[c.Owner], len(out))
		}
		out = append(out, kc)
	}
	return out, owners
}
