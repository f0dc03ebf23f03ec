// Package comments collects documentation and flagged comments and ranks them.
package comments

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mvp-joe/astdigest/internal/policy"
	"github.com/mvp-joe/astdigest/internal/source"
)

// DefaultTopK is the number of ranked comments kept at high aggregation.
const DefaultTopK = 5

// DefaultKeywords flag a non-doc comment as worth keeping.
var DefaultKeywords = []string{"todo", "fixme", "note", "important", "bug", "warning", "hack"}

// Comment is one collected comment.
type Comment struct {
	Text     string
	Line     int
	EndLine  int
	Doc      bool
	Keywords []string
	Score    int
	Owner    string
	// Index is the position of the comment among collected comments.
	Index int
}

// Declaration is a candidate comment owner.
type Declaration struct {
	Key  string
	Span source.Span
}

// Collector extracts comments from a syntax tree.
type Collector struct {
	keywords map[string]bool
}

// NewCollector returns a collector flagging the given keywords. An empty list
// selects DefaultKeywords.
func NewCollector(keywords []string) *Collector {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		set[strings.ToLower(k)] = true
	}
	return &Collector{keywords: set}
}

// Collect returns the kept comments of root in source order, each attributed
// to one of decls when possible.
func (c *Collector) Collect(root *source.Node, decls []Declaration) []*Comment {
	var out []*Comment
	source.Walk(root, func(n *source.Node) bool {
		if policy.Classify(n.Kind) != policy.Comment {
			return true
		}
		cm := c.inspect(n)
		if cm == nil {
			return false
		}
		cm.Owner = owner(cm, decls)
		cm.Index = len(out)
		out = append(out, cm)
		return false
	})
	return out
}

func (c *Collector) inspect(n *source.Node) *Comment {
	raw := n.Content()
	doc := strings.HasPrefix(raw, "/**") && raw != "/**/"
	text := Clean(raw)

	var found []string
	seen := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if c.keywords[w] && !seen[w] {
			seen[w] = true
			found = append(found, w)
		}
	}

	if !doc && len(found) == 0 {
		return nil
	}
	return &Comment{
		Text:     text,
		Line:     n.Span.StartLine,
		EndLine:  n.Span.EndLine,
		Doc:      doc,
		Keywords: found,
		Score:    score(text, doc, len(found)),
	}
}

func score(text string, doc bool, keywords int) int {
	s := keywords
	if doc {
		s += 3
	}
	s += min(len(text)/100, 3)
	return s
}

// owner picks the declaration starting right after the comment, else the
// innermost declaration containing it.
func owner(cm *Comment, decls []Declaration) string {
	var best *Declaration
	for i := range decls {
		d := &decls[i]
		if d.Span.StartLine == cm.EndLine+1 && (best == nil || narrower(d.Span, best.Span)) {
			best = d
		}
	}
	if best != nil {
		return best.Key
	}
	for i := range decls {
		d := &decls[i]
		if d.Span.Contains(cm.Line) && (best == nil || narrower(d.Span, best.Span)) {
			best = d
		}
	}
	if best != nil {
		return best.Key
	}
	return ""
}

func narrower(a, b source.Span) bool {
	return a.EndLine-a.StartLine < b.EndLine-b.StartLine
}

// Clean strips comment markers and joins the lines of a comment.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "//"):
		return strings.TrimSpace(strings.TrimPrefix(s, "//"))
	case strings.HasPrefix(s, "/*"):
		s = strings.TrimPrefix(s, "/**")
		s = strings.TrimPrefix(s, "/*")
		s = strings.TrimSuffix(s, "*/")
	}
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "*"))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// TopK keeps the k best-scored comments plus every doc comment, returned in
// source order. Ties are broken by position.
func TopK(cs []*Comment, k int) []*Comment {
	if k < 0 {
		k = 0
	}
	ranked := append([]*Comment(nil), cs...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Index < ranked[j].Index
	})

	keep := make(map[*Comment]bool)
	for i := 0; i < k && i < len(ranked); i++ {
		keep[ranked[i]] = true
	}
	var out []*Comment
	for _, c := range cs {
		if c.Doc || keep[c] {
			out = append(out, c)
		}
	}
	return out
}
