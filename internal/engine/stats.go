package engine

import (
	"strings"

	"github.com/mvp-joe/astdigest/internal/compact"
	"github.com/mvp-joe/astdigest/internal/policy"
	"github.com/mvp-joe/astdigest/internal/source"
)

// fileInfo collects package, imports and line statistics.
func fileInfo(root *source.Node, src []byte, level Level) FileInfo {
	fi := FileInfo{Type: "java"}

	var imports []string
	for _, c := range root.GetChildren() {
		switch c.Kind {
		case "package_declaration":
			if named := c.NamedChildren(); len(named) > 0 {
				fi.Package = named[0].Content()
			}
		case "import_declaration":
			imports = append(imports, compact.ImportName(c))
		}
	}
	if level == High {
		fi.ImportsCount = len(imports)
	} else {
		fi.Imports = imports
	}

	fi.TotalLines, fi.CodeLines, fi.CommentLines, fi.BlankLines = lineStats(root, src)
	return fi
}

// lineStats classifies source lines. A line holding both code and a comment
// counts as both. Without source text only the total is known.
func lineStats(root *source.Node, src []byte) (total, code, comment, blank int) {
	if src == nil {
		return root.Span.EndLine, 0, 0, 0
	}
	text := strings.TrimSuffix(string(src), "\n")
	if text == "" {
		return 0, 0, 0, 0
	}
	lines := strings.Split(text, "\n")
	total = len(lines)

	// masked holds each line with comment text blanked out.
	masked := make([][]byte, total)
	for i, l := range lines {
		masked[i] = []byte(strings.TrimSuffix(l, "\r"))
	}
	commentLine := make([]bool, total)

	source.Walk(root, func(n *source.Node) bool {
		if policy.Classify(n.Kind) != policy.Comment {
			return true
		}
		for line := n.Span.StartLine; line <= n.Span.EndLine && line <= total; line++ {
			i := line - 1
			if i < 0 {
				continue
			}
			commentLine[i] = true
			from, to := 0, len(masked[i])
			if line == n.Span.StartLine {
				from = min(n.Span.StartCol, to)
			}
			if line == n.Span.EndLine {
				to = min(n.Span.EndCol, to)
			}
			for j := from; j < to; j++ {
				masked[i][j] = ' '
			}
		}
		return false
	})

	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			blank++
			continue
		}
		if commentLine[i] {
			comment++
		}
		if strings.TrimSpace(string(masked[i])) != "" {
			code++
		}
	}
	return total, code, comment, blank
}
