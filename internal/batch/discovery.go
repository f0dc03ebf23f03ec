package batch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// bare is the pattern without a leading "**/", so it also matches at the root
	bare glob.Glob
}

func compile(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			if b, err := glob.Compile(rest, '/'); err == nil {
				cp.bare = b
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// skipDirs are never descended into.
var skipDirs = map[string]struct{}{
	".git":       {},
	".hg":        {},
	".svn":       {},
	".astdigest": {},
	".idea":      {},
	".gradle":    {},
}

// Discovery selects Java files under a root.
type Discovery struct {
	rootDir   string
	include   []compiledPattern
	exclude   []compiledPattern
	gitignore *ignore.GitIgnore
}

// NewDiscovery compiles the patterns. With respectGitignore the root's
// .gitignore, when present, is honoured too.
func NewDiscovery(rootDir string, include, exclude []string, respectGitignore bool) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	var err error
	if d.include, err = compile(include); err != nil {
		return nil, err
	}
	if d.exclude, err = compile(exclude); err != nil {
		return nil, err
	}

	if respectGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(rootDir, ".gitignore")); err == nil {
			d.gitignore = gi
		}
	}
	return d, nil
}

// Root returns the directory discovery starts from.
func (d *Discovery) Root() string {
	return d.rootDir
}

// Discover walks the root and returns matching files in lexical order.
func (d *Discovery) Discover(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(d.rootDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if path == d.rootDir {
				return err
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if path == d.rootDir {
				return nil
			}
			if _, skip := skipDirs[entry.Name()]; skip || d.ignored(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if d.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Match reports whether a root-relative, slash-separated path is selected.
func (d *Discovery) Match(rel string) bool {
	if d.ignored(rel) {
		return false
	}
	return matchesAny(rel, d.include)
}

func (d *Discovery) ignored(rel string) bool {
	if d.gitignore != nil && d.gitignore.MatchesPath(rel) {
		return true
	}
	return matchesAny(rel, d.exclude)
}

func matchesAny(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if cp.bare != nil && cp.bare.Match(path) {
			return true
		}
	}
	return false
}

// MatchPath is Match for a path on disk. Paths outside the root never match.
func (d *Discovery) MatchPath(path string) bool {
	rel, err := filepath.Rel(d.rootDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return d.Match(filepath.ToSlash(rel))
}
