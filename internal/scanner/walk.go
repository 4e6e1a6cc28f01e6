package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const gitDir = ".git"

// excludes matches directory names against substrings or doublestar globs
type excludes []string

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// matchName reports whether a single path element is excluded
func (e excludes) matchName(name string) bool {
	for _, pattern := range e {
		if pattern == "" {
			continue
		}
		if isGlob(pattern) {
			if ok, _ := doublestar.Match(pattern, name); ok {
				return true
			}
			continue
		}
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// matchPath reports whether an absolute path is excluded
func (e excludes) matchPath(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range e {
		if pattern == "" {
			continue
		}
		if isGlob(pattern) {
			if ok, _ := doublestar.Match(pattern, slashed); ok {
				return true
			}
			continue
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	for _, part := range strings.Split(slashed, "/") {
		if part != "" && e.matchName(part) {
			return true
		}
	}
	return false
}

// walker runs the two discovery passes over one root
type walker struct {
	maxDepth int
	excludes excludes
}

// WalkRoot returns the project directories under root: every git work tree,
// plus every deepest directory that holds non-hidden files and lies outside
// all work trees.
func (w *walker) WalkRoot(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: not a directory", root)
	}

	repos := w.findRepos(root)
	repoSet := make(map[string]bool, len(repos))
	for _, r := range repos {
		repoSet[r] = true
	}

	candidates := w.findFileDirs(root, repoSet)
	return append(repos, leaves(candidates)...), nil
}

// walk visits directories under root within maxDepth, skipping hidden and
// excluded names. visit may return fs.SkipDir.
func (w *walker) walk(root string, keepGit bool, visit func(path string, d fs.DirEntry) error) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			name := d.Name()
			if strings.HasPrefix(name, ".") && !(keepGit && name == gitDir) {
				return fs.SkipDir
			}
			if w.excludes.matchName(name) {
				return fs.SkipDir
			}
			if depthBelow(root, path) > w.maxDepth {
				return fs.SkipDir
			}
		}
		return visit(path, d)
	})
}

// findRepos is pass 1: parents of .git directories
func (w *walker) findRepos(root string) []string {
	var repos []string
	w.walk(root, true, func(path string, d fs.DirEntry) error {
		if d.Name() == gitDir && path != root {
			repos = append(repos, filepath.Dir(path))
			return fs.SkipDir
		}
		return nil
	})
	return repos
}

// findFileDirs is pass 2: directories with files outside any repository
func (w *walker) findFileDirs(root string, repos map[string]bool) []string {
	var dirs []string
	w.walk(root, false, func(path string, d fs.DirEntry) error {
		if repos[path] {
			return fs.SkipDir
		}
		if hasVisibleFile(path) {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}

func hasVisibleFile(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
			return true
		}
	}
	return false
}

// leaves drops every candidate that is a proper ancestor of another
func leaves(candidates []string) []string {
	ancestors := make(map[string]bool)
	for _, c := range candidates {
		// Stop at the first ancestor already recorded: everything above it is too
		for dir := filepath.Dir(c); !ancestors[dir]; dir = filepath.Dir(dir) {
			ancestors[dir] = true
			if filepath.Dir(dir) == dir {
				break
			}
		}
	}

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !ancestors[c] {
			out = append(out, c)
		}
	}
	return out
}

// depthBelow counts path components of path below root
func depthBelow(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
