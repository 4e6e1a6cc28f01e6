package metadata

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

const (
	structureMaxDepth = 6
	maxHints          = 15
	minHintLen        = 4
)

var genericDirs = toSet(
	"src", "lib", "bin", "cmd", "pkg", "app", "apps", "main",
	"java", "kotlin", "scala", "resources",
	"test", "tests", "spec", "specs", "integration",
	"com", "org", "io", "net", "dev", "github",
	"impl", "internal", "api", "core", "base",
	"util", "utils", "helper", "helpers", "common", "shared",
	"model", "models", "entity", "entities", "dto", "dtos",
	"service", "services", "controller", "controllers",
	"repository", "repositories", "dao", "daos",
	"build", "dist", "target", "out", "output", "gen", "generated",
	"vendor", "node_modules", "deps", "dependencies", "third_party",
	"assets", "public", "static", "config", "configs",
	"scripts", "tools", "templates", "fixtures",
	"docs", "doc", "documentation", "examples", "samples", "demo",
	"meta-inf", "web-inf",
)

// prunedDirs are never descended when collecting structure hints
var prunedDirs = []string{"node_modules", "target", "build", "dist", "vendor", ".git"}

// StructureHints lists distinctive directory names below root.
func StructureHints(root string) []string {
	seen := make(map[string]bool)

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() || path == root {
			return nil
		}

		name := d.Name()
		if slices.Contains(prunedDirs, name) || depth(root, path) > structureMaxDepth {
			return fs.SkipDir
		}
		// Hidden names are not hints, but their children can be
		if strings.HasPrefix(name, ".") {
			return nil
		}

		lower := strings.ToLower(name)
		if len(lower) >= minHintLen && !genericDirs[lower] {
			seen[lower] = true
		}
		return nil
	})

	return sortedCapped(seen, maxHints)
}

// depth counts path components of path below root
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func sortedCapped(set map[string]bool, limit int) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	slices.Sort(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func toSet(items ...string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
