package searcher

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dshills/goto/internal/frecency"
	"github.com/dshills/goto/pkg/types"
)

// SortOrder selects how project listings are ordered
type SortOrder string

const (
	SortRecent   SortOrder = "recent"
	SortFrecency SortOrder = "frecency"
	SortName     SortOrder = "name"
)

// ParseSortOrder accepts a full order name or its first letter
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "recent", "r":
		return SortRecent, nil
	case "frecency", "f":
		return SortFrecency, nil
	case "name", "n":
		return SortName, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (want recent, frecency or name)", s)
	}
}

// SortProjects orders projects in place. Ties fall back to name, then path.
func SortProjects(projects []types.Project, order SortOrder, now time.Time) {
	byName := func(a, b types.Project) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	}

	switch order {
	case SortRecent:
		slices.SortStableFunc(projects, func(a, b types.Project) int {
			if c := b.LastAccessed.Compare(a.LastAccessed); c != 0 {
				return c
			}
			return byName(a, b)
		})
	case SortFrecency:
		scores := make(map[string]float64, len(projects))
		for i := range projects {
			scores[projects[i].Path] = frecency.ProjectScore(&projects[i], now)
		}
		slices.SortStableFunc(projects, func(a, b types.Project) int {
			sa, sb := scores[a.Path], scores[b.Path]
			switch {
			case sa > sb:
				return -1
			case sa < sb:
				return 1
			}
			return byName(a, b)
		})
	default:
		slices.SortStableFunc(projects, byName)
	}
}

// DisplayNames labels results for output. Names that occur more than once
// get their path appended, shortened to ~/ when under home.
func DisplayNames(results []types.MatchResult, home string) []string {
	counts := make(map[string]int, len(results))
	for _, r := range results {
		counts[r.Project.Name]++
	}

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Project.Name
		if counts[r.Project.Name] > 1 {
			names[i] = fmt.Sprintf("%s (%s)", r.Project.Name, ShortenPath(r.Project.Path, home))
		}
	}
	return names
}

// ShortenPath replaces a home prefix with ~
func ShortenPath(path, home string) string {
	if home == "" {
		return path
	}
	rel, err := filepath.Rel(home, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	if rel == "." {
		return "~"
	}
	return "~/" + filepath.ToSlash(rel)
}
