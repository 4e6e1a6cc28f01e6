// Package matcher ranks projects by fuzzy subsequence match against the query.
package matcher

import (
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/dshills/goto/pkg/types"
)

// FindMatches scores every project whose name or path contains the query as
// a subsequence. The better of the two scores is kept. Results are ordered by
// score, then most recently accessed, then name.
func FindMatches(query string, projects []types.Project) []types.MatchResult {
	query = strings.TrimSpace(query)
	if query == "" || len(projects) == 0 {
		return []types.MatchResult{}
	}

	names := make([]string, len(projects))
	paths := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
		paths[i] = p.Path
	}

	best := make(map[int]int)
	for _, field := range [][]string{names, paths} {
		for _, m := range fuzzy.Find(query, field) {
			if score, ok := best[m.Index]; !ok || m.Score > score {
				best[m.Index] = m.Score
			}
		}
	}

	results := make([]types.MatchResult, 0, len(best))
	for idx, score := range best {
		results = append(results, types.MatchResult{
			Project: projects[idx],
			Score:   float64(score),
		})
	}

	slices.SortFunc(results, CompareResults)
	return results
}

// CompareResults orders by score descending, then most recent access, then
// name and path
func CompareResults(a, b types.MatchResult) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	}
	if c := b.Project.LastAccessed.Compare(a.Project.LastAccessed); c != 0 {
		return c
	}
	if c := strings.Compare(a.Project.Name, b.Project.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Project.Path, b.Project.Path)
}

// Best returns the top match, if any.
func Best(query string, projects []types.Project) (types.MatchResult, bool) {
	matches := FindMatches(query, projects)
	if len(matches) == 0 {
		return types.MatchResult{}, false
	}
	return matches[0], true
}
