package searcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultTopN is the rank cutoff for cases that do not set top_n
const DefaultTopN = 3

// suiteFetch is how many semantic candidates each case ranks
const suiteFetch = 20

const exampleSuite = `# Ranking tests - run with: goto test
# Each test checks if expected projects appear in top N results

[[tests]]
query = "console"
expected = ["console-plus-web", "console-plus-web-2"]
top_n = 3

[[tests]]
query = "cache en rust"
expected = ["foyer"]
top_n = 3

[[tests]]
query = "kafka"
expected = ["kafka", "apache-kafka-2"]
top_n = 5
`

// Case is a single ranking expectation
type Case struct {
	Query    string   `toml:"query"`
	Expected []string `toml:"expected"`
	TopN     int      `toml:"top_n"`
}

// Suite is a set of ranking expectations
type Suite struct {
	Tests []Case `toml:"tests"`
}

// CaseResult reports how one case fared
type CaseResult struct {
	Case    Case
	Passed  bool
	Missing []string // expected names not found in the top N
	Top     []string // names that were ranked in the top N
}

// SuiteReport summarizes a suite run
type SuiteReport struct {
	Results []CaseResult
	Passed  int
	Failed  int
}

// OK reports whether every case passed
func (r *SuiteReport) OK() bool {
	return r.Failed == 0
}

// LoadSuite reads a TOML ranking suite
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test file: %w", err)
	}

	var suite Suite
	if err := toml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse test file %s: %w", path, err)
	}
	for i := range suite.Tests {
		if suite.Tests[i].TopN <= 0 {
			suite.Tests[i].TopN = DefaultTopN
		}
	}
	return &suite, nil
}

// WriteExampleSuite writes the starter suite, creating parent directories
func WriteExampleSuite(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(exampleSuite), 0o644); err != nil {
		return fmt.Errorf("failed to write test file: %w", err)
	}
	return nil
}

// RunSuite ranks every case's query and checks its expected names
func (s *Searcher) RunSuite(ctx context.Context, suite *Suite) (*SuiteReport, error) {
	ok, err := s.hasVectors(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("no projects indexed, run goto update first")
	}

	report := &SuiteReport{Results: make([]CaseResult, 0, len(suite.Tests))}
	for _, tc := range suite.Tests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results, err := s.Ranked(ctx, tc.Query, suiteFetch)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", tc.Query, err)
		}

		topN := tc.TopN
		if topN <= 0 {
			topN = DefaultTopN
		}
		top := make([]string, 0, topN)
		for i := 0; i < len(results) && i < topN; i++ {
			top = append(top, results[i].Project.Name)
		}

		cr := CaseResult{Case: tc, Top: top}
		for _, want := range tc.Expected {
			if !slices.ContainsFunc(top, func(name string) bool { return strings.EqualFold(name, want) }) {
				cr.Missing = append(cr.Missing, want)
			}
		}
		cr.Passed = len(cr.Missing) == 0
		if cr.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, cr)
	}
	return report, nil
}
