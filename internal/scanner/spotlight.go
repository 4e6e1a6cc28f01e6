package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dshills/goto/internal/command"
)

// Markers are the file names that identify a project to the system index.
var Markers = []string{
	"Cargo.toml",
	"package.json",
	"pyproject.toml",
	"go.mod",
	"Gemfile",
	"pom.xml",
	"build.gradle",
	"CMakeLists.txt",
	"Makefile",
	"docs.json",
	"mkdocs.yml",
	"docusaurus.config.js",
}

// SystemIndex finds files by name using an OS-level search index.
type SystemIndex interface {
	// Find returns paths of files named like one of markers under roots.
	// Partial results may accompany a non-nil error.
	Find(ctx context.Context, markers, roots []string) ([]string, error)
}

// Spotlight queries the macOS metadata index through mdfind.
type Spotlight struct {
	runner command.Runner
	logger *slog.Logger
}

// NewSpotlight returns a Spotlight that runs mdfind through runner.
func NewSpotlight(runner command.Runner, logger *slog.Logger) *Spotlight {
	if logger == nil {
		logger = slog.Default()
	}
	return &Spotlight{runner: runner, logger: logger}
}

// NewDefaultSystemIndex returns Spotlight when mdfind is installed, else nil.
func NewDefaultSystemIndex(runner command.Runner, logger *slog.Logger) SystemIndex {
	if !command.Available("mdfind") {
		return nil
	}
	return NewSpotlight(runner, logger)
}

// Query builds the single compound mdfind query for markers.
func Query(markers []string) string {
	terms := make([]string, len(markers))
	for i, m := range markers {
		terms[i] = fmt.Sprintf("kMDItemFSName == '%s'", m)
	}
	return strings.Join(terms, " || ")
}

func (s *Spotlight) Find(ctx context.Context, markers, roots []string) ([]string, error) {
	query := Query(markers)

	var (
		hits []string
		errs []error
	)
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}

		out, err := s.runner.Run(ctx, "mdfind", "-0", "-onlyin", root, query)
		if err != nil {
			s.logger.Warn("mdfind failed", "root", root, "error", err)
			errs = append(errs, fmt.Errorf("mdfind in %s: %w", root, err))
			continue
		}
		hits = append(hits, splitOutput(out)...)
	}

	return hits, errors.Join(errs...)
}

// splitOutput splits NUL-separated output, falling back to lines
func splitOutput(out []byte) []string {
	sep := []byte{0}
	if !bytes.Contains(out, sep) {
		sep = []byte{'\n'}
	}

	var paths []string
	for _, field := range bytes.Split(out, sep) {
		if p := strings.TrimRight(string(field), "\r"); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
