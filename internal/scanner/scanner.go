package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/goto/pkg/types"
)

// DefaultMaxDepth bounds the filesystem walk below each root
const DefaultMaxDepth = 5

// Store is the slice of the repository the scanner writes to
type Store interface {
	UpsertBatch(ctx context.Context, paths []string, source types.Provenance) (int, error)
	PruneMissing(ctx context.Context) (int, error)
}

// Options configures discovery
type Options struct {
	Roots       []string
	MaxDepth    int
	Excludes    []string
	SearchRoots []string // system-index roots
	Concurrency int      // roots walked in parallel
}

// Option customizes a Scanner
type Option func(*Scanner)

// WithSystemIndex enables the system-index pass
func WithSystemIndex(index SystemIndex) Option {
	return func(s *Scanner) {
		s.index = index
	}
}

// WithLogger sets the logger for warnings
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scanner discovers projects and commits them to a Store
type Scanner struct {
	store  Store
	opts   Options
	walker *walker
	index  SystemIndex
	logger *slog.Logger
}

// New creates a Scanner
func New(store Store, opts Options, options ...Option) *Scanner {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}

	s := &Scanner{
		store: store,
		opts:  opts,
		walker: &walker{
			maxDepth: opts.MaxDepth,
			excludes: excludes(opts.Excludes),
		},
		logger: slog.Default(),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// WalkRoot runs discovery for a single root without touching the store
func (s *Scanner) WalkRoot(root string) ([]string, error) {
	return s.walker.WalkRoot(root)
}

// ScanAll walks the configured roots, queries the system index when one is
// set, then prunes vanished projects.
func (s *Scanner) ScanAll(ctx context.Context) (*types.ScanResult, error) {
	return s.scan(ctx, true)
}

// ScanPaths is ScanAll without the system index
func (s *Scanner) ScanPaths(ctx context.Context) (*types.ScanResult, error) {
	return s.scan(ctx, false)
}

func (s *Scanner) scan(ctx context.Context, useIndex bool) (*types.ScanResult, error) {
	result := &types.ScanResult{}

	found, warnings, err := s.walkRoots(ctx)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, warnings...)

	if len(found) > 0 {
		n, err := s.store.UpsertBatch(ctx, found, types.SourceScan)
		if err != nil {
			return nil, fmt.Errorf("failed to record scanned projects: %w", err)
		}
		result.FromPaths = n
	}

	if useIndex && s.index != nil {
		indexed, warnings := s.systemIndexProjects(ctx)
		result.Warnings = append(result.Warnings, warnings...)

		if len(indexed) > 0 {
			n, err := s.store.UpsertBatch(ctx, indexed, types.SourceSpotlight)
			if err != nil {
				return nil, fmt.Errorf("failed to record indexed projects: %w", err)
			}
			result.FromSystemIndex = n
		}
	}

	pruned, err := s.store.PruneMissing(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prune missing projects: %w", err)
	}
	result.Pruned = pruned

	s.logger.Debug("scan complete",
		"from_paths", result.FromPaths,
		"from_system_index", result.FromSystemIndex,
		"pruned", result.Pruned,
	)
	return result, nil
}

// walkRoots walks every root concurrently and merges results in root order
func (s *Scanner) walkRoots(ctx context.Context) ([]string, []string, error) {
	perRoot := make([][]string, len(s.opts.Roots))
	var (
		mu       sync.Mutex
		warnings []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, root := range s.opts.Roots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				abs = root
			}
			found, err := s.walker.WalkRoot(abs)
			if err != nil {
				s.logger.Warn("skipping scan root", "root", root, "error", err)
				mu.Lock()
				warnings = append(warnings, err.Error())
				mu.Unlock()
				return nil
			}
			perRoot[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	seen := make(map[string]bool)
	var found []string
	for _, paths := range perRoot {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				found = append(found, p)
			}
		}
	}
	return found, warnings, nil
}

// systemIndexProjects turns marker hits into git-backed project directories
func (s *Scanner) systemIndexProjects(ctx context.Context) ([]string, []string) {
	var warnings []string

	hits, err := s.index.Find(ctx, Markers, s.opts.SearchRoots)
	if err != nil {
		warnings = append(warnings, err.Error())
	}

	seen := make(map[string]bool)
	var projects []string
	for _, hit := range hits {
		dir := filepath.Dir(hit)
		if seen[dir] {
			continue
		}
		seen[dir] = true

		if _, err := os.Stat(filepath.Join(dir, gitDir)); err != nil {
			continue
		}
		if s.walker.excludes.matchPath(dir) {
			continue
		}
		projects = append(projects, dir)
	}
	return projects, warnings
}

// Pin records path as a manually added project
func (s *Scanner) Pin(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot pin %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("cannot pin %s: not a directory", path)
	}

	if _, err := s.store.UpsertBatch(ctx, []string{abs}, types.SourceManual); err != nil {
		return "", fmt.Errorf("failed to pin %s: %w", abs, err)
	}
	return abs, nil
}
