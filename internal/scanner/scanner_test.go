package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goto/internal/command"
	"github.com/dshills/goto/pkg/types"
)

type upsertCall struct {
	paths  []string
	source types.Provenance
}

// recordingStore captures what the scanner commits
type recordingStore struct {
	upserts   []upsertCall
	pruned    int
	pruneErr  error
	upsertErr error
}

func (r *recordingStore) UpsertBatch(ctx context.Context, paths []string, source types.Provenance) (int, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	r.upserts = append(r.upserts, upsertCall{paths: append([]string(nil), paths...), source: source})
	return len(paths), nil
}

func (r *recordingStore) PruneMissing(ctx context.Context) (int, error) {
	return r.pruned, r.pruneErr
}

type fakeIndex struct {
	hits  []string
	err   error
	roots []string
}

func (f *fakeIndex) Find(ctx context.Context, markers, roots []string) ([]string, error) {
	f.roots = roots
	return f.hits, f.err
}

// mkfiles creates empty files (and their parents) under root
func mkfiles(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
}

func mkdirs(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		require.NoError(t, os.MkdirAll(filepath.Join(root, rel), 0o755))
	}
}

func testTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mkdirs(t, root,
		"repoA/.git",
		"repoA/vendor/libB/.git",
		"empty/nothing",
	)
	mkfiles(t, root,
		"readme.txt",
		"repoA/main.go",
		"repoA/sub/file.txt",
		"notes/draft.md",
		"blog/index.md",
		"blog/posts/p1.md",
		"node_modules/pkg/index.js",
		".hidden/x.txt",
		"deep/a/b/c/d/e/f.txt",
		"dotonly/.env",
	)
	return root
}

func TestWalkRoot(t *testing.T) {
	root := testTree(t)
	s := New(&recordingStore{}, Options{Excludes: []string{"node_modules"}})

	found, err := s.WalkRoot(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "repoA"),
		filepath.Join(root, "repoA/vendor/libB"),
		filepath.Join(root, "blog/posts"),
		filepath.Join(root, "notes"),
	}, found)
}

func TestWalkRoot_RootIsRepository(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, ".git")
	mkfiles(t, root, "src/lib.rs")

	s := New(&recordingStore{}, Options{})
	found, err := s.WalkRoot(root)
	require.NoError(t, err)
	assert.Equal(t, []string{root}, found)
}

func TestWalkRoot_GlobExclude(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "build-cache/a.txt", "keep/b.txt")

	s := New(&recordingStore{}, Options{Excludes: []string{"*-cache"}})
	found, err := s.WalkRoot(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "keep")}, found)
}

func TestWalkRoot_DepthLimit(t *testing.T) {
	root := t.TempDir()
	mkfiles(t, root, "a/b/c/file.txt")

	shallow := New(&recordingStore{}, Options{MaxDepth: 2})
	found, err := shallow.WalkRoot(root)
	require.NoError(t, err)
	assert.Empty(t, found)

	deep := New(&recordingStore{}, Options{MaxDepth: 3})
	found, err = deep.WalkRoot(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a/b/c")}, found)
}

func TestWalkRoot_Missing(t *testing.T) {
	s := New(&recordingStore{}, Options{})
	_, err := s.WalkRoot(filepath.Join(t.TempDir(), "gone"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLeaves(t *testing.T) {
	got := leaves([]string{"/a", "/a/b", "/a/b/c", "/a/x", "/z"})
	assert.Equal(t, []string{"/a/b/c", "/a/x", "/z"}, got)
}

func TestScanPaths(t *testing.T) {
	root := testTree(t)
	missing := filepath.Join(t.TempDir(), "missing")
	store := &recordingStore{pruned: 2}
	index := &fakeIndex{hits: []string{"/should/not/be/used/go.mod"}}

	s := New(store, Options{
		Roots:    []string{root, missing, root},
		Excludes: []string{"node_modules"},
	}, WithSystemIndex(index))

	result, err := s.ScanPaths(context.Background())
	require.NoError(t, err)

	require.Len(t, store.upserts, 1)
	assert.Equal(t, types.SourceScan, store.upserts[0].source)
	assert.Len(t, store.upserts[0].paths, 4, "duplicate roots are merged")
	assert.Equal(t, 4, result.FromPaths)
	assert.Equal(t, 0, result.FromSystemIndex)
	assert.Equal(t, 2, result.Pruned)
	assert.Len(t, result.Warnings, 1)
	assert.Nil(t, index.roots, "system index is not consulted")
}

func TestScanAll_SystemIndex(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "proj1/.git", "proj2", "node_modules/x/.git")
	mkfiles(t, base, "proj1/go.mod", "proj1/package.json", "proj2/Cargo.toml", "node_modules/x/package.json")

	index := &fakeIndex{
		hits: []string{
			filepath.Join(base, "proj1/go.mod"),
			filepath.Join(base, "proj1/package.json"),
			filepath.Join(base, "proj2/Cargo.toml"),
			filepath.Join(base, "node_modules/x/package.json"),
		},
		err: errors.New("mdfind in /Volumes/x: exit 1"),
	}
	store := &recordingStore{}

	s := New(store, Options{
		Excludes:    []string{"node_modules"},
		SearchRoots: []string{base},
	}, WithSystemIndex(index))

	result, err := s.ScanAll(context.Background())
	require.NoError(t, err)

	require.Len(t, store.upserts, 1)
	assert.Equal(t, types.SourceSpotlight, store.upserts[0].source)
	assert.Equal(t, []string{filepath.Join(base, "proj1")}, store.upserts[0].paths)
	assert.Equal(t, 1, result.FromSystemIndex)
	assert.Equal(t, 1, result.Total())
	assert.Equal(t, []string{base}, index.roots)
	assert.Len(t, result.Warnings, 1)
}

func TestScan_StoreErrorsPropagate(t *testing.T) {
	root := testTree(t)

	s := New(&recordingStore{upsertErr: errors.New("disk full")}, Options{Roots: []string{root}})
	_, err := s.ScanPaths(context.Background())
	assert.ErrorContains(t, err, "disk full")

	s = New(&recordingStore{pruneErr: errors.New("locked")}, Options{})
	_, err = s.ScanPaths(context.Background())
	assert.ErrorContains(t, err, "locked")
}

func TestPin(t *testing.T) {
	dir := t.TempDir()
	store := &recordingStore{}
	s := New(store, Options{})

	abs, err := s.Pin(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, store.upserts, 1)
	assert.Equal(t, types.SourceManual, store.upserts[0].source)
	assert.Equal(t, []string{abs}, store.upserts[0].paths)

	_, err = s.Pin(context.Background(), filepath.Join(dir, "nope"))
	assert.Error(t, err)

	mkfiles(t, dir, "file.txt")
	_, err = s.Pin(context.Background(), filepath.Join(dir, "file.txt"))
	assert.ErrorContains(t, err, "not a directory")
}

func TestSpotlight_Find(t *testing.T) {
	good := t.TempDir()
	bad := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing")

	var calls [][]string
	runner := command.Func(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, append([]string{name}, args...))
		if args[2] == bad {
			return nil, &command.ExitError{Name: name, Code: 1, Stderr: "index disabled"}
		}
		return []byte("/p/one/go.mod\x00/p/two/Cargo.toml\x00"), nil
	})

	sp := NewSpotlight(runner, nil)
	hits, err := sp.Find(context.Background(), []string{"go.mod", "Cargo.toml"}, []string{good, bad, missing})

	assert.Equal(t, []string{"/p/one/go.mod", "/p/two/Cargo.toml"}, hits)
	assert.ErrorContains(t, err, "index disabled")
	require.Len(t, calls, 2)
	assert.Equal(t, []string{
		"mdfind", "-0", "-onlyin", good,
		"kMDItemFSName == 'go.mod' || kMDItemFSName == 'Cargo.toml'",
	}, calls[0])
}

func TestSplitOutput(t *testing.T) {
	assert.Equal(t, []string{"/a", "/b"}, splitOutput([]byte("/a\x00/b\x00")))
	assert.Equal(t, []string{"/a", "/b"}, splitOutput([]byte("/a\n/b\n")))
	assert.Empty(t, splitOutput(nil))
}

func TestQuery(t *testing.T) {
	q := Query(Markers)
	assert.Contains(t, q, "kMDItemFSName == 'Cargo.toml' || kMDItemFSName == 'package.json'")
	assert.Contains(t, q, "kMDItemFSName == 'docusaurus.config.js'")
}
