package searcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/goto/internal/embedder"
	"github.com/dshills/goto/internal/storage"
	"github.com/dshills/goto/pkg/types"
)

// fixedEmbedder returns preset vectors per text and a zero vector otherwise
type fixedEmbedder struct {
	vectors map[string][]float32
	dim     int
}

func (f *fixedEmbedder) GenerateEmbedding(ctx context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	vec, ok := f.vectors[req.Text]
	if !ok {
		vec = make([]float32, f.dim)
	}
	return &embedder.Embedding{Vector: vec, Dimension: f.dim, Provider: "fixed", Model: "fixed"}, nil
}

func (f *fixedEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	resp := &embedder.BatchEmbeddingResponse{Provider: "fixed", Model: "fixed"}
	for _, text := range req.Texts {
		emb, _ := f.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
		resp.Embeddings = append(resp.Embeddings, emb)
	}
	return resp, nil
}

func (f *fixedEmbedder) Dimension() int   { return f.dim }
func (f *fixedEmbedder) Provider() string { return "fixed" }
func (f *fixedEmbedder) Model() string    { return "fixed" }
func (f *fixedEmbedder) Close() error     { return nil }

type indexedProject struct {
	name   string
	text   string
	vector []float32
}

func setupStore(t *testing.T, names ...string) (*storage.SQLiteStorage, string) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	root := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(paths[i], 0o755))
	}
	if len(paths) > 0 {
		_, err = store.UpsertBatch(context.Background(), paths, types.SourceScan)
		require.NoError(t, err)
	}
	return store, root
}

// setupIndexed stores each project with its embedded text and vector
func setupIndexed(t *testing.T, projects []indexedProject) (*storage.SQLiteStorage, string) {
	t.Helper()
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.name
	}
	store, root := setupStore(t, names...)

	ctx := context.Background()
	for _, p := range projects {
		project, err := store.GetByPath(ctx, filepath.Join(root, p.name))
		require.NoError(t, err)

		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.UpsertMetadata(ctx, project.ID, &types.ProjectMetadata{Description: p.text, EmbeddedText: p.text}))
		require.NoError(t, tx.UpsertVector(ctx, project.ID, &storage.Vector{Values: p.vector, Provider: "fixed", Model: "fixed"}))
		require.NoError(t, tx.Commit())
	}
	return store, root
}

func twoProjects(t *testing.T) (*storage.SQLiteStorage, string) {
	return setupIndexed(t, []indexedProject{
		{name: "alpha", text: "alpha | Fast parser toolkit", vector: []float32{1, 0}},
		{name: "beta", text: "beta | Web dashboard", vector: []float32{0, 1}},
	})
}

func twoDimEmbedder() *fixedEmbedder {
	return &fixedEmbedder{dim: 2, vectors: map[string][]float32{
		"parser stuff": {1, 0},
		"nothing":      {-1, 0},
		"dashboard":    {0, -1},
	}}
}

func accessCount(t *testing.T, store *storage.SQLiteStorage, path string) int64 {
	t.Helper()
	p, err := store.GetByPath(context.Background(), path)
	require.NoError(t, err)
	return p.AccessCount
}

func TestBoost(t *testing.T) {
	b := DefaultBoosts()

	tests := []struct {
		name  string
		pname string
		query string
		base  float64
		text  string
		want  float64
	}{
		{"exact name", "foyer", "foyer", 50, "", 90},
		{"name contains query", "console-plus-web", "console", 50, "", 70},
		{"name contains every word", "rust-cache-lib", "cache rust", 50, "", 70},
		{"metadata contains every word", "foyer", "cache en rust", 50, "Hybrid cache in Rust", 60},
		{"no overlap", "kafka", "cache en rust", 50, "streaming platform", 50},
		{"only short words", "ab", "a b", 50, "a b", 50},
		{"clamped", "foyer", "foyer", 80, "", 100},
		{"case-insensitive name", "Foyer", "foyer", 30, "", 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Boost(tt.pname, tt.query, tt.base, tt.text)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, tt.base)
			assert.LessOrEqual(t, got, b.Max)
		})
	}
}

func TestSemanticSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty without vectors", func(t *testing.T) {
		store, _ := setupStore(t, "alpha")
		s := New(store, twoDimEmbedder(), Options{})

		results, err := s.SemanticSearch(ctx, "parser stuff", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("scores from distance", func(t *testing.T) {
		store, _ := twoProjects(t)
		s := New(store, twoDimEmbedder(), Options{})

		results, err := s.SemanticSearch(ctx, "parser stuff", 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "alpha", results[0].Project.Name)
		assert.InDelta(t, 100.0, results[0].Score, 1e-6)
		assert.True(t, results[0].Semantic)
		assert.Equal(t, "beta", results[1].Project.Name)
		assert.InDelta(t, 100/(1+1.41421356), results[1].Score, 1e-4)
	})

	t.Run("limit", func(t *testing.T) {
		store, _ := twoProjects(t)
		s := New(store, twoDimEmbedder(), Options{})

		results, err := s.SemanticSearch(ctx, "parser stuff", 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("unavailable embedder", func(t *testing.T) {
		store, _ := twoProjects(t)
		s := New(store, nil, Options{EmbedderErr: embedder.ErrNoProviderEnabled})

		_, err := s.SemanticSearch(ctx, "parser stuff", 10)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSemanticUnavailable))
		assert.Contains(t, err.Error(), embedder.ErrNoProviderEnabled.Error())
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("empty index", func(t *testing.T) {
		store, _ := setupStore(t)
		s := New(store, twoDimEmbedder(), Options{})

		res, err := s.Resolve(ctx, "anything")
		require.NoError(t, err)
		assert.False(t, res.Resolved())
		assert.Equal(t, types.ReasonEmptyIndex, res.Reason)
	})

	t.Run("exact name without vectors", func(t *testing.T) {
		store, root := setupStore(t, "alpha", "beta")
		s := New(store, nil, Options{})

		res, err := s.Resolve(ctx, "BETA")
		require.NoError(t, err)
		require.True(t, res.Resolved())
		assert.True(t, res.Exact)
		assert.False(t, res.Semantic)
		assert.Equal(t, filepath.Join(root, "beta"), res.Path())
		assert.Equal(t, int64(1), accessCount(t, store, res.Path()))
	})

	t.Run("exact name prefers frecency", func(t *testing.T) {
		store, root := setupStore(t, "one/api", "two/api")
		busy := filepath.Join(root, "two", "api")
		require.NoError(t, store.MarkAccessed(ctx, busy))
		require.NoError(t, store.MarkAccessed(ctx, busy))
		s := New(store, nil, Options{})

		res, err := s.Resolve(ctx, "api")
		require.NoError(t, err)
		assert.Equal(t, busy, res.Path())
		assert.Equal(t, int64(3), accessCount(t, store, busy))
	})

	t.Run("semantic above threshold", func(t *testing.T) {
		store, root := twoProjects(t)
		s := New(store, twoDimEmbedder(), Options{})

		res, err := s.Resolve(ctx, "parser stuff")
		require.NoError(t, err)
		require.True(t, res.Resolved())
		assert.True(t, res.Semantic)
		assert.Equal(t, filepath.Join(root, "alpha"), res.Path())
		assert.InDelta(t, 100.0, res.Score, 1e-6)
		assert.Equal(t, int64(1), accessCount(t, store, res.Path()))
	})

	t.Run("below threshold", func(t *testing.T) {
		store, root := twoProjects(t)
		s := New(store, twoDimEmbedder(), Options{})

		res, err := s.Resolve(ctx, "nothing")
		require.NoError(t, err)
		assert.False(t, res.Resolved())
		assert.Equal(t, types.ReasonBelowThreshold, res.Reason)
		assert.InDelta(t, 100/(1+1.41421356), res.Best, 1e-4)
		assert.Equal(t, int64(0), accessCount(t, store, filepath.Join(root, "alpha")))
		assert.Equal(t, int64(0), accessCount(t, store, filepath.Join(root, "beta")))
	})

	t.Run("lexical without vectors", func(t *testing.T) {
		store, root := setupStore(t, "alpha", "beta")
		s := New(store, nil, Options{})

		res, err := s.Resolve(ctx, "alp")
		require.NoError(t, err)
		require.True(t, res.Resolved())
		assert.False(t, res.Semantic)
		assert.Equal(t, filepath.Join(root, "alpha"), res.Path())
	})

	t.Run("no lexical match without vectors", func(t *testing.T) {
		store, _ := setupStore(t, "alpha", "beta")
		s := New(store, nil, Options{})

		res, err := s.Resolve(ctx, "qxq")
		require.NoError(t, err)
		assert.False(t, res.Resolved())
		assert.Equal(t, types.ReasonNoVectors, res.Reason)
	})

	t.Run("semantic unavailable falls back to lexical", func(t *testing.T) {
		store, root := twoProjects(t)
		s := New(store, nil, Options{EmbedderErr: embedder.ErrNoProviderEnabled})

		res, err := s.Resolve(ctx, "alp")
		require.NoError(t, err)
		require.True(t, res.Resolved())
		assert.Equal(t, filepath.Join(root, "alpha"), res.Path())
	})

	t.Run("custom threshold", func(t *testing.T) {
		store, _ := twoProjects(t)
		boosts := DefaultBoosts()
		boosts.MinConfidence = 40
		s := New(store, twoDimEmbedder(), Options{Boosts: boosts})

		res, err := s.Resolve(ctx, "nothing")
		require.NoError(t, err)
		require.True(t, res.Resolved())
		assert.Equal(t, "beta", res.Project.Name)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("no vectors", func(t *testing.T) {
		store, _ := setupStore(t, "alpha")
		s := New(store, twoDimEmbedder(), Options{})

		_, err := s.List(ctx, "alpha", 5)
		assert.ErrorIs(t, err, ErrNoVectors)
	})

	t.Run("boost reorders", func(t *testing.T) {
		store, root := twoProjects(t)
		s := New(store, twoDimEmbedder(), Options{})

		// beta is farther away but its metadata mentions the query
		results, err := s.List(ctx, "dashboard", 5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "beta", results[0].Project.Name)
		assert.InDelta(t, 100/3.0+10, results[0].Score, 1e-4)
		assert.Equal(t, "alpha", results[1].Project.Name)

		assert.Equal(t, int64(0), accessCount(t, store, filepath.Join(root, "beta")))
	})

	t.Run("truncates", func(t *testing.T) {
		store, _ := twoProjects(t)
		s := New(store, twoDimEmbedder(), Options{})

		results, err := s.List(ctx, "parser stuff", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "alpha", results[0].Project.Name)
	})
}

// rankingFixture mirrors a small developer workspace indexed with the
// offline embedder
func rankingFixture(t *testing.T) *Searcher {
	t.Helper()
	texts := map[string]string{
		"console-plus-web":   "console-plus-web | Web console for managing clusters | Keywords: console, admin, dashboard | Tech: TypeScript, React",
		"console-plus-web-2": "console-plus-web-2 | Second generation web console | Keywords: console, ui | Tech: TypeScript",
		"foyer":              "foyer | Hybrid in-memory and disk cache for Rust | Keywords: cache, hybrid, storage | Tech: Rust | Type: systems programming",
		"kafka":              "kafka | Distributed event streaming platform | Keywords: streaming, messaging | Tech: Java",
		"apache-kafka-2":     "apache-kafka-2 | Fork of Apache Kafka with patches | Tech: Java, Scala",
		"redis-clone":        "redis-clone | In-memory key value store written in Go | Tech: Go",
		"blog":               "blog | Personal website and notes | Tech: Hugo, Markdown",
	}

	local, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	projects := make([]indexedProject, 0, len(texts))
	for name, text := range texts {
		emb, err := local.GenerateEmbedding(context.Background(), embedder.EmbeddingRequest{Text: text})
		require.NoError(t, err)
		projects = append(projects, indexedProject{name: name, text: text, vector: emb.Vector})
	}

	store, _ := setupIndexed(t, projects)
	return New(store, local, Options{})
}

func topNames(results []types.MatchResult, n int) []string {
	var names []string
	for i := 0; i < len(results) && i < n; i++ {
		names = append(names, results[i].Project.Name)
	}
	return names
}

func TestRankingWithLocalEmbedder(t *testing.T) {
	s := rankingFixture(t)
	ctx := context.Background()

	results, err := s.List(ctx, "cache en rust", 3)
	require.NoError(t, err)
	assert.Contains(t, topNames(results, 3), "foyer")

	results, err = s.List(ctx, "console", 3)
	require.NoError(t, err)
	top := topNames(results, 3)
	assert.Contains(t, top, "console-plus-web")
	assert.Contains(t, top, "console-plus-web-2")

	res, err := s.Resolve(ctx, "kafka")
	require.NoError(t, err)
	assert.True(t, res.Exact)
	assert.Equal(t, "kafka", res.Project.Name)
}

func TestSuite(t *testing.T) {
	ctx := context.Background()

	t.Run("example suite round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "goto", "tests.toml")
		require.NoError(t, WriteExampleSuite(path))

		suite, err := LoadSuite(path)
		require.NoError(t, err)
		require.Len(t, suite.Tests, 3)
		assert.Equal(t, "cache en rust", suite.Tests[1].Query)
		assert.Equal(t, []string{"foyer"}, suite.Tests[1].Expected)
		assert.Equal(t, 5, suite.Tests[2].TopN)
	})

	t.Run("default top_n", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tests.toml")
		require.NoError(t, os.WriteFile(path, []byte("[[tests]]\nquery = \"x\"\nexpected = [\"y\"]\n"), 0o644))

		suite, err := LoadSuite(path)
		require.NoError(t, err)
		require.Len(t, suite.Tests, 1)
		assert.Equal(t, DefaultTopN, suite.Tests[0].TopN)
	})

	t.Run("invalid toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tests.toml")
		require.NoError(t, os.WriteFile(path, []byte("[[tests]\n"), 0o644))

		_, err := LoadSuite(path)
		assert.Error(t, err)
	})

	t.Run("example suite passes on fixture", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tests.toml")
		require.NoError(t, WriteExampleSuite(path))
		suite, err := LoadSuite(path)
		require.NoError(t, err)

		report, err := rankingFixture(t).RunSuite(ctx, suite)
		require.NoError(t, err)
		assert.True(t, report.OK(), "results: %+v", report.Results)
		assert.Equal(t, 3, report.Passed)
	})

	t.Run("reports missing names", func(t *testing.T) {
		store, _ := twoProjects(t)
		s := New(store, twoDimEmbedder(), Options{})

		report, err := s.RunSuite(ctx, &Suite{Tests: []Case{
			{Query: "parser stuff", Expected: []string{"alpha"}, TopN: 1},
			{Query: "parser stuff", Expected: []string{"beta", "gamma"}, TopN: 1},
		}})
		require.NoError(t, err)
		assert.False(t, report.OK())
		assert.Equal(t, 1, report.Passed)
		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, []string{"beta", "gamma"}, report.Results[1].Missing)
		assert.Equal(t, []string{"alpha"}, report.Results[1].Top)
	})

	t.Run("requires an index", func(t *testing.T) {
		store, _ := setupStore(t, "alpha")
		s := New(store, twoDimEmbedder(), Options{})

		_, err := s.RunSuite(ctx, &Suite{Tests: []Case{{Query: "a", Expected: []string{"alpha"}, TopN: 1}}})
		assert.Error(t, err)
	})
}

func TestRankedTiesPreferRecentAccess(t *testing.T) {
	ctx := context.Background()
	store, root := setupIndexed(t, []indexedProject{
		{name: "console-plus-web", text: "console-plus-web | Admin console", vector: []float32{1, 0}},
		{name: "console-plus-web-2", text: "console-plus-web-2 | Admin console", vector: []float32{0.9, 0}},
	})
	require.NoError(t, store.MarkAccessed(ctx, filepath.Join(root, "console-plus-web-2")))

	emb := &fixedEmbedder{dim: 2, vectors: map[string][]float32{"console": {1, 0}}}
	s := New(store, emb, Options{})

	results, err := s.List(ctx, "console", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t, "console-plus-web-2", results[0].Project.Name)

	res, err := s.Resolve(ctx, "console")
	require.NoError(t, err)
	require.True(t, res.Resolved())
	assert.Equal(t, "console-plus-web-2", res.Project.Name)
}

func TestBlankQuery(t *testing.T) {
	ctx := context.Background()
	store, root := twoProjects(t)
	s := New(store, twoDimEmbedder(), Options{})

	res, err := s.Resolve(ctx, "   ")
	require.NoError(t, err)
	assert.False(t, res.Resolved())
	assert.Equal(t, types.ReasonEmptyQuery, res.Reason)
	assert.Zero(t, accessCount(t, store, filepath.Join(root, "alpha")))

	results, err := s.List(ctx, " \t", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
