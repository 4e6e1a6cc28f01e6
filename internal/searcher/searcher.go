package searcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dshills/goto/internal/embedder"
	"github.com/dshills/goto/internal/frecency"
	"github.com/dshills/goto/internal/matcher"
	"github.com/dshills/goto/internal/storage"
	"github.com/dshills/goto/pkg/types"
)

var (
	// ErrNoVectors is returned by list mode when nothing has been indexed
	ErrNoVectors = errors.New("no projects indexed")
	// ErrSemanticUnavailable is returned when vectors exist but no embedder could be built
	ErrSemanticUnavailable = errors.New("semantic search unavailable")
)

const (
	resolveCandidates = 10
	minListFetch      = 20
)

// Repository is the slice of storage the ranking pipeline reads and updates
type Repository interface {
	GetAll(ctx context.Context) ([]types.Project, error)
	GetByID(ctx context.Context, id int64) (*types.Project, error)
	MarkAccessed(ctx context.Context, path string) error
	EmbeddedText(ctx context.Context, projectID int64) (string, error)
	Nearest(ctx context.Context, vector []float32, limit int) ([]storage.VectorHit, error)
	EmbeddingStats(ctx context.Context) (indexed int, total int, err error)
}

// Options configures a Searcher
type Options struct {
	Boosts Boosts
	// EmbedderErr is reported when emb is nil
	EmbedderErr error
	Logger      *slog.Logger
	Now         func() time.Time
}

// Searcher resolves free-text queries to projects
type Searcher struct {
	repo        Repository
	embedder    embedder.Embedder
	boosts      Boosts
	embedderErr error
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a Searcher. emb may be nil, in which case only exact and
// lexical matching are available.
func New(repo Repository, emb embedder.Embedder, opts Options) *Searcher {
	if opts.Boosts == (Boosts{}) {
		opts.Boosts = DefaultBoosts()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Searcher{
		repo:        repo,
		embedder:    emb,
		boosts:      opts.Boosts,
		embedderErr: opts.EmbedderErr,
		logger:      opts.Logger,
		now:         opts.Now,
	}
}

// Boosts returns the ranking constants in use
func (s *Searcher) Boosts() Boosts {
	return s.boosts
}

// hasVectors reports whether any project has been indexed
func (s *Searcher) hasVectors(ctx context.Context) (bool, error) {
	indexed, _, err := s.repo.EmbeddingStats(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read index stats: %w", err)
	}
	return indexed > 0, nil
}

// SemanticSearch returns up to limit projects nearest to the query, scored
// as 100/(1+distance). The result is empty when nothing is indexed.
func (s *Searcher) SemanticSearch(ctx context.Context, query string, limit int) ([]types.MatchResult, error) {
	ok, err := s.hasVectors(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || limit <= 0 {
		return []types.MatchResult{}, nil
	}
	if s.embedder == nil {
		if s.embedderErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrSemanticUnavailable, s.embedderErr)
		}
		return nil, ErrSemanticUnavailable
	}

	emb, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query})
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	hits, err := s.repo.Nearest(ctx, emb.Vector, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]types.MatchResult, 0, len(hits))
	for _, hit := range hits {
		project, err := s.repo.GetByID(ctx, hit.ProjectID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, types.MatchResult{
			Project:  *project,
			Score:    100 / (1 + hit.Distance),
			Semantic: true,
		})
	}
	return results, nil
}

// boosted applies Boost to every result and sorts by score, stably
func (s *Searcher) boosted(ctx context.Context, query string, results []types.MatchResult) ([]types.MatchResult, error) {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	for i := range results {
		text, err := s.repo.EmbeddedText(ctx, results[i].Project.ID)
		if err != nil {
			return nil, err
		}
		results[i].Score = s.boosts.Boost(results[i].Project.Name, queryLower, results[i].Score, text)
	}

	slices.SortFunc(results, matcher.CompareResults)
	return results, nil
}

// Ranked runs semantic search for limit candidates and boosts them
func (s *Searcher) Ranked(ctx context.Context, query string, limit int) ([]types.MatchResult, error) {
	results, err := s.SemanticSearch(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return s.boosted(ctx, query, results)
}

// Resolve picks the single project a query refers to and records the visit
func (s *Searcher) Resolve(ctx context.Context, query string) (*types.Resolution, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &types.Resolution{Outcome: types.OutcomeNoMatch, Reason: types.ReasonEmptyQuery}, nil
	}

	projects, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	if len(projects) == 0 {
		return &types.Resolution{Outcome: types.OutcomeNoMatch, Reason: types.ReasonEmptyIndex}, nil
	}

	if p := s.exactMatch(query, projects); p != nil {
		return s.accept(ctx, &types.Resolution{Project: p, Score: s.boosts.Max, Exact: true})
	}

	ok, err := s.hasVectors(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		res, err := s.resolveSemantic(ctx, query)
		if !errors.Is(err, ErrSemanticUnavailable) {
			return res, err
		}
		s.logger.Warn("falling back to lexical matching", "error", err)
	}

	best, found := matcher.Best(query, projects)
	if !found {
		return &types.Resolution{Outcome: types.OutcomeNoMatch, Reason: types.ReasonNoVectors}, nil
	}
	project := best.Project
	return s.accept(ctx, &types.Resolution{Project: &project, Score: best.Score})
}

func (s *Searcher) resolveSemantic(ctx context.Context, query string) (*types.Resolution, error) {
	results, err := s.Ranked(ctx, query, resolveCandidates)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &types.Resolution{Outcome: types.OutcomeNoMatch, Reason: types.ReasonBelowThreshold}, nil
	}

	top := results[0]
	if top.Score < s.boosts.MinConfidence {
		return &types.Resolution{
			Outcome: types.OutcomeNoMatch,
			Reason:  types.ReasonBelowThreshold,
			Best:    top.Score,
		}, nil
	}
	return s.accept(ctx, &types.Resolution{Project: &top.Project, Score: top.Score, Semantic: true})
}

// exactMatch finds a case-insensitive name match; the most frecent one wins
// when several projects share the name
func (s *Searcher) exactMatch(query string, projects []types.Project) *types.Project {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	now := s.now()

	var best *types.Project
	for i := range projects {
		if strings.ToLower(projects[i].Name) != queryLower {
			continue
		}
		if best == nil || frecency.ProjectScore(&projects[i], now) > frecency.ProjectScore(best, now) {
			best = &projects[i]
		}
	}
	return best
}

func (s *Searcher) accept(ctx context.Context, res *types.Resolution) (*types.Resolution, error) {
	res.Outcome = types.OutcomeResolved
	if err := s.repo.MarkAccessed(ctx, res.Project.Path); err != nil {
		return nil, fmt.Errorf("failed to record access: %w", err)
	}
	return res, nil
}

// List returns the limit best semantic matches without recording access
func (s *Searcher) List(ctx context.Context, query string, limit int) ([]types.MatchResult, error) {
	ok, err := s.hasVectors(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoVectors
	}
	query = strings.TrimSpace(query)
	if limit <= 0 || query == "" {
		return []types.MatchResult{}, nil
	}

	results, err := s.Ranked(ctx, query, max(2*limit, minListFetch))
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
