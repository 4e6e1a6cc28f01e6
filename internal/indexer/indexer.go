package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/goto/internal/embedder"
	"github.com/dshills/goto/internal/metadata"
	"github.com/dshills/goto/internal/storage"
	"github.com/dshills/goto/pkg/types"
)

// ErrIndexInProgress is returned when another indexing run holds the lock
var ErrIndexInProgress = errors.New("indexing already in progress")

// Store is the slice of the repository the indexer needs
type Store interface {
	Unindexed(ctx context.Context) ([]storage.UnindexedProject, error)
	BeginTx(ctx context.Context) (storage.Tx, error)
	ClearVectorsAndMetadata(ctx context.Context) error
}

// Extractor summarizes a project directory
type Extractor interface {
	Extract(path string) *types.ProjectMetadata
}

// Indexer coordinates the semantic indexing pipeline: extract -> embed -> store
type Indexer struct {
	store     Store
	embedder  embedder.Embedder
	extractor Extractor
	config    Config
	lock      IndexLock
}

// Config contains configuration for the indexer
type Config struct {
	Workers   int                   // Concurrent metadata extractions (default: runtime.NumCPU())
	BatchSize int                   // Texts per embedding call (default: embedder.DefaultBatchSize)
	Progress  func(done, total int) // Optional, called after each batch
	Logger    *slog.Logger
	Extractor Extractor // Optional, defaults to metadata.New
}

// Statistics contains statistics about the indexing operation
type Statistics struct {
	ProjectsIndexed int
	ProjectsFailed  int
	EmptyMetadata   int // Indexed from the name alone
	Duration        time.Duration
	ErrorMessages   []string
}

type pendingProject struct {
	project storage.UnindexedProject
	meta    *types.ProjectMetadata
}

// New creates a new Indexer instance
func New(store Store, emb embedder.Embedder, config Config) *Indexer {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = embedder.DefaultBatchSize
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Extractor == nil {
		config.Extractor = metadata.New(config.Logger)
	}

	return &Indexer{
		store:     store,
		embedder:  emb,
		extractor: config.Extractor,
		config:    config,
	}
}

// IndexUnindexed embeds every project that has no stored vector
func (idx *Indexer) IndexUnindexed(ctx context.Context) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer idx.lock.Release()

	return idx.indexUnindexed(ctx)
}

// Reindex drops all vectors and metadata, then indexes everything again
func (idx *Indexer) Reindex(ctx context.Context) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer idx.lock.Release()

	if err := idx.store.ClearVectorsAndMetadata(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear index: %w", err)
	}
	return idx.indexUnindexed(ctx)
}

func (idx *Indexer) indexUnindexed(ctx context.Context) (*Statistics, error) {
	startTime := time.Now()
	stats := &Statistics{
		ErrorMessages: make([]string, 0),
	}

	if idx.embedder == nil {
		return nil, fmt.Errorf("%w: no embedder available", embedder.ErrNoProviderEnabled)
	}

	projects, err := idx.store.Unindexed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unindexed projects: %w", err)
	}
	if len(projects) == 0 {
		stats.Duration = time.Since(startTime)
		return stats, nil
	}

	pending, err := idx.extractAll(ctx, projects)
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(pending); start += idx.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		end := min(start+idx.config.BatchSize, len(pending))
		if err := idx.indexBatch(ctx, pending[start:end], stats); err != nil {
			stats.Duration = time.Since(startTime)
			return stats, err
		}

		if idx.config.Progress != nil {
			idx.config.Progress(end, len(pending))
		}
	}

	stats.Duration = time.Since(startTime)
	idx.config.Logger.Debug("indexing complete",
		"indexed", stats.ProjectsIndexed,
		"failed", stats.ProjectsFailed,
		"duration", stats.Duration,
	)
	return stats, nil
}

// extractAll reads metadata concurrently; extraction only touches the filesystem
func (idx *Indexer) extractAll(ctx context.Context, projects []storage.UnindexedProject) ([]pendingProject, error) {
	pending := make([]pendingProject, len(projects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.config.Workers)
	for i, p := range projects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			meta := idx.extractor.Extract(p.Path)
			meta.EmbeddedText = metadata.BuildEmbeddingText(p.Name, meta)
			pending[i] = pendingProject{project: p, meta: meta}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pending, nil
}

// indexBatch embeds one batch and stores each project in its own transaction.
// An embedding failure aborts before anything from the batch is written.
func (idx *Indexer) indexBatch(ctx context.Context, batch []pendingProject, stats *Statistics) error {
	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = p.meta.EmbeddedText
	}

	resp, err := idx.embedder.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: texts})
	if err != nil {
		return fmt.Errorf("failed to embed batch: %w", err)
	}
	if len(resp.Embeddings) != len(batch) {
		return fmt.Errorf("%w: got %d, want %d", embedder.ErrCountMismatch, len(resp.Embeddings), len(batch))
	}

	for i, p := range batch {
		emb := resp.Embeddings[i]
		if emb == nil || len(emb.Vector) == 0 {
			stats.ProjectsFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", p.project.Path, errEmptyVector))
			idx.config.Logger.Warn("failed to index project", "path", p.project.Path, "error", errEmptyVector)
			continue
		}
		vector := &storage.Vector{
			Values:   emb.Vector,
			Provider: emb.Provider,
			Model:    emb.Model,
		}

		// Store failures are integrity errors and end the run
		if err := idx.storeProject(ctx, p, vector); err != nil {
			return fmt.Errorf("failed to store %s: %w", p.project.Path, err)
		}

		stats.ProjectsIndexed++
		if p.meta.IsEmpty() {
			stats.EmptyMetadata++
		}
	}
	return nil
}

var errEmptyVector = errors.New("embedder returned an empty vector")

// storeProject writes metadata and vector atomically
func (idx *Indexer) storeProject(ctx context.Context, p pendingProject, vector *storage.Vector) error {
	tx, err := idx.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.UpsertMetadata(ctx, p.project.ID, p.meta); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if err := tx.UpsertVector(ctx, p.project.ID, vector); err != nil {
		return fmt.Errorf("vector: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
