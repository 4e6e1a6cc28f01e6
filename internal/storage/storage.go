package storage

import (
	"context"
	"time"

	"github.com/dshills/goto/pkg/types"
)

// Repository defines the interface for persisting projects, their metadata
// and their embedding vectors
type Repository interface {
	// Project operations
	UpsertBatch(ctx context.Context, paths []string, source types.Provenance) (int, error)
	MarkAccessed(ctx context.Context, path string) error
	GetAll(ctx context.Context) ([]types.Project, error)
	GetByID(ctx context.Context, id int64) (*types.Project, error)
	GetByPath(ctx context.Context, path string) (*types.Project, error)
	PruneMissing(ctx context.Context) (int, error)

	// Metadata operations
	UpsertMetadata(ctx context.Context, projectID int64, meta *types.ProjectMetadata) error
	GetMetadata(ctx context.Context, projectID int64) (*types.ProjectMetadata, error)
	EmbeddedText(ctx context.Context, projectID int64) (string, error)

	// Vector operations
	UpsertVector(ctx context.Context, projectID int64, vector *Vector) error
	Nearest(ctx context.Context, vector []float32, limit int) ([]VectorHit, error)
	Unindexed(ctx context.Context) ([]UnindexedProject, error)
	EmbeddingStats(ctx context.Context) (indexed int, total int, err error)
	ClearVectorsAndMetadata(ctx context.Context) error

	// Status operations
	Status(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx groups the writes that persist one indexed project atomically
type Tx interface {
	UpsertMetadata(ctx context.Context, projectID int64, meta *types.ProjectMetadata) error
	UpsertVector(ctx context.Context, projectID int64, vector *Vector) error
	Commit() error
	Rollback() error
}

// Vector is an embedding stored for a project
type Vector struct {
	Values    []float32
	Provider  string
	Model     string
	CreatedAt time.Time
}

// VectorHit is a nearest-neighbour result ordered by ascending L2 distance
type VectorHit struct {
	ProjectID int64
	Distance  float64
}

// UnindexedProject identifies a project that has no stored vector
type UnindexedProject struct {
	ID   int64
	Path string
	Name string
}

// Status contains statistics about the index
type Status struct {
	TotalProjects   int
	IndexedProjects int
	AccessedCount   int
	BySource        map[types.Provenance]int
	SchemaVersion   string
	BuildMode       string
	SizeBytes       int64
}
