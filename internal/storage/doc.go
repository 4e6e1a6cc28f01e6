// Package storage provides SQLite-based persistence for the project index.
//
// The storage layer manages:
//   - Project rows (path, name, access statistics, provenance)
//   - Extracted project metadata and the text that was embedded
//   - One embedding vector per project
//
// # Database Schema
//
// Tables:
//   - projects: one row per discovered directory, path is unique
//   - project_metadata: description, README excerpt, tech stack, hints
//   - project_embeddings: little-endian float32 vectors
//   - schema_version: applied migrations
//
// Metadata and vectors reference projects with ON DELETE CASCADE, so pruning
// a project removes everything derived from it.
//
// # Basic Usage
//
//	repo, err := storage.NewSQLiteStorage(dbPath)
//	if err != nil {
//	    return err
//	}
//	defer repo.Close()
//
//	n, err := repo.UpsertBatch(ctx, paths, types.SourceScan)
//	pruned, err := repo.PruneMissing(ctx)
//
// # Provenance
//
// UpsertBatch never downgrades a manual project and never resets access
// statistics. Re-discovering a path only refreshes its modification time and,
// unless it was added manually, its source.
//
// # Transactions
//
// Batched writes (UpsertBatch, PruneMissing, ClearVectorsAndMetadata) each run
// in a single transaction. The indexer persists a project's metadata and
// vector together through BeginTx:
//
//	tx, err := repo.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if err := tx.UpsertMetadata(ctx, id, meta); err != nil {
//	    return err
//	}
//	if err := tx.UpsertVector(ctx, id, vec); err != nil {
//	    return err
//	}
//	return tx.Commit()
//
// # Vector Search
//
// Nearest returns project ids ordered by ascending L2 distance. Builds with
// the sqlite_vec tag compute distances in SQL with vec_distance_l2; the
// default pure Go build scans all vectors and ranks them in Go. Both return
// identical orderings.
//
// # Build Modes
//
//	CGO_ENABLED=0 go build ./cmd/goto                         # modernc.org/sqlite
//	CGO_ENABLED=1 go build -tags sqlite_vec ./cmd/goto        # mattn/go-sqlite3 + sqlite-vec
package storage
