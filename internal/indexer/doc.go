// Package indexer turns discovered projects into searchable vectors.
//
// For every project without a stored vector the indexer extracts metadata
// (concurrently, since it only reads the filesystem), builds the embedding
// text, embeds texts in batches, and writes metadata plus vector for each
// project in one transaction.
//
// # Basic Usage
//
//	idx := indexer.New(repo, emb, indexer.Config{BatchSize: 32})
//
//	stats, err := idx.IndexUnindexed(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Indexed %d projects in %v\n", stats.ProjectsIndexed, stats.Duration)
//
// # Failure Semantics
//
// An embedding failure is fatal to the run: nothing from the failed batch is
// stored, and earlier batches stay committed. A storage error on a single
// project rolls back that project only and is reported in
// Statistics.ErrorMessages. Begin and commit failures abort the run.
//
// # Locking
//
// IndexLock rejects overlapping runs within a process with
// ErrIndexInProgress. FileLock (an flock on <db>.lock) does the same across
// processes for commands that write to the index.
package indexer
