package app

import (
	"context"
	"fmt"

	"github.com/dshills/goto/internal/indexer"
	"github.com/dshills/goto/pkg/types"
)

// UpdateOptions controls a full refresh
type UpdateOptions struct {
	Force bool // drop all vectors and re-embed every project
	// OnScanned runs after discovery, before indexing starts
	OnScanned func(*types.ScanResult)
	Progress  func(done, total int)
}

// UpdateReport is the outcome of Update
type UpdateReport struct {
	Scan  *types.ScanResult
	Index *indexer.Statistics
	// IndexSkipped is set when no embedder was available
	IndexSkipped error
}

// Update scans every source, prunes vanished projects, then embeds the
// projects that have no vector yet. It holds the database file lock for
// the whole run so concurrent updates fail fast.
func (a *App) Update(ctx context.Context, opts UpdateOptions) (*UpdateReport, error) {
	if a.Lock != nil {
		ok, err := a.Lock.TryLock()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, indexer.ErrIndexInProgress
		}
		defer func() { _ = a.Lock.Unlock() }()
	}

	scan, err := a.Scanner.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	for _, w := range scan.Warnings {
		a.logger.Warn("scan warning", "detail", w)
	}
	if opts.OnScanned != nil {
		opts.OnScanned(scan)
	}

	report := &UpdateReport{Scan: scan}
	if a.Embedder == nil {
		report.IndexSkipped = a.EmbedderErr
		return report, nil
	}

	idx := indexer.New(a.Store, a.Embedder, indexer.Config{
		BatchSize: a.Config.Embedding.BatchSize,
		Progress:  opts.Progress,
		Logger:    a.logger,
	})

	if opts.Force {
		report.Index, err = idx.Reindex(ctx)
	} else {
		report.Index, err = idx.IndexUnindexed(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("indexing failed: %w", err)
	}
	return report, nil
}
