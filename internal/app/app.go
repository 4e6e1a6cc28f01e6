// Package app wires configuration, storage, discovery, indexing and ranking
// into the single engine shared by the CLI and the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/goto/internal/command"
	"github.com/dshills/goto/internal/config"
	"github.com/dshills/goto/internal/embedder"
	"github.com/dshills/goto/internal/indexer"
	"github.com/dshills/goto/internal/scanner"
	"github.com/dshills/goto/internal/searcher"
	"github.com/dshills/goto/internal/storage"
	"github.com/dshills/goto/pkg/types"
)

// commandTimeout bounds mdfind and git invocations
const commandTimeout = 10 * time.Second

// Options configures Open. Zero values select the production defaults.
type Options struct {
	Config       *config.Config
	ConfigPath   string
	DatabasePath string // overrides the configured database, ":memory:" in tests
	Logger       *slog.Logger
	Runner       command.Runner
	SystemIndex  scanner.SystemIndex
	// Embedder replaces the configured provider when set
	Embedder embedder.Embedder
}

// App holds every long-lived component for one invocation
type App struct {
	Config      *config.Config
	ConfigPath  string
	DBPath      string
	Store       *storage.SQLiteStorage
	Embedder    embedder.Embedder // nil when EmbedderErr is set
	EmbedderErr error
	Scanner     *scanner.Scanner
	Searcher    *searcher.Searcher
	Runner      command.Runner
	Lock        *indexer.FileLock

	logger *slog.Logger
}

// Open builds the engine. An embedder that cannot be constructed is not
// fatal: the error is kept and reported only by operations that need it.
func Open(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Runner == nil {
		opts.Runner = command.NewExecRunner(commandTimeout, opts.Logger)
	}
	cfg := opts.Config

	dbPath := opts.DatabasePath
	if dbPath == "" {
		var err error
		if dbPath, err = cfg.DatabaseFile(); err != nil {
			return nil, err
		}
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &App{
		Config:     cfg,
		ConfigPath: opts.ConfigPath,
		DBPath:     dbPath,
		Store:      store,
		Runner:     opts.Runner,
		logger:     opts.Logger,
	}
	if dbPath != ":memory:" {
		a.Lock = indexer.NewFileLock(dbPath)
	}

	if opts.Embedder != nil {
		a.Embedder = opts.Embedder
	} else if emb, err := embedder.New(cfg.EmbedderConfig()); err != nil {
		a.EmbedderErr = err
		opts.Logger.Debug("embedder unavailable", "error", err)
	} else {
		a.Embedder = emb
	}

	if err := a.buildScanner(opts.SystemIndex); err != nil {
		_ = store.Close()
		return nil, err
	}

	a.Searcher = searcher.New(store, a.Embedder, searcher.Options{
		Boosts:      boostsFromConfig(cfg.Ranking),
		EmbedderErr: a.EmbedderErr,
		Logger:      opts.Logger,
	})

	return a, nil
}

func (a *App) buildScanner(index scanner.SystemIndex) error {
	roots, err := a.Config.ExpandedScanPaths()
	if err != nil {
		return err
	}
	searchRoots, err := a.Config.ExpandedSpotlightPaths()
	if err != nil {
		return err
	}

	options := []scanner.Option{scanner.WithLogger(a.logger)}
	if a.Config.UseSpotlight {
		if index == nil {
			index = scanner.NewDefaultSystemIndex(a.Runner, a.logger)
		}
		if index != nil {
			options = append(options, scanner.WithSystemIndex(index))
		}
	}

	a.Scanner = scanner.New(a.Store, scanner.Options{
		Roots:       roots,
		MaxDepth:    a.Config.MaxDepth,
		Excludes:    a.Config.ExcludePatterns,
		SearchRoots: searchRoots,
	}, options...)
	return nil
}

func boostsFromConfig(r config.RankingConfig) searcher.Boosts {
	b := searcher.DefaultBoosts()
	b.ExactName = r.ExactNameBoost
	b.Substring = r.SubstringBoost
	b.Metadata = r.MetadataBoost
	b.MinConfidence = r.MinConfidence
	return b
}

// Close releases the embedder and the database
func (a *App) Close() error {
	var errs []error
	if a.Embedder != nil {
		errs = append(errs, a.Embedder.Close())
	}
	errs = append(errs, a.Store.Close())
	return errors.Join(errs...)
}

// Rescan rebuilds the scanner from the current config and walks the
// configured paths only. Used after the scan path list changes.
func (a *App) Rescan(ctx context.Context) (*types.ScanResult, error) {
	if err := a.buildScanner(nil); err != nil {
		return nil, err
	}
	return a.Scanner.ScanPaths(ctx)
}
