// Package cli implements the goto command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/goto/internal/app"
	"github.com/dshills/goto/internal/command"
	"github.com/dshills/goto/internal/config"
	"github.com/dshills/goto/internal/embedder"
	"github.com/dshills/goto/internal/scanner"
	"github.com/dshills/goto/internal/searcher"
	"github.com/dshills/goto/internal/storage"
	"github.com/dshills/goto/pkg/types"
)

// PostCommandMarker prefixes the post command on stderr; the shell wrapper
// runs whatever follows it after changing directory.
const PostCommandMarker = "__GOTO_POST_CMD__:"

const recentShortcut = "-"

// Env carries the process surroundings so commands can be exercised in tests
type Env struct {
	Stdout       io.Writer
	Stderr       io.Writer
	ConfigPath   string
	DatabasePath string // empty uses the configured path
	Home         string
	Interactive  bool
	Now          func() time.Time

	// Optional overrides
	Runner      command.Runner
	SystemIndex scanner.SystemIndex
	Embedder    embedder.Embedder

	logger *slog.Logger
	styles *styles
}

// exitCode ends the process with code after the command printed its own
// diagnostics
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// DefaultEnv returns an Env bound to the real process
func DefaultEnv() (*Env, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	home, _ := os.UserHomeDir()
	return &Env{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		ConfigPath:  path,
		Home:        home,
		Interactive: term.IsTerminal(int(os.Stderr.Fd())),
		Now:         time.Now,
	}, nil
}

// Execute runs the goto command line and returns the process exit code
func Execute(version string) int {
	env, err := DefaultEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Run(ctx, env, version, os.Args[1:])
}

// Run executes args against env and returns the exit code
func Run(ctx context.Context, env *Env, version string, args []string) int {
	root := NewRootCmd(env, version)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}
	fmt.Fprintf(env.Stderr, "%s %s\n", env.styles.failMark(), err)
	return 1
}

// NewRootCmd builds the command tree
func NewRootCmd(env *Env, version string) *cobra.Command {
	if env.Now == nil {
		env.Now = time.Now
	}
	env.styles = newStyles(env.Stderr)
	env.logger = newLogger(env.Stderr, false)

	var (
		all    bool
		limit  int
		debug  bool
		cdOnly bool
	)

	root := &cobra.Command{
		Use:   "goto [query...]",
		Short: "Quickly navigate to projects with fuzzy and semantic search",
		Long: `goto resolves a project name or description to a directory.

  goto kafka            print the best match for the shell wrapper to cd into
  goto -a cache rust    list ranked matches
  goto -                show recent projects`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env.logger = newLogger(env.Stderr, debug)
			slog.SetDefault(env.logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				fmt.Fprintf(env.Stderr, "%s goto <query> or goto --help for more options\n", env.styles.warn.Render("Usage:"))
				return exitCode(1)
			}

			if query == recentShortcut {
				return env.withApp(func(a *app.App) error {
					return env.showRecent(cmd.Context(), a, defaultRecentLimit)
				})
			}
			return env.withApp(func(a *app.App) error {
				if all {
					return env.showMatches(cmd.Context(), a, query, limit)
				}
				return env.resolve(cmd.Context(), a, query, cdOnly)
			})
		},
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetVersionTemplate(fmt.Sprintf("goto {{.Version}}\nstorage: %s (driver %s, vector extension %t)\n",
		storage.BuildMode, storage.DriverName, storage.VectorExtensionAvailable))

	root.Flags().BoolVarP(&all, "all", "a", false, "Show all matches instead of just the best one")
	root.Flags().IntVarP(&limit, "limit", "n", 10, "Number of results to show (with -a)")
	root.Flags().BoolVarP(&cdOnly, "cd-only", "c", false, "Just cd, don't run the post command")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Show debug information")

	root.AddCommand(
		env.newRecentCmd(),
		env.newStatsCmd(),
		env.newUpdateCmd(),
		env.newListCmd(),
		env.newAddCmd(),
		env.newRemoveCmd(),
		env.newPinCmd(),
		env.newConfigCmd(),
		env.newTestCmd(),
		env.newMCPCmd(version),
	)
	return root
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads and validates the configuration file
func (e *Env) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(e.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", e.ConfigPath, err)
	}
	return cfg, nil
}

// openApp loads the configuration and opens the engine
func (e *Env) openApp(cfg *config.Config) (*app.App, error) {
	return app.Open(app.Options{
		Config:       cfg,
		ConfigPath:   e.ConfigPath,
		DatabasePath: e.DatabasePath,
		Logger:       e.logger,
		Runner:       e.Runner,
		SystemIndex:  e.SystemIndex,
		Embedder:     e.Embedder,
	})
}

// withApp opens the engine for the duration of fn
func (e *Env) withApp(fn func(*app.App) error) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	a, err := e.openApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}

// resolve prints the best match path on stdout
func (e *Env) resolve(ctx context.Context, a *app.App, query string, cdOnly bool) error {
	res, err := a.Searcher.Resolve(ctx, query)
	if err != nil {
		return err
	}

	s := e.styles
	if !res.Resolved() {
		switch res.Reason {
		case types.ReasonEmptyIndex:
			fmt.Fprintf(e.Stderr, "%s No projects indexed yet.\n", s.failMark())
			fmt.Fprintf(e.Stderr, "  Run %s to discover projects.\n", s.bold.Render("goto update"))
		case types.ReasonNoVectors:
			fmt.Fprintf(e.Stderr, "%s No projects matching '%s'\n", s.failMark(), s.bold.Render(query))
			fmt.Fprintf(e.Stderr, "  Semantic search is not indexed yet. Run %s to enable it.\n", s.bold.Render("goto update"))
		default:
			fmt.Fprintf(e.Stderr, "%s No projects matching '%s' %s\n", s.failMark(), s.bold.Render(query),
				s.dim.Render(fmt.Sprintf("(best: %.0f%%)", res.Best)))
			fmt.Fprintf(e.Stderr, "  Try a different query or run %s to see all projects.\n", s.bold.Render("goto list"))
		}
		return exitCode(1)
	}

	fmt.Fprintln(e.Stdout, res.Path())
	if res.Semantic {
		fmt.Fprintf(e.Stderr, "%s %s %s\n", s.semantic.Render("◆"), s.bold.Render(res.Project.Name),
			s.dim.Render(fmt.Sprintf("(semantic: %.0f%%)", res.Score)))
	}
	if a.Config.PostCommand != "" && !cdOnly {
		fmt.Fprintf(e.Stderr, "%s%s\n", PostCommandMarker, a.Config.PostCommand)
	}
	return nil
}

// showMatches prints ranked semantic matches on stderr
func (e *Env) showMatches(ctx context.Context, a *app.App, query string, limit int) error {
	s := e.styles
	results, err := a.Searcher.List(ctx, query, limit)
	if errors.Is(err, searcher.ErrNoVectors) {
		fmt.Fprintf(e.Stderr, "%s No projects indexed for semantic search.\n", s.failMark())
		fmt.Fprintf(e.Stderr, "  Run %s to index projects.\n", s.bold.Render("goto update"))
		return exitCode(1)
	}
	if err != nil {
		return err
	}

	names := searcher.DisplayNames(results, e.Home)
	for i, r := range results {
		fmt.Fprintf(e.Stderr, "%s %s %s\n",
			s.number.Render(fmt.Sprintf("%d.", i+1)),
			s.bold.Render(names[i]),
			s.dim.Render(fmt.Sprintf("(%.0f%%)", r.Score)))
	}
	return nil
}

// canonical resolves path to an absolute, symlink-free directory
func canonical(path string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}
