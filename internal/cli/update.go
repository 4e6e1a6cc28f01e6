package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/goto/internal/app"
	"github.com/dshills/goto/internal/indexer"
	"github.com/dshills/goto/pkg/types"
)

func (e *Env) newUpdateCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Scan for projects and index them for semantic search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(func(a *app.App) error {
				return e.update(cmd, a, force)
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-embed every project")
	return cmd
}

func (e *Env) update(cmd *cobra.Command, a *app.App, force bool) error {
	s := e.styles
	reporter := newReporter(e.Stderr, e.Interactive)

	stop := reporter.Spin("Scanning for projects...")
	stopped := false
	onScanned := func(scan *types.ScanResult) {
		stop()
		stopped = true
		fmt.Fprintf(e.Stderr, "%s Found %s projects %s\n", s.okMark(),
			s.bold.Render(fmt.Sprint(scan.Total())),
			s.dim.Render(fmt.Sprintf("(%d from paths, %d from Spotlight)", scan.FromPaths, scan.FromSystemIndex)))
		if scan.Pruned > 0 {
			fmt.Fprintf(e.Stderr, "%s Removed %s stale entries\n", s.okMark(), s.bold.Render(fmt.Sprint(scan.Pruned)))
		}
		if force {
			fmt.Fprintf(e.Stderr, "%s Clearing existing embeddings...\n", s.busyMark())
		}
	}

	report, err := a.Update(cmd.Context(), app.UpdateOptions{
		Force:     force,
		OnScanned: onScanned,
		Progress:  progressFunc(reporter),
	})
	if !stopped {
		stop()
	}
	reporter.Finish()

	if errors.Is(err, indexer.ErrIndexInProgress) {
		fmt.Fprintf(e.Stderr, "%s Another update is already running\n", s.warnMark())
		return exitCode(1)
	}
	if err != nil {
		return err
	}

	if report.IndexSkipped != nil {
		fmt.Fprintf(e.Stderr, "%s Semantic indexing skipped: %v\n", s.warnMark(), report.IndexSkipped)
		return nil
	}

	stats := report.Index
	if stats.ProjectsIndexed == 0 && stats.ProjectsFailed == 0 {
		fmt.Fprintf(e.Stderr, "%s All projects already indexed\n", s.okMark())
		return nil
	}
	fmt.Fprintf(e.Stderr, "%s Indexed %s projects for semantic search %s\n", s.okMark(),
		s.bold.Render(fmt.Sprint(stats.ProjectsIndexed)),
		s.dim.Render(fmt.Sprintf("(%s)", stats.Duration.Round(10*time.Millisecond))))
	if stats.ProjectsFailed > 0 {
		fmt.Fprintf(e.Stderr, "%s %d projects could not be indexed\n", s.warnMark(), stats.ProjectsFailed)
		for _, msg := range stats.ErrorMessages {
			e.logger.Debug("index failure", "detail", msg)
		}
	}
	return nil
}
