package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/goto/internal/app"
	"github.com/dshills/goto/internal/frecency"
	"github.com/dshills/goto/internal/searcher"
	"github.com/dshills/goto/internal/vcs"
	"github.com/dshills/goto/pkg/types"
)

const (
	defaultRecentLimit = 5
	topAccessed        = 5
	week               = 7 * 24 * time.Hour
)

func (e *Env) newRecentCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recently accessed projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(func(a *app.App) error {
				return e.showRecent(cmd.Context(), a, limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", defaultRecentLimit, "Number of recent projects to show")
	return cmd
}

func (e *Env) showRecent(ctx context.Context, a *app.App, limit int) error {
	projects, err := a.Store.GetAll(ctx)
	if err != nil {
		return err
	}

	accessed := projects[:0]
	for _, p := range projects {
		if p.AccessCount > 0 {
			accessed = append(accessed, p)
		}
	}
	searcher.SortProjects(accessed, searcher.SortRecent, e.Now())

	s := e.styles
	if len(accessed) == 0 {
		fmt.Fprintf(e.Stderr, "%s No recently accessed projects.\n", s.warnMark())
		fmt.Fprintf(e.Stderr, "  Use %s to navigate to a project first.\n", s.bold.Render("goto <query>"))
		return nil
	}

	fmt.Fprintf(e.Stderr, "%s\n\n", s.info.Render("Recent projects:"))
	for i, p := range accessed {
		if i >= limit {
			break
		}
		gitInfo := ""
		if info, ok := vcs.Status(ctx, a.Runner, p.Path); ok {
			gitInfo = " " + s.branch.Render(info.String())
		}
		fmt.Fprintf(e.Stderr, "  %s %s%s %s\n",
			s.warn.Render(fmt.Sprintf("%d.", i+1)),
			s.bold.Render(p.Name),
			gitInfo,
			s.dim.Render(p.Path))
	}
	return nil
}

func (e *Env) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show project access statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(func(a *app.App) error {
				projects, err := a.Store.GetAll(cmd.Context())
				if err != nil {
					return err
				}
				e.showStats(projects)
				return nil
			})
		},
	}
}

func (e *Env) showStats(projects []types.Project) {
	s := e.styles
	if len(projects) == 0 {
		fmt.Fprintf(e.Stderr, "%s No projects indexed yet.\n", s.failMark())
		return
	}

	now := e.Now()
	var (
		accessed int
		total    int64
		active   []types.Project
	)
	for i := range projects {
		p := &projects[i]
		if p.AccessCount > 0 {
			accessed++
		}
		total += p.AccessCount
		if frecency.ActiveWithin(p, week, now) {
			active = append(active, *p)
		}
	}

	fmt.Fprintf(e.Stderr, "%s\n\n", s.info.Render("Project Statistics"))
	fmt.Fprintf(e.Stderr, "  %s     %d\n", s.dim.Render("Total indexed:"), len(projects))
	fmt.Fprintf(e.Stderr, "  %s     %d\n", s.dim.Render("Ever accessed:"), accessed)
	fmt.Fprintf(e.Stderr, "  %s  %d\n", s.dim.Render("Active this week:"), len(active))
	fmt.Fprintf(e.Stderr, "  %s %d\n", s.dim.Render("Total navigations:"), total)

	byAccess := append([]types.Project(nil), projects...)
	sortByAccessCount(byAccess)
	if byAccess[0].AccessCount > 0 {
		fmt.Fprintf(e.Stderr, "\n%s\n\n", s.info.Render("Most accessed:"))
		for i, p := range byAccess {
			if i >= topAccessed || p.AccessCount == 0 {
				break
			}
			fmt.Fprintf(e.Stderr, "  %s %s\n", s.ok.Render(fmt.Sprintf("%3dx", p.AccessCount)), s.bold.Render(p.Name))
		}
	}

	if len(active) > 0 {
		searcher.SortProjects(active, searcher.SortRecent, now)
		fmt.Fprintf(e.Stderr, "\n%s\n\n", s.info.Render("Active this week:"))
		for i, p := range active {
			if i >= topAccessed {
				break
			}
			fmt.Fprintf(e.Stderr, "  %s %s\n", s.dim.Render(fmt.Sprintf("%6s", daysAgo(p.LastAccessed, now))), s.bold.Render(p.Name))
		}
	}
}

func daysAgo(t, now time.Time) string {
	days := int(now.Sub(t) / (24 * time.Hour))
	if days <= 0 {
		return "today"
	}
	return fmt.Sprintf("%dd ago", days)
}
