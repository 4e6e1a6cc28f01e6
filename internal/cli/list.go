package cli

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dshills/goto/internal/app"
	"github.com/dshills/goto/internal/searcher"
	"github.com/dshills/goto/internal/vcs"
	"github.com/dshills/goto/pkg/types"
)

const defaultListLimit = 20

type listOptions struct {
	sort  string
	limit int
	all   bool
	git   bool
}

func (e *Env) newListCmd() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all indexed projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := searcher.ParseSortOrder(opts.sort)
			if err != nil {
				return err
			}
			return e.withApp(func(a *app.App) error {
				return e.listProjects(cmd.Context(), a, order, opts)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", string(searcher.SortFrecency), "Sort by: recent, frecency, name")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", defaultListLimit, "Maximum number of projects to show (ignored with --all)")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "Show all projects (no limit)")
	cmd.Flags().BoolVarP(&opts.git, "git", "g", true, "Show git branch and dirty status")
	return cmd
}

func (e *Env) listProjects(ctx context.Context, a *app.App, order searcher.SortOrder, opts listOptions) error {
	projects, err := a.Store.GetAll(ctx)
	if err != nil {
		return err
	}

	s := e.styles
	if len(projects) == 0 {
		fmt.Fprintf(e.Stderr, "%s No projects indexed yet.\n", s.failMark())
		fmt.Fprintf(e.Stderr, "  Run %s to discover projects.\n", s.bold.Render("goto update"))
		return nil
	}

	searcher.SortProjects(projects, order, e.Now())
	total := len(projects)
	if !opts.all && opts.limit < total {
		projects = projects[:max(opts.limit, 0)]
	}
	fmt.Fprintf(e.Stderr, "%s (showing %d/%d):\n\n", s.info.Render("Projects"), len(projects), total)

	branches := make([]string, len(projects))
	if opts.git {
		for i, p := range projects {
			if info, ok := vcs.Status(ctx, a.Runner, p.Path); ok {
				branches[i] = info.String()
			}
		}
	}

	for _, line := range formatRows(projects, branches) {
		fmt.Fprintln(e.Stdout, line)
	}
	return nil
}

// formatRows aligns name and branch columns by display width
func formatRows(projects []types.Project, branches []string) []string {
	nameWidth, branchWidth := 0, 0
	for i, p := range projects {
		nameWidth = max(nameWidth, runewidth.StringWidth(p.Name))
		branchWidth = max(branchWidth, runewidth.StringWidth(branches[i]))
	}

	rows := make([]string, len(projects))
	for i, p := range projects {
		var b strings.Builder
		b.WriteString("  ")
		b.WriteString(runewidth.FillRight(p.Name, nameWidth))
		if branchWidth > 0 {
			b.WriteString("  ")
			b.WriteString(runewidth.FillRight(branches[i], branchWidth))
		}
		b.WriteString("  ")
		b.WriteString(p.Path)
		rows[i] = b.String()
	}
	return rows
}

// sortByAccessCount orders by access count descending, then name
func sortByAccessCount(projects []types.Project) {
	slices.SortStableFunc(projects, func(a, b types.Project) int {
		if c := cmp.Compare(b.AccessCount, a.AccessCount); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}
