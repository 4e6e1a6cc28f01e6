package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/goto/internal/app"
	"github.com/dshills/goto/internal/searcher"
)

const suiteFile = "tests.toml"

func (e *Env) newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run ranking tests from tests.toml next to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := e.styles
			path := filepath.Join(filepath.Dir(e.ConfigPath), suiteFile)

			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				if err := searcher.WriteExampleSuite(path); err != nil {
					return err
				}
				fmt.Fprintf(e.Stderr, "%s Created example test file: %s\n", s.okMark(), s.bold.Render(path))
				fmt.Fprintf(e.Stderr, "  Edit it and run %s again\n", s.bold.Render("goto test"))
				return nil
			}

			suite, err := searcher.LoadSuite(path)
			if err != nil {
				return err
			}
			if len(suite.Tests) == 0 {
				fmt.Fprintf(e.Stderr, "%s No tests defined in %s\n", s.warnMark(), path)
				return nil
			}

			return e.withApp(func(a *app.App) error {
				report, err := a.Searcher.RunSuite(cmd.Context(), suite)
				if err != nil {
					return err
				}
				e.printSuite(report)
				if !report.OK() {
					return exitCode(1)
				}
				return nil
			})
		},
	}
}

func (e *Env) printSuite(report *searcher.SuiteReport) {
	s := e.styles
	for _, r := range report.Results {
		top := "(none)"
		if len(r.Top) > 0 {
			top = r.Top[0]
		}
		if r.Passed {
			fmt.Fprintf(e.Stderr, "%s %q → %s %s\n", s.okMark(), r.Case.Query, s.bold.Render(top),
				s.dim.Render(fmt.Sprintf("(found: %s)", strings.Join(r.Case.Expected, ", "))))
			continue
		}
		fmt.Fprintf(e.Stderr, "%s %q → %s %s\n", s.failMark(), r.Case.Query, s.bold.Render(top),
			s.fail.Render(fmt.Sprintf("(missing: %s)", strings.Join(r.Missing, ", "))))
		for i, name := range r.Top {
			fmt.Fprintf(e.Stderr, "    %d. %s\n", i+1, name)
		}
	}

	fmt.Fprintln(e.Stderr)
	total := report.Passed + report.Failed
	if report.OK() {
		fmt.Fprintf(e.Stderr, "%s All %d tests passed\n", s.okMark(), total)
		return
	}
	fmt.Fprintf(e.Stderr, "%s %d/%d tests failed\n", s.failMark(), report.Failed, total)
}
