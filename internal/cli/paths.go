package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/goto/internal/app"
)

func (e *Env) newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Add a path to the scan list and scan it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := canonical(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("cannot add %s: %w", args[0], err)
			}
			if !info.IsDir() {
				return fmt.Errorf("cannot add %s: not a directory", args[0])
			}

			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}

			s := e.styles
			if cfg.AddScanPath(path) {
				if err := cfg.Save(e.ConfigPath); err != nil {
					return err
				}
				fmt.Fprintf(e.Stderr, "%s Added %s to scan paths\n", s.okMark(), s.bold.Render(path))
			} else {
				fmt.Fprintf(e.Stderr, "%s Path %s is already in the scan list\n", s.warnMark(), s.bold.Render(path))
			}

			a, err := e.openApp(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			fmt.Fprintf(e.Stderr, "%s Scanning...\n", s.busyMark())
			result, err := a.Rescan(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(e.Stderr, "%s Found %s projects\n", s.okMark(), s.bold.Render(fmt.Sprint(result.FromPaths)))
			return nil
		},
	}
}

func (e *Env) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>",
		Short: "Remove a path from the scan list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}

			path, err := canonical(args[0])
			if err != nil {
				return err
			}

			s := e.styles
			if !cfg.RemoveScanPath(path) && !cfg.RemoveScanPath(args[0]) {
				fmt.Fprintf(e.Stderr, "%s Path %s was not in the scan list\n", s.warnMark(), s.bold.Render(args[0]))
				return nil
			}
			if err := cfg.Save(e.ConfigPath); err != nil {
				return err
			}
			fmt.Fprintf(e.Stderr, "%s Removed %s from scan paths\n", s.okMark(), s.bold.Render(path))
			return nil
		},
	}
}

func (e *Env) newPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin <path>",
		Short: "Record a directory as a project regardless of discovery rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(func(a *app.App) error {
				path, err := a.Scanner.Pin(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(e.Stderr, "%s Pinned %s\n", e.styles.okMark(), e.styles.bold.Render(path))
				fmt.Fprintf(e.Stderr, "  Run %s to index it for semantic search.\n", e.styles.bold.Render("goto update"))
				return nil
			})
		},
	}
}
