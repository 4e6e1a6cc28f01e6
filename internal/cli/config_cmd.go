package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (e *Env) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			dbPath := e.DatabasePath
			if dbPath == "" {
				if dbPath, err = cfg.DatabaseFile(); err != nil {
					return err
				}
			}

			s := e.styles
			w := e.Stderr
			fmt.Fprintf(w, "%s\n\n", s.info.Render("Configuration"))
			fmt.Fprintf(w, "  %s %s\n", s.dim.Render("Config file:"), e.ConfigPath)
			fmt.Fprintf(w, "  %s    %s\n\n", s.dim.Render("Database:"), dbPath)

			mark := s.failMark()
			if cfg.UseSpotlight {
				mark = s.okMark()
			}
			fmt.Fprintf(w, "  %s %s %t\n", mark, s.bold.Render("Spotlight:"), cfg.UseSpotlight)
			fmt.Fprintf(w, "  %s\n", s.dim.Render("Spotlight paths:"))
			for _, p := range cfg.SpotlightPaths {
				fmt.Fprintf(w, "    %s %s\n", s.dim.Render("•"), p)
			}

			fmt.Fprintf(w, "\n  %s\n", s.bold.Render("Scan paths:"))
			if len(cfg.ScanPaths) == 0 {
				fmt.Fprintf(w, "    %s\n", s.dim.Render("(none - use 'goto add <path>' to add paths)"))
			}
			for _, p := range cfg.ScanPaths {
				fmt.Fprintf(w, "    %s %s\n", s.dim.Render("•"), p)
			}

			postCmd := cfg.PostCommand
			if postCmd == "" {
				postCmd = s.dim.Render("(none)")
			}
			fmt.Fprintf(w, "\n  %s    %d\n", s.dim.Render("Max depth:"), cfg.MaxDepth)
			fmt.Fprintf(w, "  %s %s\n", s.dim.Render("Post command:"), postCmd)
			fmt.Fprintf(w, "  %s     %v\n", s.dim.Render("Excludes:"), cfg.ExcludePatterns)

			provider := cfg.Embedding.Provider
			if cfg.Embedding.Model != "" {
				provider += " (" + cfg.Embedding.Model + ")"
			}
			fmt.Fprintf(w, "  %s    %s\n", s.dim.Render("Embedding:"), provider)
			return nil
		},
	}
}
