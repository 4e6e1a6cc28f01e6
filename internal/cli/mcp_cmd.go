package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/goto/internal/app"
	"github.com/dshills/goto/internal/mcp"
)

func (e *Env) newMCPCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve project resolution to MCP clients over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(func(a *app.App) error {
				return mcp.NewServer(a, version).Serve(cmd.Context())
			})
		},
	}
}
