package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/truckfactor/internal/mcp"
	"github.com/Sumatoshi-tech/truckfactor/internal/observability"
)

// NewMCPCommand creates the mcp command, exposing the analysis as an
// MCP server over stdio.
func NewMCPCommand() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the truck factor analysis over the Model Context Protocol",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := flags.setup(observability.ModeMCP)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			defer rt.shutdown(ctx)

			server := mcp.NewServer(mcp.ServerDeps{
				Logger: rt.providers.Logger,
				Tracer: rt.providers.Tracer,
			})

			return server.Run(ctx)
		},
	}

	flags.register(cmd)

	return cmd
}
