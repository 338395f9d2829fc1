// Package main provides the entry point for the truckfactor CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/truckfactor/cmd/truckfactor/commands"
	"github.com/Sumatoshi-tech/truckfactor/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "truckfactor",
		Short: "Truckfactor - knowledge ownership analysis for git repositories",
		Long: `Truckfactor estimates how many developers a repository can lose
before half of its code knowledge is gone.

Commands:
  run       Blame the repository and compute its truck factor
  logs      Generate blame logs for the repository files at HEAD
  compute   Compute the truck factor from stored blame logs
  mailmap   Build and inspect author identity maps
  mcp       Serve the analysis over the Model Context Protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands.
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewLogsCommand())
	rootCmd.AddCommand(commands.NewComputeCommand())
	rootCmd.AddCommand(commands.NewMailmapCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "truckfactor %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
