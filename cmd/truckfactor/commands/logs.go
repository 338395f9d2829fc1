package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/truckfactor/internal/config"
	"github.com/Sumatoshi-tech/truckfactor/internal/filter"
	"github.com/Sumatoshi-tech/truckfactor/internal/logstore"
	"github.com/Sumatoshi-tech/truckfactor/internal/observability"
	"github.com/Sumatoshi-tech/truckfactor/internal/runner"
	"github.com/Sumatoshi-tech/truckfactor/pkg/gitlib"
)

// NewLogsCommand creates the logs command: blame every admitted file at
// HEAD into the log store, without computing anything.
func NewLogsCommand() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Generate blame logs for the repository files at HEAD",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}

			rt, err := flags.setup(observability.ModeCLI)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			defer rt.shutdown(ctx)

			stored, _, err := generateLogs(ctx, cfg, rt)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d blame logs to %s\n", stored, cfg.Logs.Dir)

			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

// generateLogs resolves the repository (cloning when a URL is
// configured) and runs the blame stage. It returns the number of
// stored logs and the filter for omitted reporting.
func generateLogs(ctx context.Context, cfg *config.Config, rt *runtime) (int, *filter.Filter, error) {
	repoPath := cfg.Repository.Path

	if cfg.Repository.URL != "" {
		rt.providers.Logger.InfoContext(ctx, "cloning repository",
			"url", cfg.Repository.URL, "dir", cfg.Repository.CloneDir)

		repo, err := gitlib.Clone(cfg.Repository.URL, cfg.Repository.CloneDir)
		if err != nil {
			return 0, nil, err
		}

		repo.Free()

		repoPath = cfg.Repository.CloneDir
	}

	metrics, err := observability.NewAnalysisMetrics(rt.providers.Meter)
	if err != nil {
		return 0, nil, err
	}

	fileFilter := filter.New(cfg.Analysis.IncludeExtensions, cfg.Analysis.ExcludeExtensions)

	stored, err := runner.GenerateLogs(ctx, runner.GenerateOptions{
		RepoPath: repoPath,
		Store:    logstore.New(cfg.Logs.Dir, cfg.Logs.Compress),
		Filter:   fileFilter,
		Workers:  cfg.Logs.Workers,
		Logger:   rt.providers.Logger,
		Tracer:   rt.providers.Tracer,
		Metrics:  metrics,
	})
	if err != nil {
		return 0, nil, err
	}

	return stored, fileFilter, nil
}
