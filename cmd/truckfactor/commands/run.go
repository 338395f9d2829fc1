package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/truckfactor/internal/config"
	"github.com/Sumatoshi-tech/truckfactor/internal/observability"
	"github.com/Sumatoshi-tech/truckfactor/internal/report"
)

// NewRunCommand creates the run command: the end-to-end pipeline of
// clone (when configured), blame and compute in one invocation.
func NewRunCommand() *cobra.Command {
	var (
		flags    commonFlags
		selector computeFlags
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Blame the repository and compute its truck factor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := selector.apply(cmd, cfg); err != nil {
				return err
			}

			rt, err := flags.setup(observability.ModeCLI)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			defer rt.shutdown(ctx)

			_, fileFilter, err := generateLogs(ctx, cfg, rt)
			if err != nil {
				return err
			}

			result, err := compute(ctx, cfg, rt)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if err := render(out, cfg, result); err != nil {
				return err
			}

			if cfg.Report.Format == config.FormatConsole {
				report.RenderOmitted(out, fileFilter.Omitted())
			}

			return nil
		},
	}

	flags.register(cmd)
	selector.register(cmd)

	return cmd
}
