package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/truckfactor/internal/config"
	"github.com/Sumatoshi-tech/truckfactor/internal/decay"
	"github.com/Sumatoshi-tech/truckfactor/internal/logstore"
	"github.com/Sumatoshi-tech/truckfactor/internal/observability"
	"github.com/Sumatoshi-tech/truckfactor/internal/report"
	"github.com/Sumatoshi-tech/truckfactor/internal/runner"
)

// computeFlags are the selection knobs shared by compute and run.
type computeFlags struct {
	metric       string
	criticalLoss float64
	format       string
	plotPath     string
}

func (cf *computeFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVar(&cf.metric, "metric", "", "tally to walk: knowledge or authorship")
	flags.Float64Var(&cf.criticalLoss, "critical-loss", 0, "surviving share threshold between 0 and 1")
	flags.StringVarP(&cf.format, "format", "f", "", "output format: console, json or yaml")
	flags.StringVar(&cf.plotPath, "plot", "", "write an HTML knowledge chart to this path")
}

func (cf *computeFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("metric") {
		cfg.Analysis.Metric = cf.metric
	}

	if flags.Changed("critical-loss") {
		cfg.Analysis.CriticalLoss = cf.criticalLoss
	}

	if flags.Changed("format") {
		cfg.Report.Format = cf.format
	}

	if flags.Changed("plot") {
		cfg.Report.Plot = cf.plotPath
	}

	return cfg.Validate()
}

// NewComputeCommand creates the compute command: fold previously
// generated blame logs into the truck factor.
func NewComputeCommand() *cobra.Command {
	var (
		flags    commonFlags
		selector computeFlags
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute the truck factor from stored blame logs",
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

			result, err := compute(ctx, cfg, rt)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), cfg, result)
		},
	}

	flags.register(cmd)
	selector.register(cmd)

	return cmd
}

// compute runs the fold stage over the configured log store. The
// reference instant is fixed once per invocation so every fragment
// decays against the same clock.
func compute(ctx context.Context, cfg *config.Config, rt *runtime) (*runner.Result, error) {
	resolver, err := loadResolver(cfg.Analysis.Mailmap)
	if err != nil {
		return nil, err
	}

	model := decay.Model{
		Asymptote:        cfg.Decay.Asymptote,
		InitialRetention: cfg.Decay.InitialRetention,
		Curvature:        cfg.Decay.Curvature,
		Reference:        time.Now().UTC(),
	}

	return runner.Compute(ctx, runner.ComputeOptions{
		Store:        logstore.New(cfg.Logs.Dir, cfg.Logs.Compress),
		Resolver:     resolver,
		Model:        model,
		Metric:       cfg.Analysis.Metric,
		CriticalLoss: cfg.Analysis.CriticalLoss,
		Workers:      cfg.Logs.Workers,
		Logger:       rt.providers.Logger,
		Tracer:       rt.providers.Tracer,
	})
}

// render writes the result in the configured format and, when
// requested, the HTML chart.
func render(w io.Writer, cfg *config.Config, result *runner.Result) error {
	switch cfg.Report.Format {
	case config.FormatJSON:
		if err := report.WriteJSON(w, result); err != nil {
			return err
		}
	case config.FormatYAML:
		if err := report.WriteYAML(w, result); err != nil {
			return err
		}
	default:
		report.RenderConsole(w, result)
	}

	if cfg.Report.Plot != "" {
		file, err := os.Create(cfg.Report.Plot)
		if err != nil {
			return fmt.Errorf("create plot file: %w", err)
		}
		defer file.Close()

		if err := report.WritePlot(file, result); err != nil {
			return err
		}
	}

	return nil
}
