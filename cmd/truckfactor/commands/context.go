// Package commands implements the CLI command handlers.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/truckfactor/internal/config"
	"github.com/Sumatoshi-tech/truckfactor/internal/mailmap"
	"github.com/Sumatoshi-tech/truckfactor/internal/observability"
	"github.com/Sumatoshi-tech/truckfactor/pkg/version"
)

// commonFlags are the flags shared by the pipeline commands.
type commonFlags struct {
	configPath string

	repoPath string
	repoURL  string

	logsDir     string
	compress    bool
	workers     int
	mailmapPath string

	includeExtensions []string
	excludeExtensions []string

	otlpEndpoint    string
	otlpInsecure    bool
	diagnosticsAddr string
	logJSON         bool
	verbose         bool
}

func (cf *commonFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVarP(&cf.configPath, "config", "c", "", "config file path (default: .truckfactor.yaml in CWD or $HOME)")
	flags.StringVarP(&cf.repoPath, "repo", "r", "", "local repository path")
	flags.StringVar(&cf.repoURL, "url", "", "remote repository URL to clone before analysis")
	flags.StringVar(&cf.logsDir, "logs-dir", "", "blame log store directory")
	flags.BoolVar(&cf.compress, "compress", true, "LZ4-compress stored blame logs")
	flags.IntVarP(&cf.workers, "workers", "w", 0, "number of concurrent workers")
	flags.StringVarP(&cf.mailmapPath, "mailmap", "m", "", "mailmap file for identity resolution")
	flags.StringSliceVar(&cf.includeExtensions, "include", nil, "only analyze files with these extensions")
	flags.StringSliceVar(&cf.excludeExtensions, "exclude", nil, "skip files with these extensions")
	flags.StringVar(&cf.otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC collector address (empty disables export)")
	flags.BoolVar(&cf.otlpInsecure, "otlp-insecure", false, "disable TLS for the OTLP connection")
	flags.StringVar(&cf.diagnosticsAddr, "diagnostics-addr", "", "serve /healthz, /readyz and /metrics at this address")
	flags.BoolVar(&cf.logJSON, "log-json", false, "JSON-formatted log output")
	flags.BoolVarP(&cf.verbose, "verbose", "v", false, "debug logging")
}

// loadConfig loads the file/env configuration and applies flag overrides.
// A flag only overrides when it was set on the command line.
func (cf *commonFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cf.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("repo") {
		cfg.Repository.Path = cf.repoPath
	}

	if flags.Changed("url") {
		cfg.Repository.URL = cf.repoURL
	}

	if flags.Changed("logs-dir") {
		cfg.Logs.Dir = cf.logsDir
	}

	if flags.Changed("compress") {
		cfg.Logs.Compress = cf.compress
	}

	if flags.Changed("workers") {
		cfg.Logs.Workers = cf.workers
	}

	if flags.Changed("mailmap") {
		cfg.Analysis.Mailmap = cf.mailmapPath
	}

	if flags.Changed("include") {
		cfg.Analysis.IncludeExtensions = cf.includeExtensions
	}

	if flags.Changed("exclude") {
		cfg.Analysis.ExcludeExtensions = cf.excludeExtensions
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runtime bundles the observability providers a command runs with.
type runtime struct {
	providers   observability.Providers
	diagnostics *observability.DiagnosticsServer
}

// setup initializes observability and the optional diagnostics server.
func (cf *commonFlags) setup(mode observability.AppMode) (*runtime, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.Mode = mode
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cf.otlpEndpoint
	obsCfg.OTLPInsecure = cf.otlpInsecure
	obsCfg.LogJSON = cf.logJSON

	if cf.verbose {
		obsCfg.LogLevel = slog.LevelDebug
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	rt := &runtime{providers: providers}

	if cf.diagnosticsAddr != "" {
		diagnostics, diagErr := observability.NewDiagnosticsServer(cf.diagnosticsAddr)
		if diagErr != nil {
			return nil, diagErr
		}

		rt.diagnostics = diagnostics
	}

	return rt, nil
}

// shutdown flushes telemetry and stops the diagnostics server.
func (rt *runtime) shutdown(ctx context.Context) {
	if rt.diagnostics != nil {
		if err := rt.diagnostics.Close(); err != nil {
			rt.providers.Logger.WarnContext(ctx, "close diagnostics server", "error", err)
		}
	}

	if err := rt.providers.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "flush telemetry: %v\n", err)
	}
}

// loadResolver loads the configured mailmap, or an empty resolver.
func loadResolver(path string) (*mailmap.Resolver, error) {
	if path == "" {
		return mailmap.Empty(), nil
	}

	return mailmap.Load(path)
}
