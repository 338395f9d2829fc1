// Package config holds the runtime configuration and its loader.
package config

import (
	"errors"

	"github.com/Sumatoshi-tech/truckfactor/internal/runner"
)

// Config is the top-level configuration struct.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Repository RepositoryConfig `mapstructure:"repository"`
	Logs       LogsConfig       `mapstructure:"logs"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Decay      DecayConfig      `mapstructure:"decay"`
	Report     ReportConfig     `mapstructure:"report"`
}

// RepositoryConfig locates the repository under analysis.
type RepositoryConfig struct {
	// Path is a local working copy. Ignored when URL is set and the
	// clone step runs first.
	Path string `mapstructure:"path"`

	// URL clones a remote repository into CloneDir before analysis.
	URL      string `mapstructure:"url"`
	CloneDir string `mapstructure:"clone_dir"`
}

// LogsConfig controls the on-disk blame log store.
type LogsConfig struct {
	Dir      string `mapstructure:"dir"`
	Compress bool   `mapstructure:"compress"`
	Workers  int    `mapstructure:"workers"`
}

// AnalysisConfig holds the knobs of the selection itself.
type AnalysisConfig struct {
	CriticalLoss float64 `mapstructure:"critical_loss"`

	// Metric picks the tally the selection walks: "knowledge" or
	// "authorship".
	Metric string `mapstructure:"metric"`

	Mailmap string `mapstructure:"mailmap"`

	IncludeExtensions []string `mapstructure:"include_extensions"`
	ExcludeExtensions []string `mapstructure:"exclude_extensions"`
}

// DecayConfig parameterizes the forgetting curve.
type DecayConfig struct {
	Asymptote        float64 `mapstructure:"asymptote"`
	InitialRetention float64 `mapstructure:"initial_retention"`
	Curvature        float64 `mapstructure:"curvature"`
}

// ReportConfig controls output rendering.
type ReportConfig struct {
	// Format is one of "console", "json" or "yaml".
	Format string `mapstructure:"format"`

	// Plot writes an HTML bar chart of the knowledge distribution to
	// the given path when non-empty.
	Plot string `mapstructure:"plot"`
}

// Metric names accepted by analysis.metric.
const (
	MetricKnowledge  = runner.MetricKnowledge
	MetricAuthorship = runner.MetricAuthorship
)

// Report formats accepted by report.format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
)

// Defaults applied by the loader.
const (
	DefaultLogsDir      = "truckfactor-logs"
	DefaultLogsCompress = true
	DefaultLogsWorkers  = 4

	DefaultCloneDir = "truckfactor-clone"
)

// Sentinel errors for configuration validation.
var (
	ErrNoRepository        = errors.New("repository.path or repository.url must be set")
	ErrInvalidCriticalLoss = errors.New("analysis.critical_loss must be between 0 and 1")
	ErrInvalidMetric       = errors.New("analysis.metric must be \"knowledge\" or \"authorship\"")
	ErrInvalidWorkers      = errors.New("logs.workers must be positive")
	ErrInvalidFormat       = errors.New("report.format must be \"console\", \"json\" or \"yaml\"")
	ErrInvalidDecay        = errors.New("decay parameters must lie in [0, 1]")
)

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Repository.Path == "" && c.Repository.URL == "" {
		return ErrNoRepository
	}

	if c.Analysis.CriticalLoss < 0 || c.Analysis.CriticalLoss > 1 {
		return ErrInvalidCriticalLoss
	}

	if c.Analysis.Metric != MetricKnowledge && c.Analysis.Metric != MetricAuthorship {
		return ErrInvalidMetric
	}

	if c.Logs.Workers <= 0 {
		return ErrInvalidWorkers
	}

	switch c.Report.Format {
	case FormatConsole, FormatJSON, FormatYAML:
	default:
		return ErrInvalidFormat
	}

	for _, v := range []float64{c.Decay.Asymptote, c.Decay.InitialRetention, c.Decay.Curvature} {
		if v < 0 || v > 1 {
			return ErrInvalidDecay
		}
	}

	return nil
}
